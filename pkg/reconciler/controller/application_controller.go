package controller

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"github.com/filez-project/filez/pkg/models"
	filezv1alpha1 "github.com/filez-project/filez/pkg/reconciler/v1alpha1"
	"github.com/filez-project/filez/pkg/reconciler/store"
)

const applicationFinalizer = "filez.io/application-finalizer"

// ApplicationReconciler keeps the apps table in sync with Application
// custom resources.
type ApplicationReconciler struct {
	client.Client
	Store *store.Store
}

func (r *ApplicationReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var app filezv1alpha1.Application
	if err := r.Get(ctx, req.NamespacedName, &app); err != nil {
		if errors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, fmt.Errorf("fetching Application: %w", err)
	}

	if !app.DeletionTimestamp.IsZero() {
		if controllerutil.ContainsFinalizer(&app, applicationFinalizer) {
			if app.Status.DatabaseID != "" {
				if id, err := models.ParseID(app.Status.DatabaseID); err == nil {
					_ = r.Store.DeleteApplication(models.ApplicationID(id))
				}
			}
			controllerutil.RemoveFinalizer(&app, applicationFinalizer)
			if err := r.Update(ctx, &app); err != nil {
				return ctrl.Result{}, fmt.Errorf("removing finalizer: %w", err)
			}
		}
		return ctrl.Result{}, nil
	}

	if !controllerutil.ContainsFinalizer(&app, applicationFinalizer) {
		controllerutil.AddFinalizer(&app, applicationFinalizer)
		if err := r.Update(ctx, &app); err != nil {
			return ctrl.Result{}, fmt.Errorf("adding finalizer: %w", err)
		}
	}

	var id models.ApplicationID
	if app.Status.DatabaseID != "" {
		if parsed, err := models.ParseID(app.Status.DatabaseID); err == nil {
			id = models.ApplicationID(parsed)
		}
	}
	if models.ID(id).IsZero() {
		id = models.ApplicationID(models.NewID())
	}

	description := app.Spec.Description
	row := &models.Application{
		ID:          id,
		Name:        app.Spec.Name,
		Description: &description,
		Trusted:     app.Spec.Trusted,
		Origins:     app.Spec.Origins,
	}
	if err := r.Store.UpsertApplication(row); err != nil {
		return ctrl.Result{}, fmt.Errorf("upserting apps row: %w", err)
	}

	app.Status.Ready = true
	app.Status.DatabaseID = id.String()
	if err := r.Status().Update(ctx, &app); err != nil {
		return ctrl.Result{}, fmt.Errorf("updating status: %w", err)
	}
	return ctrl.Result{}, nil
}

func (r *ApplicationReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&filezv1alpha1.Application{}).
		Complete(r)
}
