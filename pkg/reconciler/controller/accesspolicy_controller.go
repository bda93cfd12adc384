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

const accessPolicyFinalizer = "filez.io/access-policy-finalizer"

// AccessPolicyReconciler keeps the access_policies table in sync with
// AccessPolicy custom resources, resolving ContextAppNames to ApplicationID
// values by looking up each named Application's database row.
type AccessPolicyReconciler struct {
	client.Client
	Store *store.Store
}

func (r *AccessPolicyReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var policy filezv1alpha1.AccessPolicy
	if err := r.Get(ctx, req.NamespacedName, &policy); err != nil {
		if errors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, fmt.Errorf("fetching AccessPolicy: %w", err)
	}

	if !policy.DeletionTimestamp.IsZero() {
		if controllerutil.ContainsFinalizer(&policy, accessPolicyFinalizer) {
			if policy.Status.DatabaseID != "" {
				if id, err := models.ParseID(policy.Status.DatabaseID); err == nil {
					_ = r.Store.DeleteAccessPolicy(models.AccessPolicyID(id))
				}
			}
			controllerutil.RemoveFinalizer(&policy, accessPolicyFinalizer)
			if err := r.Update(ctx, &policy); err != nil {
				return ctrl.Result{}, fmt.Errorf("removing finalizer: %w", err)
			}
		}
		return ctrl.Result{}, nil
	}

	if !controllerutil.ContainsFinalizer(&policy, accessPolicyFinalizer) {
		controllerutil.AddFinalizer(&policy, accessPolicyFinalizer)
		if err := r.Update(ctx, &policy); err != nil {
			return ctrl.Result{}, fmt.Errorf("adding finalizer: %w", err)
		}
	}

	contextAppIDs, err := r.resolveAppNames(ctx, policy.Spec.ContextAppNames)
	if err != nil {
		return ctrl.Result{}, err
	}

	var id models.AccessPolicyID
	if policy.Status.DatabaseID != "" {
		if parsed, perr := models.ParseID(policy.Status.DatabaseID); perr == nil {
			id = models.AccessPolicyID(parsed)
		}
	}
	if models.ID(id).IsZero() {
		id = models.AccessPolicyID(models.NewID())
	}

	var subjectID *models.ID
	if policy.Spec.SubjectID != "" {
		parsed, perr := models.ParseID(policy.Spec.SubjectID)
		if perr != nil {
			return ctrl.Result{}, fmt.Errorf("invalid subjectID: %w", perr)
		}
		subjectID = &parsed
	}
	var resourceID *models.ID
	if policy.Spec.ResourceID != "" {
		parsed, perr := models.ParseID(policy.Spec.ResourceID)
		if perr != nil {
			return ctrl.Result{}, fmt.Errorf("invalid resourceID: %w", perr)
		}
		resourceID = &parsed
	}

	row := &models.AccessPolicy{
		ID:            id,
		Effect:        models.Effect(policy.Spec.Effect),
		SubjectType:   models.SubjectType(policy.Spec.SubjectType),
		SubjectID:     subjectID,
		ResourceType:  policy.Spec.ResourceType,
		ResourceID:    resourceID,
		Actions:       policy.Spec.Actions,
		ContextAppIDs: contextAppIDs,
	}
	if err := r.Store.UpsertAccessPolicy(row); err != nil {
		return ctrl.Result{}, fmt.Errorf("upserting access_policies row: %w", err)
	}

	policy.Status.Ready = true
	policy.Status.DatabaseID = id.String()
	if err := r.Status().Update(ctx, &policy); err != nil {
		return ctrl.Result{}, fmt.Errorf("updating status: %w", err)
	}
	return ctrl.Result{}, nil
}

func (r *AccessPolicyReconciler) resolveAppNames(_ context.Context, names []string) ([]models.ApplicationID, error) {
	ids := make([]models.ApplicationID, 0, len(names))
	for _, name := range names {
		id, err := r.Store.ApplicationIDByName(name)
		if err != nil {
			return nil, fmt.Errorf("resolving app name %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *AccessPolicyReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&filezv1alpha1.AccessPolicy{}).
		Complete(r)
}
