// Package controller implements the controller-runtime reconcilers for the
// Filez custom resources (C7), grounded on the teacher operator's
// Reconcile/SetupWithManager/finalizer shape: each controller upserts a
// database row and a storage.Registry / in-memory entry to match the
// resource spec, and tears both down on deletion via a finalizer.
package controller

import (
	"context"
	"fmt"

	badgerstore "github.com/filez-project/filez/pkg/storage/badgerkv"
	fsstore "github.com/filez-project/filez/pkg/storage/fs"
	s3store "github.com/filez-project/filez/pkg/storage/s3"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	filezv1alpha1 "github.com/filez-project/filez/pkg/reconciler/v1alpha1"
	"github.com/filez-project/filez/pkg/models"
	"github.com/filez-project/filez/pkg/reconciler/store"
	"github.com/filez-project/filez/pkg/storage"
)

const storageLocationFinalizer = "filez.io/storage-location-finalizer"

// StorageLocationReconciler keeps storage.Registry and the storage_locations
// table in sync with StorageLocation custom resources.
type StorageLocationReconciler struct {
	client.Client
	Store    *store.Store
	Registry *storage.Registry
}

func (r *StorageLocationReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)

	var sl filezv1alpha1.StorageLocation
	if err := r.Get(ctx, req.NamespacedName, &sl); err != nil {
		if errors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, fmt.Errorf("fetching StorageLocation: %w", err)
	}

	if !sl.DeletionTimestamp.IsZero() {
		return r.finalize(ctx, &sl)
	}

	if !controllerutil.ContainsFinalizer(&sl, storageLocationFinalizer) {
		controllerutil.AddFinalizer(&sl, storageLocationFinalizer)
		if err := r.Update(ctx, &sl); err != nil {
			return ctrl.Result{}, fmt.Errorf("adding finalizer: %w", err)
		}
	}

	locID, err := r.upsertRow(ctx, &sl)
	if err != nil {
		logger.Error(err, "upserting storage location row")
		return ctrl.Result{}, err
	}

	provider, err := buildProvider(ctx, sl.Spec)
	if err != nil {
		logger.Error(err, "building storage provider")
		sl.Status.Ready = false
		sl.Status.Message = err.Error()
		_ = r.Status().Update(ctx, &sl)
		return ctrl.Result{}, err
	}
	r.Registry.Set(locID, provider)

	sl.Status.Ready = true
	sl.Status.DatabaseID = locID.String()
	sl.Status.Message = ""
	if err := r.Status().Update(ctx, &sl); err != nil {
		return ctrl.Result{}, fmt.Errorf("updating status: %w", err)
	}

	return ctrl.Result{}, nil
}

func (r *StorageLocationReconciler) finalize(ctx context.Context, sl *filezv1alpha1.StorageLocation) (ctrl.Result, error) {
	if !controllerutil.ContainsFinalizer(sl, storageLocationFinalizer) {
		return ctrl.Result{}, nil
	}

	if sl.Status.DatabaseID != "" {
		id, err := models.ParseID(sl.Status.DatabaseID)
		if err == nil {
			r.Registry.Remove(models.StorageLocID(id))
			_ = r.Store.DeleteStorageLocation(models.StorageLocID(id))
		}
	}

	controllerutil.RemoveFinalizer(sl, storageLocationFinalizer)
	if err := r.Update(ctx, sl); err != nil {
		return ctrl.Result{}, fmt.Errorf("removing finalizer: %w", err)
	}
	return ctrl.Result{}, nil
}

func (r *StorageLocationReconciler) upsertRow(ctx context.Context, sl *filezv1alpha1.StorageLocation) (models.StorageLocID, error) {
	cfg := models.ProviderConfig{
		Kind:           models.ProviderKind(sl.Spec.Kind),
		Endpoint:       sl.Spec.Endpoint,
		Bucket:         sl.Spec.Bucket,
		Region:         sl.Spec.Region,
		CredentialsRef: sl.Spec.CredentialsRef,
		ForcePathStyle: sl.Spec.ForcePathStyle,
		RootPath:       sl.Spec.RootPath,
		DataDir:        sl.Spec.DataDir,
	}

	var id models.StorageLocID
	if sl.Status.DatabaseID != "" {
		parsed, err := models.ParseID(sl.Status.DatabaseID)
		if err == nil {
			id = models.StorageLocID(parsed)
		}
	}
	if models.ID(id).IsZero() {
		id = models.StorageLocID(models.NewID())
	}

	row := &models.StorageLocation{ID: id, Name: sl.Spec.Name, ProviderConfig: cfg}
	if err := r.Store.UpsertStorageLocation(row); err != nil {
		return models.StorageLocID{}, fmt.Errorf("upserting storage_locations row: %w", err)
	}
	return id, nil
}

func buildProvider(ctx context.Context, spec filezv1alpha1.StorageLocationSpec) (storage.Provider, error) {
	switch models.ProviderKind(spec.Kind) {
	case models.ProviderKindS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(spec.Region))
		if err != nil {
			return nil, fmt.Errorf("loading aws config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if spec.Endpoint != "" {
				o.BaseEndpoint = aws.String(spec.Endpoint)
			}
			o.UsePathStyle = spec.ForcePathStyle
		})
		return s3store.New(client, s3store.Config{Bucket: spec.Bucket}), nil
	case models.ProviderKindFS:
		return fsstore.New(spec.RootPath), nil
	case models.ProviderKindBadger:
		return badgerstore.Open(spec.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage provider kind %q", spec.Kind)
	}
}

func (r *StorageLocationReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&filezv1alpha1.StorageLocation{}).
		Complete(r)
}
