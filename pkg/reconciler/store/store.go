// Package store is the GORM-backed control-plane persistence layer for the
// C7 reconciler, grounded on the teacher's control-plane store (which used
// GORM for its operator-driven CRD-to-row sync while the request path used
// pgx directly through pkg/dbgateway). The reconciler reconciles
// infrequently and in small batches, so GORM's ergonomics win there over
// pgx's lower overhead, matching the teacher's own split.
package store

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/filez-project/filez/pkg/models"
)

// Store wraps a *gorm.DB scoped to the control-plane tables the reconciler
// owns: storage_locations, apps, access_policies.
type Store struct {
	db *gorm.DB
}

// Open dials dsn with GORM's postgres driver.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("opening gorm connection: %w", err)
	}
	return &Store{db: db}, nil
}

// UpsertStorageLocation inserts or, on a primary-key conflict, fully
// overwrites a storage_locations row.
func (s *Store) UpsertStorageLocation(loc *models.StorageLocation) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "provider_config"}),
	}).Create(loc).Error
}

// DeleteStorageLocation removes a storage_locations row by ID.
func (s *Store) DeleteStorageLocation(id models.StorageLocID) error {
	return s.db.Delete(&models.StorageLocation{}, "id = ?", id).Error
}

// UpsertApplication inserts or fully overwrites an apps row.
func (s *Store) UpsertApplication(app *models.Application) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "trusted", "origins"}),
	}).Create(app).Error
}

// DeleteApplication removes an apps row by ID.
func (s *Store) DeleteApplication(id models.ApplicationID) error {
	return s.db.Delete(&models.Application{}, "id = ?", id).Error
}

// UpsertAccessPolicy inserts or fully overwrites an access_policies row.
func (s *Store) UpsertAccessPolicy(policy *models.AccessPolicy) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"effect", "subject_type", "subject_id", "resource_type",
			"resource_id", "actions", "context_app_ids",
		}),
	}).Create(policy).Error
}

// DeleteAccessPolicy removes an access_policies row by ID.
func (s *Store) DeleteAccessPolicy(id models.AccessPolicyID) error {
	return s.db.Delete(&models.AccessPolicy{}, "id = ?", id).Error
}

// ApplicationIDByName resolves an Application's name to its ID, used when
// an AccessPolicy spec names its context apps by name rather than ID.
func (s *Store) ApplicationIDByName(name string) (models.ApplicationID, error) {
	var app models.Application
	if err := s.db.Select("id").Where("name = ?", name).First(&app).Error; err != nil {
		return models.ApplicationID{}, fmt.Errorf("looking up app %q: %w", name, err)
	}
	return app.ID, nil
}
