// Package directory implements the lookup queries the HTTP middleware and
// access evaluator depend on: resolving a KeyAccess secret's owner, an
// Origin header to an Application, and an AccessPolicy's applicable set for
// a resource. It is the thin pgx-backed glue between C2/C3/C8, kept
// separate from pkg/access so the evaluator's package stays storage-agnostic
// and testable against a fake.
package directory

import (
	"context"

	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/dbgateway"
	"github.com/filez-project/filez/pkg/models"
)

type Directory struct {
	gw *dbgateway.Gateway
}

func New(gw *dbgateway.Gateway) *Directory {
	return &Directory{gw: gw}
}

func (d *Directory) LookupByUserID(ctx context.Context, userID models.UserID) (models.KeyAccess, error) {
	var ka models.KeyAccess
	err := d.gw.Pool().QueryRow(ctx,
		`SELECT user_id, secret_hash FROM key_access WHERE user_id = $1`, userID).
		Scan(&ka.UserID, &ka.SecretHash)
	if err != nil {
		return models.KeyAccess{}, apierr.Unauthorized("unknown key access user")
	}
	return ka, nil
}

func (d *Directory) LookupByOrigin(ctx context.Context, origin string) (models.Application, bool, error) {
	var app models.Application
	err := d.gw.Pool().QueryRow(ctx,
		`SELECT id, name, description, trusted, origins FROM apps WHERE $1 = ANY(origins)`, origin).
		Scan(&app.ID, &app.Name, &app.Description, &app.Trusted, &app.Origins)
	if err != nil {
		return models.Application{}, false, nil
	}
	return app, true, nil
}

func (d *Directory) NoOriginApp(ctx context.Context) (models.Application, error) {
	var app models.Application
	err := d.gw.Pool().QueryRow(ctx,
		`SELECT id, name, description, trusted, origins FROM apps WHERE name = $1`, models.NoOriginAppName).
		Scan(&app.ID, &app.Name, &app.Description, &app.Trusted, &app.Origins)
	if err != nil {
		return models.Application{}, apierr.Internal("no-origin application not provisioned", err)
	}
	return app, nil
}

// ListApplicablePolicies implements access.PolicyLister: every policy whose
// ResourceID matches resourceID exactly, plus every TypeLevelAllow policy on
// resourceType that has no ResourceID. ownerID does not narrow the set, and
// subjects are not filtered here; the evaluator matches them.
func (d *Directory) ListApplicablePolicies(ctx context.Context, resourceType string, resourceID models.ID, ownerID models.UserID) ([]models.AccessPolicy, error) {
	rows, err := d.gw.Pool().Query(ctx,
		`SELECT id, effect, subject_type, subject_id, resource_type, resource_id, actions, context_app_ids
		 FROM access_policies
		 WHERE (resource_type = $1 AND resource_id = $2)
		    OR (resource_type = $1 AND effect = 'TypeLevelAllow' AND resource_id IS NULL)`,
		resourceType, resourceID)
	if err != nil {
		return nil, apierr.Internal("listing access policies", err)
	}
	defer rows.Close()

	var policies []models.AccessPolicy
	for rows.Next() {
		var p models.AccessPolicy
		if err := rows.Scan(&p.ID, &p.Effect, &p.SubjectType, &p.SubjectID, &p.ResourceType,
			&p.ResourceID, &p.Actions, &p.ContextAppIDs); err != nil {
			return nil, apierr.Internal("scanning access policy", err)
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}
