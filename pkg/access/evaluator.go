// Package access implements the authorization decision procedure (C3):
// given a principal, an action, and a target resource, decide Allow or
// Deny by scanning the applicable AccessPolicy rows, with an ownership
// fast-path and deny-always-wins semantics.
package access

import (
	"context"

	"github.com/filez-project/filez/internal/telemetry"
	"github.com/filez-project/filez/pkg/apierr"
	"github.com/filez-project/filez/pkg/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Decision is the evaluator's verdict for one request.
type Decision struct {
	Allowed bool
	// DenyPolicyID is set when Allowed is false because an explicit Deny
	// policy matched (as opposed to no Allow policy matching at all).
	DenyPolicyID *models.AccessPolicyID
}

// Request bundles everything the evaluator needs to reach a verdict.
type Request struct {
	Subject      models.UserID
	SubjectGroups []models.UserGroupID
	AppID        models.ApplicationID
	AppTrusted   bool

	Action       string
	ResourceType string
	ResourceID   models.ID
	ResourceOwnerID models.UserID
}

// PolicyLister is implemented by the store backing the evaluator; kept
// narrow so tests can supply an in-memory fake.
type PolicyLister interface {
	ListApplicablePolicies(ctx context.Context, resourceType string, resourceID models.ID, ownerID models.UserID) ([]models.AccessPolicy, error)
}

type Evaluator struct {
	store PolicyLister
	cache *requestCache
}

func NewEvaluator(store PolicyLister) *Evaluator {
	return &Evaluator{store: store}
}

// Evaluate runs the six-step decision procedure from §4.3:
//  1. Trusted first-party apps bypass policy evaluation entirely.
//  2. The resource owner may always act on their own resource (ownership
//     fast-path), unless an explicit Deny policy names them.
//  3. Collect every policy that could apply: subject is the caller, one of
//     their groups, or Public; resource is the specific ResourceID or a
//     TypeLevelAllow policy on ResourceType with no ResourceID.
//  4. Drop policies scoped to a different app via ContextAppIDs.
//  5. If any matching Deny policy covers the action, the request is denied.
//  6. Otherwise allow iff at least one Allow/TypeLevelAllow policy matched.
//
// Policy results are cached only on an Evaluator built by
// NewEvaluatorForRequest, whose cache lives as long as that Evaluator;
// an Evaluator from NewEvaluator does not cache.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (Decision, error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.SpanAccessEvaluate,
		trace.WithAttributes(telemetry.Action(req.Action), telemetry.Resource(req.ResourceType)),
	)
	defer span.End()

	if req.AppTrusted {
		telemetry.SetAttributes(ctx, telemetry.Decision("Allowed"), attribute.Bool(telemetry.AttrDecisionOwner, false))
		return Decision{Allowed: true}, nil
	}

	policies, err := e.fetchPolicies(ctx, req)
	if err != nil {
		return Decision{}, apierr.Internal("listing access policies", err)
	}

	var denyID *models.AccessPolicyID
	allowed := false

	if req.Subject == req.ResourceOwnerID && !req.ResourceOwnerID.IsZero() {
		allowed = true
	}

	for i := range policies {
		p := &policies[i]
		if !subjectMatches(p, req) || !appContextMatches(p, req) {
			continue
		}
		switch p.Effect {
		case models.EffectDeny:
			if containsAction(p.Actions, req.Action) {
				id := p.ID
				denyID = &id
			}
		case models.EffectAllow, models.EffectTypeLevelAllow:
			if containsAction(p.Actions, req.Action) {
				allowed = true
			}
		}
	}

	if denyID != nil {
		// Deny always wins, even over the ownership fast-path.
		telemetry.SetAttributes(ctx, telemetry.Decision("Denied"), attribute.String(telemetry.AttrDenyPolicyID, denyID.String()))
		return Decision{Allowed: false, DenyPolicyID: denyID}, nil
	}

	telemetry.SetAttributes(ctx, telemetry.Decision(decisionLabel(allowed)))
	return Decision{Allowed: allowed}, nil
}

func decisionLabel(allowed bool) string {
	if allowed {
		return "Allowed"
	}
	return "Denied"
}

func (e *Evaluator) fetchPolicies(ctx context.Context, req Request) ([]models.AccessPolicy, error) {
	if e.cache != nil {
		if cached, ok := e.cache.get(req.ResourceType, req.ResourceID); ok {
			return cached, nil
		}
	}
	policies, err := e.store.ListApplicablePolicies(ctx, req.ResourceType, req.ResourceID, req.ResourceOwnerID)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.put(req.ResourceType, req.ResourceID, policies)
	}
	return policies, nil
}

func subjectMatches(p *models.AccessPolicy, req Request) bool {
	switch p.SubjectType {
	case models.SubjectTypePublic:
		return true
	case models.SubjectTypeUser:
		return p.SubjectID != nil && models.UserID(*p.SubjectID) == req.Subject
	case models.SubjectTypeUserGroup:
		if p.SubjectID == nil {
			return false
		}
		for _, g := range req.SubjectGroups {
			if models.UserGroupID(*p.SubjectID) == g {
				return true
			}
		}
	}
	return false
}

func appContextMatches(p *models.AccessPolicy, req Request) bool {
	if len(p.ContextAppIDs) == 0 {
		return true
	}
	for _, id := range p.ContextAppIDs {
		if id == req.AppID {
			return true
		}
	}
	return false
}

func containsAction(actions []string, action string) bool {
	for _, a := range actions {
		if a == action || a == "*" {
			return true
		}
	}
	return false
}
