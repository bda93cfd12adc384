package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filez-project/filez/pkg/models"
)

type fakePolicyLister struct {
	policies []models.AccessPolicy
	err      error
	calls    int
}

func (f *fakePolicyLister) ListApplicablePolicies(_ context.Context, _ string, _ models.ID, _ models.UserID) ([]models.AccessPolicy, error) {
	f.calls++
	return f.policies, f.err
}

func TestEvaluate_TrustedAppBypassesPolicies(t *testing.T) {
	lister := &fakePolicyLister{}
	e := NewEvaluator(lister)

	decision, err := e.Evaluate(context.Background(), Request{
		AppTrusted: true,
		Action:     "file.read",
	})

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, 0, lister.calls, "trusted app bypass must never consult the policy store")
}

func TestEvaluate_OwnershipFastPath(t *testing.T) {
	owner := models.UserID(models.NewID())
	lister := &fakePolicyLister{}
	e := NewEvaluator(lister)

	decision, err := e.Evaluate(context.Background(), Request{
		Subject:         owner,
		ResourceOwnerID: owner,
		Action:          "file.delete",
	})

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluate_DenyAlwaysWinsOverOwnership(t *testing.T) {
	owner := models.UserID(models.NewID())
	subjectID := models.ID(owner)
	policyID := models.AccessPolicyID(models.NewID())

	lister := &fakePolicyLister{policies: []models.AccessPolicy{
		{
			ID:           policyID,
			Effect:       models.EffectDeny,
			SubjectType:  models.SubjectTypeUser,
			SubjectID:    &subjectID,
			ResourceType: "File",
			Actions:      []string{"file.delete"},
		},
	}}
	e := NewEvaluator(lister)

	decision, err := e.Evaluate(context.Background(), Request{
		Subject:         owner,
		ResourceOwnerID: owner,
		ResourceType:    "File",
		Action:          "file.delete",
	})

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	require.NotNil(t, decision.DenyPolicyID)
	assert.Equal(t, policyID, *decision.DenyPolicyID)
}

func TestEvaluate_AllowPolicyGrantsNonOwner(t *testing.T) {
	owner := models.UserID(models.NewID())
	caller := models.UserID(models.NewID())
	callerSubjectID := models.ID(caller)

	lister := &fakePolicyLister{policies: []models.AccessPolicy{
		{
			Effect:       models.EffectAllow,
			SubjectType:  models.SubjectTypeUser,
			SubjectID:    &callerSubjectID,
			ResourceType: "File",
			Actions:      []string{"file.read"},
		},
	}}
	e := NewEvaluator(lister)

	decision, err := e.Evaluate(context.Background(), Request{
		Subject:         caller,
		ResourceOwnerID: owner,
		ResourceType:    "File",
		Action:          "file.read",
	})

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluate_PolicyScopedToDifferentAppContextIsIgnored(t *testing.T) {
	caller := models.UserID(models.NewID())
	callerSubjectID := models.ID(caller)
	otherApp := models.ApplicationID(models.NewID())

	lister := &fakePolicyLister{policies: []models.AccessPolicy{
		{
			Effect:        models.EffectAllow,
			SubjectType:   models.SubjectTypeUser,
			SubjectID:     &callerSubjectID,
			ResourceType:  "File",
			Actions:       []string{"file.read"},
			ContextAppIDs: []models.ApplicationID{otherApp},
		},
	}}
	e := NewEvaluator(lister)

	decision, err := e.Evaluate(context.Background(), Request{
		Subject:      caller,
		AppID:        models.ApplicationID(models.NewID()),
		ResourceType: "File",
		Action:       "file.read",
	})

	require.NoError(t, err)
	assert.False(t, decision.Allowed)
}

func TestEvaluate_TypeLevelAllowGrantsWildcardAction(t *testing.T) {
	caller := models.UserID(models.NewID())
	callerSubjectID := models.ID(caller)

	lister := &fakePolicyLister{policies: []models.AccessPolicy{
		{
			Effect:       models.EffectTypeLevelAllow,
			SubjectType:  models.SubjectTypeUser,
			SubjectID:    &callerSubjectID,
			ResourceType: "File",
			Actions:      []string{"*"},
		},
	}}
	e := NewEvaluator(lister)

	decision, err := e.Evaluate(context.Background(), Request{
		Subject:      caller,
		ResourceType: "File",
		Action:       "file.write",
	})

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluate_PublicSubjectMatchesAnyCaller(t *testing.T) {
	lister := &fakePolicyLister{policies: []models.AccessPolicy{
		{
			Effect:       models.EffectAllow,
			SubjectType:  models.SubjectTypePublic,
			ResourceType: "File",
			Actions:      []string{"file.read"},
		},
	}}
	e := NewEvaluator(lister)

	decision, err := e.Evaluate(context.Background(), Request{
		Subject:      models.UserID(models.NewID()),
		ResourceType: "File",
		Action:       "file.read",
	})

	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestEvaluate_PerRequestCacheAvoidsDuplicateLookups(t *testing.T) {
	lister := &fakePolicyLister{}
	e := NewEvaluatorForRequest(lister)

	resourceID := models.NewID()
	req := Request{ResourceType: "File", ResourceID: resourceID, Action: "file.read"}

	_, err := e.Evaluate(context.Background(), req)
	require.NoError(t, err)
	_, err = e.Evaluate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, lister.calls, "second Evaluate for the same resource must hit the per-request cache")
}
