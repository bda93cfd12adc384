package models

// SubjectType names what AccessPolicy.SubjectID refers to.
type SubjectType string

const (
	SubjectTypeUser      SubjectType = "User"
	SubjectTypeUserGroup SubjectType = "UserGroup"
	SubjectTypePublic    SubjectType = "Public"
)

// Effect is Allow, Deny, or TypeLevelAllow; deny always wins ties (§4.3).
type Effect string

const (
	EffectAllow         Effect = "Allow"
	EffectDeny          Effect = "Deny"
	EffectTypeLevelAllow Effect = "TypeLevelAllow"
)

// AccessPolicy is one rule in the evaluator's input set (C3). A policy
// grants or denies a set of Actions on either a specific ResourceID or, for
// TypeLevelAllow, every resource of ResourceType. ContextAppIDs, when non-empty, restricts the policy to requests
// made through one of those apps; an empty set means "any app" and is
// distinct from an app being marked Trusted (see SPEC_FULL decided open
// question).
type AccessPolicy struct {
	ID     AccessPolicyID `gorm:"primaryKey;type:uuid" json:"id"`
	Effect Effect         `json:"effect"`

	SubjectType SubjectType `json:"subject_type"`
	SubjectID   *ID         `gorm:"type:uuid" json:"subject_id,omitempty"`

	ResourceType string `json:"resource_type"`
	ResourceID   *ID    `gorm:"type:uuid" json:"resource_id,omitempty"`

	Actions []string `gorm:"serializer:json" json:"actions"`

	ContextAppIDs []ApplicationID `gorm:"serializer:json" json:"context_app_ids,omitempty"`
}

func (AccessPolicy) TableName() string { return "access_policies" }
