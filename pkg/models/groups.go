package models

// GroupKind distinguishes manually-curated membership from membership
// computed at read time by a dynamic rule (§3, §4.4).
type GroupKind string

const (
	GroupKindManual  GroupKind = "Manual"
	GroupKindDynamic GroupKind = "Dynamic"
)

// DynamicRule is a small predicate language evaluated against a File's or
// User's tags to decide membership of a Dynamic group. Only one of the
// fields is meaningful, chosen by Op.
type DynamicRule struct {
	Op     string   `json:"op"` // "HasTag" | "HasAnyTag" | "HasAllTags"
	Tags   []string `json:"tags,omitempty"`
}

// FileGroup is a named collection of files, either curated via membership
// rows (Manual) or computed from DynamicRule against file tags (Dynamic).
type FileGroup struct {
	ID      FileGroupID  `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID UserID       `gorm:"index" json:"owner_id"`
	Name    string       `json:"name"`
	Kind    GroupKind    `json:"kind"`
	Rule    *DynamicRule `gorm:"serializer:json" json:"rule,omitempty"`
}

func (FileGroup) TableName() string { return "file_groups" }

// FileGroupMember is a Manual-kind FileGroup's membership row.
type FileGroupMember struct {
	FileGroupID FileGroupID `gorm:"primaryKey;type:uuid" json:"file_group_id"`
	FileID      FileID      `gorm:"primaryKey;type:uuid" json:"file_id"`
}

func (FileGroupMember) TableName() string { return "file_group_members" }

// UserGroup is the analogous named collection of users, used by
// AccessPolicy's subject matching (§4.3).
type UserGroup struct {
	ID      UserGroupID  `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID UserID       `gorm:"index" json:"owner_id"`
	Name    string       `json:"name"`
	Kind    GroupKind    `json:"kind"`
	Rule    *DynamicRule `gorm:"serializer:json" json:"rule,omitempty"`
}

func (UserGroup) TableName() string { return "user_groups" }

// UserGroupMember is a Manual-kind UserGroup's membership row.
type UserGroupMember struct {
	UserGroupID UserGroupID `gorm:"primaryKey;type:uuid" json:"user_group_id"`
	UserID      UserID      `gorm:"primaryKey;type:uuid" json:"user_id"`
}

func (UserGroupMember) TableName() string { return "user_group_members" }
