package models

import "time"

// UserType distinguishes the three kinds of caller identity from §3.
type UserType string

const (
	UserTypeSuperAdmin UserType = "SuperAdmin"
	UserTypeRegular    UserType = "Regular"
	UserTypeKeyAccess  UserType = "KeyAccess"
)

// User is a Filez principal. Exactly one of ExternalID or a companion
// KeyAccess row is present, per §3's invariant.
type User struct {
	ID           UserID    `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalID   *string   `gorm:"uniqueIndex" json:"external_id,omitempty"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Type         UserType  `json:"type"`
	CreatedTime  time.Time `json:"created_time"`
	ModifiedTime time.Time `json:"modified_time"`
	DeletedTime  *time.Time `json:"deleted_time,omitempty"`
}

func (User) TableName() string { return "users" }

// KeyAccess stores the unsalted SHA-256 hash of a long-lived opaque bearer secret for
// a UserTypeKeyAccess user. Authentication compares SHA-256(secret) against
// SecretHash in constant time (§4.3).
type KeyAccess struct {
	UserID     UserID `gorm:"primaryKey;type:uuid"`
	SecretHash []byte `gorm:"type:bytea"`
}

func (KeyAccess) TableName() string { return "key_access" }

// Application is the calling app identified by Origin resolution (§4.8).
type Application struct {
	ID          ApplicationID `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Trusted     bool          `json:"trusted"`
	Origins     []string      `gorm:"serializer:json" json:"origins,omitempty"`
}

func (Application) TableName() string { return "apps" }

// Well-known synthetic applications that always exist (§3).
const (
	FirstPartyAppName = "first-party"
	NoOriginAppName   = "no-origin"
)
