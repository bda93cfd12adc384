package models

import "time"

// File is a named resource owned by a user. Content lives in its
// FileVersions; the File row itself only carries identity and metadata
// partitions (§3, §4.5).
type File struct {
	ID       FileID `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID  UserID `gorm:"index" json:"owner_id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`

	// PrivateAppData is writable only by the app that wrote it, and never
	// readable by any other app (§4.5).
	PrivateAppData map[string]map[string]any `gorm:"serializer:json" json:"private_app_data,omitempty"`
	// SharedAppData is readable by every app with access to the file; any
	// app may write it, but a write by an app other than the one that
	// created a given top-level key is logged as
	// FileSharedDataWrittenByForeignApp (see SPEC_FULL decided open question).
	SharedAppData map[string]any `gorm:"serializer:json" json:"shared_app_data,omitempty"`
	// ExtractedData is written only by the reconciler/job pipeline (C7/C10),
	// never directly by a client request.
	ExtractedData map[string]any `gorm:"serializer:json" json:"extracted_data,omitempty"`

	CreatedTime  time.Time  `json:"created_time"`
	ModifiedTime time.Time  `json:"modified_time"`
	DeletedTime  *time.Time `json:"deleted_time,omitempty"`
}

func (File) TableName() string { return "files" }
