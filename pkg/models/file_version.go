package models

import "time"

// FileVersion is one content revision of a File, identified within the file
// by an auto-incrementing Number. The tus-like upload state machine (C5)
// lives entirely on this row: a version is created with ContentValid false
// and only flips to true once its committed byte count matches
// ContentExpectedSize and its digest matches ContentExpectedSHA256.
type FileVersion struct {
	FileID FileID        `gorm:"primaryKey" json:"file_id"`
	Number int64         `gorm:"primaryKey" json:"number"`
	ID     FileVersionID `gorm:"uniqueIndex;type:uuid" json:"id"`

	// AppID/AppPath let the same app store more than one named stream per
	// version (e.g. a thumbnail alongside the primary content); the tuple
	// (FileID, Number, AppID, AppPath) is the natural key. Storage object
	// keys are derived from ID instead.
	AppID   ApplicationID `gorm:"primaryKey" json:"app_id"`
	AppPath string        `gorm:"primaryKey" json:"app_path"`

	StorageLocationID StorageLocID `json:"storage_location_id"`
	StorageQuotaID    StorageQuotaID `json:"storage_quota_id"`
	ObjectKey         string       `json:"object_key"`

	ContentExpectedSize   int64  `json:"content_expected_size"`
	ContentCommittedSize  int64  `json:"content_committed_size"`
	ContentExpectedSHA256 string `json:"content_expected_sha256,omitempty"`
	ContentActualSHA256   string `json:"content_actual_sha256,omitempty"`
	ContentValid          bool   `json:"content_valid"`

	CreatedTime  time.Time `json:"created_time"`
	ModifiedTime time.Time `json:"modified_time"`
}

func (FileVersion) TableName() string { return "file_versions" }
