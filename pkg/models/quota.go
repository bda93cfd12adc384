package models

// StorageQuota bounds the total content bytes a user may hold on one
// storage location. Reservation is optimistic (C6): ReservedBytes is
// incremented when an upload is opened (ContentExpectedSize), moved into
// UsedBytes on commit, and UsedBytes is decremented on delete; a failed
// reservation blocks the upload before any bytes move.
type StorageQuota struct {
	ID                StorageQuotaID `gorm:"primaryKey;type:uuid" json:"id"`
	UserID            UserID         `gorm:"uniqueIndex:idx_quota_user_loc" json:"user_id"`
	StorageLocationID StorageLocID   `gorm:"uniqueIndex:idx_quota_user_loc" json:"storage_location_id"`
	LimitBytes        int64          `json:"limit_bytes"`
	UsedBytes         int64          `json:"used_bytes"`
	// ReservedBytes tracks in-flight uploads whose final size is not yet
	// confirmed (ContentValid == false); it is folded into UsedBytes on
	// commit and released on abandon (§4.6).
	ReservedBytes int64 `json:"reserved_bytes"`
}

func (StorageQuota) TableName() string { return "storage_quotas" }
