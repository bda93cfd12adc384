package models

// ProviderKind names one of the closed set of object-storage backend kinds
// the registry (C1) understands. New kinds are added at build time, never
// loaded as plugins (§9 design note).
type ProviderKind string

const (
	ProviderKindS3     ProviderKind = "s3"
	ProviderKindFS     ProviderKind = "fs"
	ProviderKindBadger ProviderKind = "badger"
)

// ProviderConfig is the tagged variant of §3: exactly one backend kind and
// its configuration. Stored as JSON in the storage_locations table.
type ProviderConfig struct {
	Kind ProviderKind `json:"kind"`

	// S3 fields, valid when Kind == ProviderKindS3.
	Endpoint        string `json:"endpoint,omitempty"`
	Bucket          string `json:"bucket,omitempty"`
	Region          string `json:"region,omitempty"`
	CredentialsRef  string `json:"credentials_ref,omitempty"`
	ForcePathStyle  bool   `json:"force_path_style,omitempty"`

	// FS fields, valid when Kind == ProviderKindFS.
	RootPath string `json:"root_path,omitempty"`

	// Badger fields, valid when Kind == ProviderKindBadger.
	DataDir string `json:"data_dir,omitempty"`
}

// StorageLocation names one configured object-storage backend instance.
type StorageLocation struct {
	ID             StorageLocID   `gorm:"primaryKey;type:uuid" json:"id"`
	Name           string         `json:"name"`
	ProviderConfig ProviderConfig `gorm:"serializer:json" json:"provider_config"`
}

func (StorageLocation) TableName() string { return "storage_locations" }
