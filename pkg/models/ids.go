package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// ID is a 128-bit opaque identifier, type-tagged at the language boundary
// by the distinct named types below (FileID, UserID, ...). Every resource
// in §3 of the spec carries one.
type ID uuid.UUID

// NewID generates a fresh random ID.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses the string form of an ID (used when decoding requests).
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(u), nil
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

func (id ID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*id = ID(u)
	return nil
}

// Value implements driver.Valuer for plain pgx/gorm binding.
func (id ID) Value() (driver.Value, error) {
	return uuid.UUID(id).String(), nil
}

// Scan implements sql.Scanner.
func (id *ID) Scan(src any) error {
	var u uuid.UUID
	if err := (&u).Scan(src); err != nil {
		return err
	}
	*id = ID(u)
	return nil
}

// The distinct ID types below exist purely so the compiler catches a
// UserID passed where a FileID is expected; all share ID's representation.
type (
	UserID           ID
	ApplicationID    ID
	StorageLocID     ID
	FileID           ID
	FileVersionID    ID
	FileGroupID      ID
	UserGroupID      ID
	StorageQuotaID   ID
	AccessPolicyID   ID
	EventID          ID
	JobID            ID
)

func (id UserID) String() string         { return ID(id).String() }
func (id ApplicationID) String() string  { return ID(id).String() }
func (id StorageLocID) String() string   { return ID(id).String() }
func (id FileID) String() string         { return ID(id).String() }
func (id FileVersionID) String() string  { return ID(id).String() }
func (id FileGroupID) String() string    { return ID(id).String() }
func (id UserGroupID) String() string    { return ID(id).String() }
func (id StorageQuotaID) String() string { return ID(id).String() }
func (id AccessPolicyID) String() string { return ID(id).String() }
func (id EventID) String() string        { return ID(id).String() }
func (id JobID) String() string          { return ID(id).String() }

// Go does not propagate a defined type's method set to types defined in
// terms of it, so each named ID subtype needs its own Value/Scan/
// MarshalText/UnmarshalText forwarding to ID's — otherwise pgx and GORM
// would bind these fields as raw [16]byte arrays instead of as UUIDs.

func (id UserID) Value() (driver.Value, error)         { return ID(id).Value() }
func (id ApplicationID) Value() (driver.Value, error)  { return ID(id).Value() }
func (id StorageLocID) Value() (driver.Value, error)   { return ID(id).Value() }
func (id FileID) Value() (driver.Value, error)         { return ID(id).Value() }
func (id FileVersionID) Value() (driver.Value, error)  { return ID(id).Value() }
func (id FileGroupID) Value() (driver.Value, error)    { return ID(id).Value() }
func (id UserGroupID) Value() (driver.Value, error)    { return ID(id).Value() }
func (id StorageQuotaID) Value() (driver.Value, error) { return ID(id).Value() }
func (id AccessPolicyID) Value() (driver.Value, error) { return ID(id).Value() }
func (id EventID) Value() (driver.Value, error)        { return ID(id).Value() }
func (id JobID) Value() (driver.Value, error)          { return ID(id).Value() }

func (id *UserID) Scan(src any) error         { return (*ID)(id).Scan(src) }
func (id *ApplicationID) Scan(src any) error  { return (*ID)(id).Scan(src) }
func (id *StorageLocID) Scan(src any) error   { return (*ID)(id).Scan(src) }
func (id *FileID) Scan(src any) error         { return (*ID)(id).Scan(src) }
func (id *FileVersionID) Scan(src any) error  { return (*ID)(id).Scan(src) }
func (id *FileGroupID) Scan(src any) error    { return (*ID)(id).Scan(src) }
func (id *UserGroupID) Scan(src any) error    { return (*ID)(id).Scan(src) }
func (id *StorageQuotaID) Scan(src any) error { return (*ID)(id).Scan(src) }
func (id *AccessPolicyID) Scan(src any) error { return (*ID)(id).Scan(src) }
func (id *EventID) Scan(src any) error        { return (*ID)(id).Scan(src) }
func (id *JobID) Scan(src any) error          { return (*ID)(id).Scan(src) }

func (id UserID) MarshalText() ([]byte, error)         { return ID(id).MarshalText() }
func (id ApplicationID) MarshalText() ([]byte, error)  { return ID(id).MarshalText() }
func (id StorageLocID) MarshalText() ([]byte, error)   { return ID(id).MarshalText() }
func (id FileID) MarshalText() ([]byte, error)         { return ID(id).MarshalText() }
func (id FileVersionID) MarshalText() ([]byte, error)  { return ID(id).MarshalText() }
func (id FileGroupID) MarshalText() ([]byte, error)    { return ID(id).MarshalText() }
func (id UserGroupID) MarshalText() ([]byte, error)    { return ID(id).MarshalText() }
func (id StorageQuotaID) MarshalText() ([]byte, error) { return ID(id).MarshalText() }
func (id AccessPolicyID) MarshalText() ([]byte, error) { return ID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)        { return ID(id).MarshalText() }
func (id JobID) MarshalText() ([]byte, error)          { return ID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error         { return (*ID)(id).UnmarshalText(b) }
func (id *ApplicationID) UnmarshalText(b []byte) error  { return (*ID)(id).UnmarshalText(b) }
func (id *StorageLocID) UnmarshalText(b []byte) error   { return (*ID)(id).UnmarshalText(b) }
func (id *FileID) UnmarshalText(b []byte) error         { return (*ID)(id).UnmarshalText(b) }
func (id *FileVersionID) UnmarshalText(b []byte) error  { return (*ID)(id).UnmarshalText(b) }
func (id *FileGroupID) UnmarshalText(b []byte) error    { return (*ID)(id).UnmarshalText(b) }
func (id *UserGroupID) UnmarshalText(b []byte) error    { return (*ID)(id).UnmarshalText(b) }
func (id *StorageQuotaID) UnmarshalText(b []byte) error { return (*ID)(id).UnmarshalText(b) }
func (id *AccessPolicyID) UnmarshalText(b []byte) error { return (*ID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error        { return (*ID)(id).UnmarshalText(b) }
func (id *JobID) UnmarshalText(b []byte) error          { return (*ID)(id).UnmarshalText(b) }

// IsZero reports whether id is the zero UUID, used by the reconciler to
// detect a not-yet-assigned database ID in a custom resource's status.
func (id StorageLocID) IsZero() bool   { return ID(id).IsZero() }
func (id ApplicationID) IsZero() bool  { return ID(id).IsZero() }
func (id AccessPolicyID) IsZero() bool { return ID(id).IsZero() }
