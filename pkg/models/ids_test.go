package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_ParseStringRoundTrip(t *testing.T) {
	id := NewID()
	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
}

func TestID_IsZero(t *testing.T) {
	var zero ID
	assert.True(t, zero.IsZero())
	assert.False(t, NewID().IsZero())
}

func TestID_ParseRejectsGarbage(t *testing.T) {
	_, err := ParseID("not-a-uuid")
	assert.Error(t, err)
}

func TestNamedSubtype_ValueAndScanRoundTrip(t *testing.T) {
	fileID := FileID(NewID())

	v, err := fileID.Value()
	require.NoError(t, err)

	var scanned FileID
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, fileID, scanned)
}

func TestNamedSubtype_MarshalUnmarshalTextRoundTrip(t *testing.T) {
	userID := UserID(NewID())

	text, err := userID.MarshalText()
	require.NoError(t, err)

	var decoded UserID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, userID, decoded)
}

func TestStorageLocID_IsZero(t *testing.T) {
	var zero StorageLocID
	assert.True(t, zero.IsZero())
	assert.False(t, StorageLocID(NewID()).IsZero())
}
