package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for Filez operations, grouped by the subsystem
// that sets them. Kept flat (not nested structs) so call sites can build
// attribute lists inline, matching the rest of the OTEL SDK's idiom.
const (
	// ========================================================================
	// Request-scoped attributes (C8 HTTP surface)
	// ========================================================================
	AttrRequestID   = "request.id"
	AttrResource    = "filez.resource_type"
	AttrAction      = "filez.action"
	AttrSubjectID   = "filez.subject_id"
	AttrAppID       = "filez.app_id"
	AttrAppTrusted  = "filez.app_trusted"
	AttrResourceIDs = "filez.resource_ids"

	// ========================================================================
	// Access evaluator attributes (C3)
	// ========================================================================
	AttrDecision      = "access.decision"
	AttrDecisionOwner = "access.owner_fastpath"
	AttrDenyPolicyID  = "access.deny_policy_id"

	// ========================================================================
	// File / version engine attributes (C5)
	// ========================================================================
	AttrFileID         = "file.id"
	AttrVersionID      = "file_version.id"
	AttrVersionNumber  = "file_version.number"
	AttrContentValid   = "file_version.content_valid"
	AttrUploadOffset   = "upload.offset"
	AttrUploadLength   = "upload.length"
	AttrDigestExpected = "upload.digest_expected"
	AttrDigestActual   = "upload.digest_actual"

	// ========================================================================
	// Quota attributes (C6)
	// ========================================================================
	AttrQuotaID     = "quota.id"
	AttrQuotaBytes  = "quota.limit_bytes"
	AttrUsedBytes   = "quota.used_bytes"
	AttrReserveSize = "quota.reserve_bytes"

	// ========================================================================
	// Storage backend attributes (C1)
	// ========================================================================
	AttrStorageLocationID = "storage.location_id"
	AttrStorageProvider   = "storage.provider_kind"
	AttrObjectKey         = "storage.object_key"
	AttrOffset            = "storage.offset"
	AttrLength            = "storage.length"

	// ========================================================================
	// Job coordinator attributes (C10)
	// ========================================================================
	AttrJobID           = "job.id"
	AttrJobStatus       = "job.status"
	AttrRuntimeInstance = "job.runtime_instance_id"
)

// Span names for operations, namespaced by component.
const (
	SpanHTTPRequest = "http.request"

	SpanAccessEvaluate = "access.evaluate"

	SpanFileCreate    = "file.create"
	SpanFileUpdate    = "file.update"
	SpanFileDelete    = "file.delete"
	SpanVersionCreate = "file_version.create"
	SpanUploadHead    = "upload.head"
	SpanUploadPatch   = "upload.patch"
	SpanUploadCommit  = "upload.commit_digest"
	SpanContentRead   = "content.read"

	SpanTagUpdate        = "tags.update"
	SpanGroupListMembers = "group.list_members"

	SpanQuotaReserve  = "quota.reserve"
	SpanQuotaFinalize = "quota.finalize"
	SpanQuotaRelease  = "quota.release"

	SpanStorageOpen   = "storage.open_for_write"
	SpanStorageAppend = "storage.append_range"
	SpanStorageRead   = "storage.read_range"
	SpanStorageStat   = "storage.stat"
	SpanStorageDelete = "storage.delete"

	SpanJobPickup       = "job.pickup"
	SpanJobUpdateStatus = "job.update_status"

	SpanDBTransaction = "db.transaction"

	SpanReconcileStorageLocation = "reconcile.storage_location"
	SpanReconcileApplication     = "reconcile.application"
	SpanReconcileAccessPolicy    = "reconcile.access_policy"
)

// Resource returns an attribute for the resource type under evaluation.
func Resource(resourceType string) attribute.KeyValue {
	return attribute.String(AttrResource, resourceType)
}

// Action returns an attribute for the access-control action being checked.
func Action(action string) attribute.KeyValue {
	return attribute.String(AttrAction, action)
}

// Decision returns an attribute for an access-control decision outcome.
func Decision(decision string) attribute.KeyValue {
	return attribute.String(AttrDecision, decision)
}

// StorageLocationID returns an attribute for the storage location a backend call targets.
func StorageLocationID(id string) attribute.KeyValue {
	return attribute.String(AttrStorageLocationID, id)
}

// ObjectKey returns an attribute for the backend object key of a storage call.
func ObjectKey(key string) attribute.KeyValue {
	return attribute.String(AttrObjectKey, key)
}

// FileID returns an attribute for the file a span operates on.
func FileID(id string) attribute.KeyValue {
	return attribute.String(AttrFileID, id)
}

// VersionID returns an attribute for the file version a span operates on.
func VersionID(id string) attribute.KeyValue {
	return attribute.String(AttrVersionID, id)
}

// QuotaID returns an attribute for the quota a span reserves or releases against.
func QuotaID(id string) attribute.KeyValue {
	return attribute.String(AttrQuotaID, id)
}

// JobID returns an attribute for the job a span claims or updates.
func JobID(id string) attribute.KeyValue {
	return attribute.String(AttrJobID, id)
}
