package logger

import (
	"log/slog"
)

// Standard field keys for structured logging, scoped to Filez's domain
// (requests, files, storage backends, jobs) rather than a wire protocol.
// Use these keys consistently across all log statements for log
// aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID   = "trace_id"   // OpenTelemetry trace ID for request correlation
	KeySpanID    = "span_id"    // OpenTelemetry span ID for operation tracking
	KeyRequestID = "request_id" // chi request ID

	// ========================================================================
	// Access & Identity
	// ========================================================================
	KeyAction       = "action"        // access.Request.Action being evaluated/performed
	KeyResourceType = "resource_type" // resource type an action/policy targets
	KeyResourceID   = "resource_id"   // resource ID an action/policy targets
	KeySubject      = "subject"       // caller's User ID
	KeyAppID        = "app_id"        // resolved Application ID
	KeyDecision     = "decision"      // Allowed or Denied

	// ========================================================================
	// Files & Versions
	// ========================================================================
	KeyFileID            = "file_id"            // File ID
	KeyVersionID         = "version_id"         // FileVersion ID
	KeyStorageLocationID = "storage_location_id" // StorageLocation ID

	// ========================================================================
	// Client Identification
	// ========================================================================
	KeyClientIP = "client_ip" // Client IP address

	// ========================================================================
	// I/O Operations
	// ========================================================================
	KeyOffset       = "offset"        // Upload offset
	KeyBytesRead    = "bytes_read"    // Actual bytes read
	KeyBytesWritten = "bytes_written" // Actual bytes written

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // apierr.Kind
	KeyComponent  = "component"   // Logical subsystem emitting the line

	// ========================================================================
	// Storage Backend (C1 Provider)
	// ========================================================================
	KeyStoreType  = "store_type"  // Provider kind: s3, fs, badger
	KeyBucket     = "bucket"      // S3 bucket name
	KeyRegion     = "region"      // S3 region
	KeyAttempt    = "attempt"     // Retry attempt number
	KeyMaxRetries = "max_retries" // Maximum retry attempts

	// ========================================================================
	// Jobs (C10)
	// ========================================================================
	KeyJobID   = "job_id"   // Job ID
	KeyJobKind = "job_kind" // Job kind
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Action returns a slog.Attr for the access-control action being evaluated
func Action(action string) slog.Attr {
	return slog.String(KeyAction, action)
}

// ResourceType returns a slog.Attr for a resource type
func ResourceType(t string) slog.Attr {
	return slog.String(KeyResourceType, t)
}

// ResourceID returns a slog.Attr for a resource ID
func ResourceID(id string) slog.Attr {
	return slog.String(KeyResourceID, id)
}

// Subject returns a slog.Attr for the caller's user ID
func Subject(userID string) slog.Attr {
	return slog.String(KeySubject, userID)
}

// AppID returns a slog.Attr for the resolved application ID
func AppID(id string) slog.Attr {
	return slog.String(KeyAppID, id)
}

// Decision returns a slog.Attr for an access decision outcome
func Decision(decision string) slog.Attr {
	return slog.String(KeyDecision, decision)
}

// FileID returns a slog.Attr for a File ID
func FileID(id string) slog.Attr {
	return slog.String(KeyFileID, id)
}

// VersionID returns a slog.Attr for a FileVersion ID
func VersionID(id string) slog.Attr {
	return slog.String(KeyVersionID, id)
}

// StorageLocationID returns a slog.Attr for a StorageLocation ID
func StorageLocationID(id string) slog.Attr {
	return slog.String(KeyStorageLocationID, id)
}

// ClientIP returns a slog.Attr for client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// Offset returns a slog.Attr for an upload offset
func Offset(off int64) slog.Attr {
	return slog.Int64(KeyOffset, off)
}

// BytesRead returns a slog.Attr for actual bytes read
func BytesRead(n int64) slog.Attr {
	return slog.Int64(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for actual bytes written
func BytesWritten(n int64) slog.Attr {
	return slog.Int64(KeyBytesWritten, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for an apierr.Kind string
func ErrorCode(kind string) slog.Attr {
	return slog.String(KeyErrorCode, kind)
}

// Component returns a slog.Attr naming the logical subsystem
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// StoreType returns a slog.Attr for a storage provider kind
func StoreType(t string) slog.Attr {
	return slog.String(KeyStoreType, t)
}

// Bucket returns a slog.Attr for an S3 bucket name
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Region returns a slog.Attr for a cloud region
func Region(r string) slog.Attr {
	return slog.String(KeyRegion, r)
}

// Attempt returns a slog.Attr for retry attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxRetries returns a slog.Attr for maximum retry attempts
func MaxRetries(n int) slog.Attr {
	return slog.Int(KeyMaxRetries, n)
}

// JobID returns a slog.Attr for a Job ID
func JobID(id string) slog.Attr {
	return slog.String(KeyJobID, id)
}

// JobKind returns a slog.Attr for a job kind
func JobKind(kind string) slog.Attr {
	return slog.String(KeyJobKind, kind)
}
