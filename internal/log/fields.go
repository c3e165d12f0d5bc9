package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldProvider   = "provider"
	FieldRecords    = "records"
	FieldSnapshot   = "snapshot"
	FieldGeneration = "generation"
	FieldSourcePath = "source_path"
	FieldFilter     = "filter"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentIngest    = "ingest"
	ComponentStore     = "store"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)
