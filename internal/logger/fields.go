package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldJob is the ingestion job name
	FieldJob = "job"

	// FieldUser is the owning user identifier
	FieldUser = "user"

	// FieldLoader is the remote loader type tag
	FieldLoader = "loader"

	// FieldSource is the source record identifier
	FieldSource = "source"

	// FieldComponent is the component/module name
	FieldComponent = "component"
)

// Standard metric fields used for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldTokens is a token count
	FieldTokens = "tokens"

	// FieldDocs is a document count
	FieldDocs = "docs"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
