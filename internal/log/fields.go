package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldClientIP = "client_ip"
	FieldCacheKey = "cache_key"

	FieldRuleID      = "rule_id"
	FieldEntryID     = "entry_id"
	FieldKind        = "kind"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldDate        = "date"
	FieldFrom        = "from"
	FieldTo          = "to"
	FieldOccurrences = "occurrences"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpDelete   = "delete"
	OpExclude  = "exclude"
	OpList     = "list"
	OpQuery    = "query"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
