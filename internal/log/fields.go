package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldCollection  = "collection"
	FieldID          = "id"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldGoalName    = "goal_name"
	FieldRuleID      = "rule_id"
	FieldPoints      = "points"
	FieldBackend     = "backend"
	FieldSheetsRef   = "sheets_ref"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentLedger = "ledger"
	ComponentRules  = "rules"
	ComponentKV     = "kv"
	ComponentEvents = "events"
	ComponentExport = "export"
	ComponentCLI    = "cli"
)

// Operations defines standard operation names
const (
	OpCreate     = "create"
	OpRead       = "read"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpContribute = "contribute"
	OpEvaluate   = "evaluate"
	OpExport     = "export"
	OpHydrate    = "hydrate"
	OpShutdown   = "shutdown"
	OpStartup    = "startup"
)
