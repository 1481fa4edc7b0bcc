package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldOperation  = "operation"
	FieldCollection = "collection"
	FieldUserID     = "user_id"
	FieldRecordID   = "record_id"
	FieldCount      = "count"
	FieldError      = "error"
	FieldBackend    = "backend"
	FieldSeverity   = "severity"
	FieldDuration   = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentSession = "session"
	ComponentStore   = "store"
	ComponentGateway = "gateway"
	ComponentNotify  = "notify"
	ComponentProfile = "profile"
	ComponentEvents  = "events"
	ComponentMirror  = "mirror"
	ComponentConfig  = "config"
)

// Operations defines standard operation names
const (
	OpFetch    = "fetch"
	OpInsert   = "insert"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpUpsert   = "upsert"
	OpSignIn   = "sign_in"
	OpSignOut  = "sign_out"
	OpSignUp   = "sign_up"
	OpReset    = "password_reset"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpMirror   = "mirror"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
