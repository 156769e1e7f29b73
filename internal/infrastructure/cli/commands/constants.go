package commands

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrShellUnavailable         = "shell service unavailable"
	ErrAuditUnavailable         = "audit trail unavailable"
	ErrMirrorUnavailable        = "audit SQLite mirror is not enabled (set audit.mirror_sqlite)"
	ErrRiskUnavailable          = "risk classifier unavailable"
	ErrBackendsUnavailable      = "AI orchestrator unavailable"
	ErrInvalidCount             = "count must be a positive integer"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgAuditCleared             = "Audit log cleared"
)
