package domain

import (
	"strings"
	"time"
)

// AuditKind classifies one audit record.
type AuditKind int

const (
	AuditAIQuery AuditKind = iota
	AuditAIResponse
	AuditCommandExec
	AuditCommandBlocked
	AuditSafetyWarning
	AuditUserConfirm
	AuditBackendSwitch
	AuditError
)

var auditKindNames = []string{
	"AI_QUERY",
	"AI_RESPONSE",
	"COMMAND_EXEC",
	"COMMAND_BLOCKED",
	"SAFETY_WARNING",
	"USER_CONFIRM",
	"BACKEND_SWITCH",
	"AI_ERROR",
}

func (k AuditKind) String() string {
	if k < 0 || int(k) >= len(auditKindNames) {
		return "UNKNOWN"
	}
	return auditKindNames[k]
}

// AuditKinds returns every kind in declaration order.
func AuditKinds() []AuditKind {
	kinds := make([]AuditKind, len(auditKindNames))
	for i := range auditKindNames {
		kinds[i] = AuditKind(i)
	}
	return kinds
}

// ParseAuditKind resolves a kind name. ERROR is accepted as an alias of
// AI_ERROR.
func ParseAuditKind(name string) (AuditKind, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "ERROR" {
		return AuditError, true
	}
	for i, known := range auditKindNames {
		if known == name {
			return AuditKind(i), true
		}
	}
	return 0, false
}

// AuditEntry is one durable record of the audit trail.
type AuditEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Kind      AuditKind `json:"kind"`
	Details   string    `json:"details"`
	User      string    `json:"user"`
}
