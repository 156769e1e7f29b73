package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout constants
const (
	// HostedProviderTimeout bounds one request to a hosted AI backend
	HostedProviderTimeout = 30 * time.Second
	// LocalProviderTimeout bounds one request to the local backend, which may cold-start
	LocalProviderTimeout = 120 * time.Second
	// LocalProbeTimeout bounds the startup reachability probe of the local backend
	LocalProbeTimeout = 2 * time.Second
)

// Limit constants
const (
	// SessionMemorySize is the number of remembered exchanges
	SessionMemorySize = 5
	// DefaultMaxContextBytes bounds the assembled provider context
	DefaultMaxContextBytes = 8192
	// DefaultMaxTokens is the completion budget requested from hosted backends
	DefaultMaxTokens = 2048
	// DefaultFollowUpDepth bounds scan-to-vulnerability follow-up queries
	DefaultFollowUpDepth = 1
	// ScanOutputLimit bounds captured scanner output in bytes
	ScanOutputLimit = 64 * 1024
	// DefaultHistorySize is the number of shell history entries kept
	DefaultHistorySize = 1000
	// DefaultAuditRecent is the number of audit entries shown by default
	DefaultAuditRecent = 20
)

// Time formats
const (
	// AuditTimestampFormat is the timestamp layout of audit log lines
	AuditTimestampFormat = "2006-01-02 15:04:05"
)

// Default prompt
const DefaultShellPrompt = "#DYNAMO$ "
