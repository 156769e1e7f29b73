package domain

import "strings"

// QueryResult is the outcome of one top-level AI query. Exactly one of Text
// and Err is populated.
type QueryResult struct {
	Success  bool
	Text     string
	Err      string
	Provider ProviderID
	Model    string
	Attempts []ProviderID
}

// QuerySuccess builds a successful result.
func QuerySuccess(text string) QueryResult {
	return QueryResult{Success: true, Text: text}
}

// QueryFailure builds a failed result. An empty message is replaced so that a
// failure always carries an explanation.
func QueryFailure(msg string) QueryResult {
	if strings.TrimSpace(msg) == "" {
		msg = "unknown error"
	}
	return QueryResult{Err: msg}
}

// SessionExchange is one remembered (input, response) pair.
type SessionExchange struct {
	Input    string
	Response string
}

// DirectiveKind tags one line of an AI reply.
type DirectiveKind int

const (
	DirectiveCommand DirectiveKind = iota
	DirectiveExplain
	DirectiveScan
	DirectiveVuln
	DirectiveCTF
)

// Prefix returns the wire prefix of the directive, including the colon.
func (k DirectiveKind) Prefix() string {
	switch k {
	case DirectiveCommand:
		return "COMMAND:"
	case DirectiveExplain:
		return "EXPLAIN:"
	case DirectiveScan:
		return "SCAN:"
	case DirectiveVuln:
		return "VULN:"
	case DirectiveCTF:
		return "CTF:"
	default:
		return ""
	}
}

func (k DirectiveKind) String() string {
	return strings.TrimSuffix(k.Prefix(), ":")
}

// DirectiveKinds lists directives in matching order.
func DirectiveKinds() []DirectiveKind {
	return []DirectiveKind{DirectiveCommand, DirectiveExplain, DirectiveScan, DirectiveVuln, DirectiveCTF}
}

// Directive is one parsed reply line. Implicit is set for lines that carried
// no prefix and were routed to the explanation path.
type Directive struct {
	Kind     DirectiveKind
	Body     string
	Implicit bool
}

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	Ran        bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
	Err        error
	Preview    string
}

// GateOutcome reports what happened to a command submitted for execution.
type GateOutcome int

const (
	OutcomeExecuted GateOutcome = iota
	OutcomeBlocked
	OutcomeDeclined
	OutcomePreviewed
	OutcomeFailed
)

func (o GateOutcome) String() string {
	switch o {
	case OutcomeExecuted:
		return "executed"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeDeclined:
		return "declined"
	case OutcomePreviewed:
		return "previewed"
	case OutcomeFailed:
		return "failed"
	default:
		return unknownName
	}
}

// GateResult carries the analysis alongside the outcome.
type GateResult struct {
	Outcome   GateOutcome
	Analysis  RiskAnalysis
	Execution *ExecutionResult
}
