// Package status is the result type every component in this controller
// returns instead of raising an exception, per the source's
// "exception-based error flow -> explicit result types" design note.
//
// It plays the same role the teacher's internal/errors.AppError plays for
// its HTTP handlers — a machine-readable code plus a human message — but
// the codes here are the session-termination codes the spec defines (§7),
// not HTTP status codes, since this controller has no HTTP surface.
package status

import "fmt"

// Code is one of the session/plugin error kinds enumerated in spec §7.
type Code int

const (
	OK Code = iota
	InvalidArgument
	NotFound
	FailedPrecondition
	DeadlineExceeded
	Cancelled
	Unavailable
	Unknown
	Internal
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case FailedPrecondition:
		return "FailedPrecondition"
	case DeadlineExceeded:
		return "DeadlineExceeded"
	case Cancelled:
		return "Cancelled"
	case Unavailable:
		return "Unavailable"
	case Unknown:
		return "Unknown"
	case Internal:
		return "Internal"
	default:
		return "Unrecognized"
	}
}

// Status is the result carried alongside (or instead of) a value. A nil
// *Status, and an explicit &Status{Code: OK}, both mean success; Ok()
// treats them identically so call sites don't need to special-case nil.
type Status struct {
	Code    Code
	Message string
}

// New builds a Status with a fixed message.
func New(code Code, message string) *Status {
	return &Status{Code: code, Message: message}
}

// Newf builds a Status with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Status {
	return New(code, fmt.Sprintf(format, args...))
}

// Success returns the canonical OK status.
func Success() *Status {
	return &Status{Code: OK}
}

// Ok reports whether s represents success. A nil receiver is success,
// so functions that only fail sometimes can return a bare nil.
func (s *Status) Ok() bool {
	return s == nil || s.Code == OK
}

// Error implements the error interface so a *Status can be passed anywhere
// a standard error is expected (e.g. wrapped by fmt.Errorf's %w).
func (s *Status) Error() string {
	if s == nil {
		return "OK"
	}
	if s.Message == "" {
		return s.Code.String()
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Message)
}

// Join collapses a set of statuses into one, joining every non-OK message
// with a newline and reporting under a single code. Returns a success
// status if every input was OK (or nil). This is the mechanism behind the
// "accumulate all errors into one message" rule used by spec validation
// (§4.8 Phase 1) and by MetricsEvaluator.AnalyzeBenchmark (§4.6 step 4).
func Join(code Code, statuses ...*Status) *Status {
	var messages []string
	for _, s := range statuses {
		if s.Ok() {
			continue
		}
		messages = append(messages, s.Error())
	}
	if len(messages) == 0 {
		return Success()
	}
	joined := messages[0]
	for _, m := range messages[1:] {
		joined += "\n" + m
	}
	return New(code, joined)
}

// JoinMessages is like Join but takes plain strings, for call sites that
// accumulate free-form validation messages rather than Status values.
func JoinMessages(code Code, messages ...string) *Status {
	if len(messages) == 0 {
		return Success()
	}
	joined := messages[0]
	for _, m := range messages[1:] {
		joined += "\n" + m
	}
	return New(code, joined)
}
