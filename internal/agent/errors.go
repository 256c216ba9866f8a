package agent

import "strings"

// ErrorClass — грубая классификация сбоя шага для логов.
type ErrorClass int

const (
	ErrorTemporary ErrorClass = iota
	ErrorRetryable
	ErrorCritical
)

func (e ErrorClass) String() string {
	switch e {
	case ErrorTemporary:
		return "temporary"
	case ErrorRetryable:
		return "retryable"
	case ErrorCritical:
		return "critical"
	default:
		return "unknown"
	}
}

func classify(err error) ErrorClass {
	if err == nil {
		return ErrorTemporary
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "network"),
		strings.Contains(msg, "connection"),
		strings.Contains(msg, "econnrefused"),
		strings.Contains(msg, "etimedout"):
		return ErrorRetryable
	case strings.Contains(msg, "паника"),
		strings.Contains(msg, "closed"),
		strings.Contains(msg, "crash"):
		return ErrorCritical
	default:
		return ErrorTemporary
	}
}
