package taskman

import (
	"fmt"
	"strings"
)

// ErrorPolicy selects how a Manager routes task outcomes that carry an
// error. Exactly one policy is active for the lifetime of a Manager; it
// is fixed at construction and applied identically in every consumption
// mode.
type ErrorPolicy int

const (
	// PolicyRaise halts the drain on the first error outcome: no further
	// source elements are pulled, the executor is shut down without
	// waiting for in-flight tasks, and the error surfaces to the caller
	// as a *TaskError. The default.
	PolicyRaise ErrorPolicy = iota
	// PolicyLog reports each error outcome through the Reporter and
	// continues; the error remains inspectable on the Task.
	PolicyLog
	// PolicyIgnore stores the error on the Task and continues, with no
	// reporting side effect.
	PolicyIgnore
)

// String returns the policy name in its parseable form.
func (p ErrorPolicy) String() string {
	switch p {
	case PolicyRaise:
		return "raise"
	case PolicyLog:
		return "log"
	case PolicyIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// ParsePolicy converts a policy name ("raise", "log" or "ignore", case
// insensitive) into its ErrorPolicy value.
func ParsePolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raise":
		return PolicyRaise, nil
	case "log":
		return PolicyLog, nil
	case "ignore":
		return PolicyIgnore, nil
	default:
		return PolicyRaise, fmt.Errorf("unknown error policy %q", s)
	}
}
