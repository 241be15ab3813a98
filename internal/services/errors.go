package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks a network or HTTP failure while fetching state
	// (session listings, play history). Callers treat the affected cycle as
	// "no data", never as "everything ended".
	ErrTransient = errors.New("transient fetch failure")
	// ErrTransientAction marks a transport-level failure while issuing a
	// terminate or notify call.
	ErrTransientAction = errors.New("transient action failure")
	// ErrConfiguration marks missing or invalid credentials/URLs. Fatal at
	// startup; never raised mid-cycle.
	ErrConfiguration = errors.New("configuration error")
	// ErrEvaluation marks malformed upstream data encountered while parsing
	// sessions or evaluating a rule. Isolated per rule.
	ErrEvaluation = errors.New("policy evaluation error")
	// ErrNotFound marks a lookup that resolved to nothing, such as an
	// unknown notification channel ID.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTransient reports whether err is a transient fetch or action failure
// worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrTransientAction)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
