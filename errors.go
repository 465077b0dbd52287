package cp2kinput

import (
	"errors"
	"fmt"
)

// ViolationKind classifies a FormatError.
type ViolationKind int

const (
	// CaseViolation: a key is not entirely uppercase.
	CaseViolation ViolationKind = iota + 1
	// ReservedCharacterViolation: a key starts with a preprocessor sigil ("@" or "$").
	ReservedCharacterViolation
)

func (k ViolationKind) String() string {
	switch k {
	case CaseViolation:
		return "case violation"
	case ReservedCharacterViolation:
		return "reserved character violation"
	default:
		return fmt.Sprintf("ViolationKind(%d)", int(k))
	}
}

var (
	// ErrNotUpperCase matches a FormatError for a key with lowercase letters.
	ErrNotUpperCase = errors.New("keyword not upper case")
	// ErrReservedPrefix matches a FormatError for a key starting with "@"
	// or "$".
	ErrReservedPrefix = errors.New("CP2K preprocessor directives not supported")
)

// FormatError is returned by rendering when a key cannot be written.
type FormatError struct {
	Kind ViolationKind
	Key  string
	// Path locates the section holding Key.
	Path Path
}

func (e *FormatError) Error() string {
	where := ""
	if len(e.Path) > 0 {
		where = " in section " + e.Path.String()
	}
	switch e.Kind {
	case CaseViolation:
		return fmt.Sprintf("keyword %q%s not upper case", e.Key, where)
	case ReservedCharacterViolation:
		return fmt.Sprintf("keyword %q%s: CP2K preprocessor directives not supported", e.Key, where)
	default:
		return fmt.Sprintf("keyword %q%s: %s", e.Key, where, e.Kind)
	}
}

// Unwrap maps the violation kind to its sentinel error.
func (e *FormatError) Unwrap() error {
	switch e.Kind {
	case CaseViolation:
		return ErrNotUpperCase
	case ReservedCharacterViolation:
		return ErrReservedPrefix
	default:
		return nil
	}
}
