package sav

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which taxonomy entry an Error belongs to (§6.3).
type Kind int

const (
	KindIO Kind = iota
	KindUnexpectedEOF
	KindBadMagic
	KindBadLayout
	KindEndiannessMismatch
	KindUnsupportedFloatRep
	KindUnsupportedCharset
	KindCorruptRecord
	KindOrphanedIndexRecord
	KindBadVariableName
	KindDuplicateVariableName
	KindBadFormatSpec
	KindMissingValueNotAllowed
	KindWeightInvalid
	KindCorruptPartialCase
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "Io"
	case KindUnexpectedEOF:
		return "UnexpectedEof"
	case KindBadMagic:
		return "BadMagic"
	case KindBadLayout:
		return "BadLayout"
	case KindEndiannessMismatch:
		return "EndiannessMismatch"
	case KindUnsupportedFloatRep:
		return "UnsupportedFloatRep"
	case KindUnsupportedCharset:
		return "UnsupportedCharset"
	case KindCorruptRecord:
		return "CorruptRecord"
	case KindOrphanedIndexRecord:
		return "OrphanedIndexRecord"
	case KindBadVariableName:
		return "BadVariableName"
	case KindDuplicateVariableName:
		return "DuplicateVariableName"
	case KindBadFormatSpec:
		return "BadFormatSpec"
	case KindMissingValueNotAllowed:
		return "MissingValueNotAllowed"
	case KindWeightInvalid:
		return "WeightInvalid"
	case KindCorruptPartialCase:
		return "CorruptPartialCase"
	case KindTooLarge:
		return "TooLarge"
	default:
		return "Unknown"
	}
}

// Error is the typed error every hard-failure path in this package returns.
// Kind lets a caller switch on taxonomy without string matching; the
// underlying cause (if any) is reachable through Unwrap (errors.Is/As).
// errors.Cause stops at the *Error itself.
type Error struct {
	Kind   Kind
	Tag    int32 // populated for KindCorruptRecord
	Detail string
	cause  error
}

func (e *Error) Error() string {
	msg := e.Detail
	if e.Kind == KindCorruptRecord {
		msg = fmt.Sprintf("record type %d: %s", e.Tag, e.Detail)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, detail string) error {
	return errors.WithStack(&Error{Kind: kind, Detail: detail})
}

func newErrf(kind Kind, format string, args ...interface{}) error {
	return newErr(kind, fmt.Sprintf(format, args...))
}

func wrapErr(kind Kind, cause error, detail string) error {
	return errors.WithStack(&Error{Kind: kind, Detail: detail, cause: cause})
}

func corruptRecord(tag int32, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: KindCorruptRecord, Tag: tag, Detail: fmt.Sprintf(format, args...)})
}

// AsError extracts the *Error from an error chain produced by this package,
// mirroring the Kind-dispatch the host is expected to perform (§7).
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// WarnFunc receives a recoverable diagnostic (§7). A nil WarnFunc logs
// nothing. OpenReader always uses DefaultWarnFunc; it takes no WarnFunc
// from its caller.
type WarnFunc func(format string, args ...interface{})

// DefaultWarnFunc prints warnings to stderr via log.Printf, matching the
// teacher's own preference for plain output over a structured logger.
func DefaultWarnFunc(format string, args ...interface{}) {
	logWarn(format, args...)
}
