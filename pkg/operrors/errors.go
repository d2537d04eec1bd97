// Package operrors classifies the failures the controllers can surface.
//
// Every error returned from a reconciliation carries exactly one Kind. The kind
// does not change retry behaviour (the workqueue retries everything after a fixed
// backoff), it only tells operators what went wrong.
package operrors

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a failure.
type Kind int

const (
	// KindUnknown is returned by KindOf for errors that were never classified.
	KindUnknown Kind = iota
	// KindPattern is an invalid namespace glob.
	KindPattern
	// KindStore is any failure reported by the Kubernetes API, including conflicts.
	KindStore
	// KindEncoding is an invalid base64 value or a malformed data template.
	KindEncoding
	// KindGeneratorConfig is an unsatisfiable random generator configuration.
	KindGeneratorConfig
	// KindReference is a broken secret reference or owner reference.
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindPattern:
		return "PatternError"
	case KindStore:
		return "StoreError"
	case KindEncoding:
		return "EncodingError"
	case KindGeneratorConfig:
		return "GeneratorConfigError"
	case KindReference:
		return "ReferenceError"
	default:
		return "UnknownError"
	}
}

// Reference failures.
var (
	ErrSecretKeySelectorHasNoName = errors.New("secret key selector has no name")
	ErrSecretHasNoData            = errors.New("secret has no data")
	ErrSecretKeyNotFound          = errors.New("key not found")
	ErrNoOwnerReference           = errors.New("no owner reference to a known template kind")
	ErrAmbiguousOwnerReference    = errors.New("more than one owner reference to a known template kind")
)

// Error is a failure tagged with its Kind.
type Error struct {
	Err  error
	Op   string
	Kind Kind
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and the operation that failed.
// A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Store wraps an API failure.
func Store(op string, err error) error {
	return New(KindStore, op, err)
}

// Reference wraps a reference failure.
func Reference(op string, err error) error {
	return New(KindReference, op, err)
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
