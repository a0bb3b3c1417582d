package fault

import (
	"errors"
	"net/http"
)

// Kind identifies the category of a failure.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidArgument
	KindConflict
	KindStorage
	KindUnauthenticated
)

// Kind sentinels. Wrap these, never return them bare from a component.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage error")
	ErrUnauthenticated = errors.New("unauthenticated")
)

var kinds = []struct {
	kind     Kind
	sentinel error
	status   int
	name     string
}{
	{KindNotFound, ErrNotFound, http.StatusNotFound, "not_found"},
	{KindForbidden, ErrForbidden, http.StatusForbidden, "forbidden"},
	{KindInvalidArgument, ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
	{KindConflict, ErrConflict, http.StatusConflict, "conflict"},
	{KindStorage, ErrStorage, http.StatusInternalServerError, "storage_error"},
	{KindUnauthenticated, ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
}

// kindError is a component sentinel carrying its kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// Wrap returns a new sentinel error with the given message that matches
// kind under errors.Is. Intended for package-level var blocks.
func Wrap(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// KindOf returns the kind of the first kind sentinel found in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnknown
}

// HTTPStatus maps err to a response status. Unclassified errors are 500.
func HTTPStatus(err error) int {
	kind := KindOf(err)
	for _, k := range kinds {
		if k.kind == kind {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// String returns the machine-readable code for k.
func (k Kind) String() string {
	for _, entry := range kinds {
		if entry.kind == k {
			return entry.name
		}
	}
	return "internal_error"
}
