package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a business failure so the request layer can pick an HTTP
// status without string-matching codes.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindInvalidState        Kind = "invalid_state"
	KindNoAvailableEmployee Kind = "no_available_employee"
	KindValidation          Kind = "validation"
)

type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(kind Kind, code, message string) error {
	return BusinessError{Kind: kind, Code: code, Message: message}
}

func NotFoundErr(code, message string) error {
	return ErrBusiness(KindNotFound, code, message)
}

func ConflictErr(code, message string) error {
	return ErrBusiness(KindConflict, code, message)
}

func InvalidStateErr(code, message string) error {
	return ErrBusiness(KindInvalidState, code, message)
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func IsKind(err error, kind Kind) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}

func AsBusiness(err error) (BusinessError, bool) {
	var be BusinessError
	ok := errors.As(err, &be)
	return be, ok
}

// IsExclusionConflict reports whether err is a Postgres exclusion-constraint
// violation (SQLSTATE 23P01). The appointments table carries a gist exclusion
// constraint over (employee_id, tsrange(start_time, end_time)) so two
// concurrent writers can never both commit overlapping bookings.
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}
