package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrRecordRejected   = errors.New("record rejected by store")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// WriteError keeps the driver message while classifying the failure.
type WriteError struct {
	Rejected bool
	Err      error
}

func (e *WriteError) Error() string {
	return e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func (e *WriteError) Is(target error) bool {
	switch target {
	case ErrRecordRejected:
		return e.Rejected
	case ErrStoreUnavailable:
		return !e.Rejected
	}
	return false
}

func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	return &WriteError{Rejected: isRejection(err), Err: err}
}

// isRejection reports whether the store refused the row itself, as opposed to
// being unreachable. SQLSTATE classes 22 (data exception) and 23 (integrity
// constraint violation) are rejections.
func isRejection(err error) bool {
	for _, target := range []error{
		gorm.ErrDuplicatedKey,
		gorm.ErrForeignKeyViolated,
		gorm.ErrCheckConstraintViolated,
		gorm.ErrInvalidData,
		gorm.ErrInvalidField,
		gorm.ErrInvalidValue,
		gorm.ErrInvalidValueOfLength,
		gorm.ErrPrimaryKeyRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isRejectionClass(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isRejectionClass(string(pqErr.Code))
	}

	return false
}

func isRejectionClass(code string) bool {
	if len(code) < 2 {
		return false
	}
	class := code[:2]
	return class == "22" || class == "23"
}
