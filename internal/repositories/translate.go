package repositories

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"rentalapi/internal/domain"
)

// MySQL error numbers surfaced by constraint violations.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrRowIsReferred   = 1451
	mysqlErrNoReferencedRow = 1452
)

// TranslateError converts driver-level failures into the domain taxonomy so
// no MySQL error code leaks past the repository layer.
func TranslateError(resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrNoReferencedRow:
			return domain.ReferentialError{Resource: resource, Msg: "referenced row does not exist", Err: err}
		case mysqlErrRowIsReferred:
			return domain.ReferentialError{Resource: resource, Msg: "row is still referenced by dependent records", Err: err}
		case mysqlErrDuplicateEntry:
			return domain.ReferentialError{Resource: resource, Msg: "duplicate entry", Err: err}
		}
	}
	return domain.InternalError{Err: err}
}
