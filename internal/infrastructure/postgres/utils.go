package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isConcurrencyAbort verifica si el backend abortó la transacción por
// contención: serialization_failure (40001) o deadlock_detected (40P01).
// Son los únicos errores seguros de reintentar.
func isConcurrencyAbort(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// isCheckViolation verifica violación de CHECK constraint (23514), la red de
// seguridad a nivel de schema para cantidades no positivas en el kardex.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514" // check_violation
	}
	return false
}
