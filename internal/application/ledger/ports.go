package ledger

import (
	"context"

	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

// TxRunner ejecuta el callback dentro de una transacción de la base de datos,
// entregando repositorios atados a esa transacción. Commit si fn retorna nil,
// Rollback en caso contrario. Es el sobre transaccional que comparten
// ingresos, salidas y traslados.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		balRepo repository.BalanceRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}
