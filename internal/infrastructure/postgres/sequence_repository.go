package postgres

import (
	"context"
	"fmt"

	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo implementación del contador de correlativos sobre PostgreSQL
// (usable con pool o tx).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador de secuencias. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// NextValue incrementa y devuelve el contador del prefijo en una sola
// sentencia (UPSERT + RETURNING). El bloqueo de fila que toma el UPDATE
// serializa a los llamadores concurrentes del mismo prefijo: dos llamadores
// nunca reciben el mismo valor. Jamás se calcula como MAX()+1 sobre los
// documentos emitidos, que pierde la carrera entre leer y escribir.
func (r *SequenceRepo) NextValue(prefix string) (int64, error) {
	query := `
		INSERT INTO document_sequences (prefix, last_value, updated_at)
		VALUES ($1, 1, now())
		ON CONFLICT (prefix)
		DO UPDATE SET last_value = document_sequences.last_value + 1, updated_at = now()
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(context.Background(), query, prefix).Scan(&n); err != nil {
		return 0, fmt.Errorf("next value %s: %w", prefix, err)
	}
	return n, nil
}
