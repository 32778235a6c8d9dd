package sequencer

import (
	"fmt"

	"github.com/tu-usuario/almacen-pro/internal/domain"
	"github.com/tu-usuario/almacen-pro/internal/domain/entity"
	"github.com/tu-usuario/almacen-pro/internal/domain/repository"
)

// Prefijos habilitados. Un prefijo fuera de esta lista es un error de
// programación del módulo llamador, no un dato del usuario.
var knownPrefixes = map[string]bool{
	entity.PrefixPurchaseOrder: true,
	entity.PrefixServiceOrder:  true,
	entity.PrefixIssueNote:     true,
	entity.PrefixTransferNote:  true,
	entity.PrefixReceiptNote:   true,
}

// Config opciones del servicio de correlativos.
type Config struct {
	// PadWidth ancho mínimo con ceros a la izquierda ("NT-003"). El número
	// crece más allá del ancho sin truncarse ("NT-1000"). Default 3.
	PadWidth int
	// MaxValue techo del contador; superarlo es un error de configuración
	// fatal (ErrSequenceExhausted). Default 1e12.
	MaxValue int64
}

// Service asigna correlativos de documentos legibles ("OC-003", "NT-012").
// La garantía de unicidad bajo concurrencia la da SequenceRepository
// (incremento atómico por prefijo); este servicio valida el prefijo y
// formatea el número.
type Service struct {
	padWidth int
	maxValue int64
}

// New construye el servicio aplicando defaults.
func New(cfg Config) *Service {
	if cfg.PadWidth <= 0 {
		cfg.PadWidth = 3
	}
	if cfg.MaxValue <= 0 {
		cfg.MaxValue = 1_000_000_000_000
	}
	return &Service{padWidth: cfg.PadWidth, maxValue: cfg.MaxValue}
}

// Next asigna el siguiente correlativo del prefijo usando el repositorio
// recibido. El repositorio debe estar atado a la transacción de la operación
// que origina el documento: si esa transacción se revierte, el incremento
// también, y la numeración no deja huecos.
func (s *Service) Next(repo repository.SequenceRepository, prefix string) (string, error) {
	if !knownPrefixes[prefix] {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownPrefix, prefix)
	}
	n, err := repo.NextValue(prefix)
	if err != nil {
		return "", fmt.Errorf("siguiente valor de %s: %w", prefix, err)
	}
	if n > s.maxValue {
		return "", fmt.Errorf("%w: %s llegó a %d (máximo %d)", domain.ErrSequenceExhausted, prefix, n, s.maxValue)
	}
	return s.Format(prefix, n), nil
}

// Format arma el correlativo "PREFIJO-NNN" con relleno de ceros.
func (s *Service) Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, s.padWidth, n)
}
