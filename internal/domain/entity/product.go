package entity

import "time"

// Product representa un producto del maestro de materiales. El kardex lo
// referencia únicamente por Code; los atributos descriptivos los administra
// el módulo de datos maestros (externo).
type Product struct {
	ID          string
	Code        string // código único de material, ej. "CEM-001"
	Description string
	UnitMeasure string // unidad de medida, ej. "BOL", "KG", "UND"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
