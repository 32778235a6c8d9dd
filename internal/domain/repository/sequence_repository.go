package repository

// SequenceRepository define el puerto del contador de correlativos por
// prefijo. La implementación debe garantizar que dos llamadores concurrentes
// nunca reciban el mismo valor para el mismo prefijo (incremento atómico,
// jamás "leer el máximo y sumar uno").
type SequenceRepository interface {
	// NextValue crea el contador del prefijo si no existe y devuelve el
	// siguiente valor, en una sola operación atómica.
	NextValue(prefix string) (int64, error)
}
