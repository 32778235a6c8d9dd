package entity

import "time"

// Prefijos de correlativos de documentos. Deben coincidir con la numeración
// ya emitida por el sistema (ej. "OC-003", "NT-012").
const (
	PrefixPurchaseOrder = "OC" // orden de compra
	PrefixServiceOrder  = "OS" // orden de servicio
	PrefixIssueNote     = "NS" // nota de salida
	PrefixTransferNote  = "NT" // nota de traslado
	PrefixReceiptNote   = "NI" // nota de ingreso
)

// DocumentSequence es el contador por prefijo. Se crea de forma perezosa en
// el primer uso del prefijo, se incrementa exactamente una vez por asignación
// exitosa y nunca se decrementa.
type DocumentSequence struct {
	Prefix    string
	LastValue int64
	UpdatedAt time.Time
}
