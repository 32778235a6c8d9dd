package repository

import "github.com/tu-usuario/almacen-pro/internal/domain/entity"

// WarehouseRepository define el puerto de consulta de bodegas.
type WarehouseRepository interface {
	GetByID(id string) (*entity.Warehouse, error)
	List(limit, offset int) ([]*entity.Warehouse, error)
}
