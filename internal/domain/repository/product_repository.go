package repository

import "github.com/tu-usuario/almacen-pro/internal/domain/entity"

// ProductRepository define el puerto de consulta del maestro de productos.
// El alta/edición de productos la hace el módulo de datos maestros (externo);
// el motor de stock solo necesita verificar existencia y listar.
type ProductRepository interface {
	GetByCode(code string) (*entity.Product, error)
	ExistsByCode(code string) (bool, error)
	List(limit, offset int) ([]*entity.Product, error)
}
