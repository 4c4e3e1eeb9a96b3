package dto

import "github.com/shopspring/decimal"

type ProductoFilter struct {
	Nombre      string `form:"nombre"`
	IDCategoria string `form:"id_categoria"`
	Activo      string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CrearProductoRequest struct {
	Nombre      string          `json:"nombre"       validate:"required"`
	Precio      decimal.Decimal `json:"precio"       validate:"required,gt=0"`
	IDCategoria *string         `json:"id_categoria" validate:"omitempty,uuid"`
	StockActual int             `json:"stock_actual" validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Nombre      *string          `json:"nombre"`
	Precio      *decimal.Decimal `json:"precio"       validate:"omitempty,gt=0"`
	IDCategoria *string          `json:"id_categoria" validate:"omitempty,uuid"`
}

// AjustarStockRequest applies a manual stock delta (positive or negative).
// Negative adjustments clamp at zero like the sale path.
type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ProductoResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Precio      decimal.Decimal `json:"precio"`
	IDCategoria *string         `json:"id_categoria,omitempty"`
	Categoria   string          `json:"categoria,omitempty"`
	StockActual int             `json:"stock_actual"`
	Activo      bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type CategoriaResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Activo bool   `json:"activo"`
}
