package service

import (
	"context"

	"mentapos/internal/apierror"
	"mentapos/internal/config"
	"mentapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// InventarioService owns stock bookkeeping. Decrements are clamped at zero:
// overselling is absorbed silently and the sale completes. What happens when
// the decrement itself FAILS is a configured policy, not an accident:
//
//	abort             — the error propagates and rolls back the sale
//	warn-and-continue — the error is logged and the sale commits anyway
//	                    (stock accuracy becomes best-effort)
type InventarioService interface {
	// DescontarStockTx runs inside the sale transaction; returns the stock
	// after the clamped decrement.
	DescontarStockTx(ctx context.Context, tx *gorm.DB, productoID, restaurante uuid.UUID, cantidad int) (int, error)
	// AjustarStock applies a manual delta outside any sale (supervisor
	// correction). Clamped at zero as well.
	AjustarStock(ctx context.Context, actor Actor, productoID uuid.UUID, delta int, motivo string) (int, error)
}

type inventarioService struct {
	repo     repository.ProductoRepository
	politica string
}

func NewInventarioService(repo repository.ProductoRepository, politica string) InventarioService {
	return &inventarioService{repo: repo, politica: politica}
}

func (s *inventarioService) DescontarStockTx(ctx context.Context, tx *gorm.DB, productoID, restaurante uuid.UUID, cantidad int) (int, error) {
	nuevoStock, err := s.repo.DescontarStockClampTx(tx, productoID, restaurante, cantidad)
	if err == nil {
		return nuevoStock, nil
	}

	if s.politica == config.StockFailureAbort {
		return 0, apierror.Persistence(err)
	}

	// warn-and-continue: the sale is worth more than stock accuracy here.
	log.Warn().
		Err(err).
		Str("producto_id", productoID.String()).
		Int("cantidad", cantidad).
		Msg("descuento de stock fallido, la venta continua por politica")
	return 0, nil
}

func (s *inventarioService) AjustarStock(ctx context.Context, actor Actor, productoID uuid.UUID, delta int, motivo string) (int, error) {
	if _, err := s.repo.FindByID(ctx, productoID, actor.IDRestaurante); err != nil {
		return 0, apierror.NotFoundf("Producto no encontrado")
	}
	nuevoStock, err := s.repo.AjustarStock(ctx, productoID, actor.IDRestaurante, delta)
	if err != nil {
		return 0, apierror.Persistence(err)
	}
	log.Info().
		Str("producto_id", productoID.String()).
		Int("delta", delta).
		Int("stock_nuevo", nuevoStock).
		Str("motivo", motivo).
		Str("usuario", actor.Username).
		Msg("ajuste manual de stock")
	return nuevoStock, nil
}
