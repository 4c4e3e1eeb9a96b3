package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mentapos/internal/apierror"
	"mentapos/internal/dto"
	"mentapos/internal/infra"
	"mentapos/internal/model"
	"mentapos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MesaService drives the table lifecycle. Abrir/Liberar/SolicitarCobro are
// the only writers of mesa.Estado besides the pedido orchestrator; every
// transition is validated against the state graph before any write.
//
// The floor-plan snapshot (ListBySucursal) is served from a short-TTL redis
// cache; every state-changing method invalidates it after commit.
type MesaService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearMesaRequest) (*dto.MesaResponse, error)
	Eliminar(ctx context.Context, actor Actor, mesaID uuid.UUID) error
	Get(ctx context.Context, actor Actor, mesaID uuid.UUID) (*dto.MesaResponse, error)
	List(ctx context.Context, actor Actor, sucursalID *uuid.UUID) (*dto.MesaListResponse, error)

	// Abrir starts a dining session: force-closes stale orders left by an
	// improperly closed session, marks the mesa en_uso and opens a fresh
	// prefactura, all in one transaction.
	Abrir(ctx context.Context, actor Actor, req dto.AbrirMesaRequest) (*dto.MesaResponse, error)
	// Liberar vacates the mesa without billing. The open prefactura is
	// closed at 0 and open orders of the session are settled as cerrada.
	Liberar(ctx context.Context, actor Actor, mesaID uuid.UUID) (*dto.MesaResponse, error)
	// Cerrar ends the session keeping the consumed amount: the prefactura
	// freezes at the accumulated total and the mesa returns to libre. Unlike
	// the cierre con factura it creates no settlement order nor invoice.
	Cerrar(ctx context.Context, actor Actor, mesaID uuid.UUID) (*dto.MesaResponse, error)
	// SolicitarCobro moves en_uso → pendiente_cobro when the party asks for
	// the bill. Further order intake on the mesa is blocked until cierre.
	SolicitarCobro(ctx context.Context, actor Actor, mesaID uuid.UUID) (*dto.MesaResponse, error)
	// CambiarEstado handles the administrative transitions (reservada,
	// mantenimiento, back to libre). en_uso is reachable only through Abrir.
	CambiarEstado(ctx context.Context, actor Actor, mesaID uuid.UUID, destino model.EstadoMesa) (*dto.MesaResponse, error)

	Prefactura(ctx context.Context, actor Actor, mesaID uuid.UUID) (*dto.PrefacturaResponse, error)
	// PrefacturaPDF renders the running tab as a printable ticket and
	// returns the path of the generated file.
	PrefacturaPDF(ctx context.Context, actor Actor, mesaID uuid.UUID) (string, error)
}

type mesaService struct {
	mesas       repository.MesaRepository
	prefacturas repository.PrefacturaRepository
	ventas      repository.VentaRepository
	catalogo    repository.CatalogoRepository
	rdb         *redis.Client
	cacheTTL    time.Duration
	pdfPath     string
}

func NewMesaService(
	mesas repository.MesaRepository,
	prefacturas repository.PrefacturaRepository,
	ventas repository.VentaRepository,
	catalogo repository.CatalogoRepository,
	rdb *redis.Client,
	cacheTTLSeconds int,
	pdfPath string,
) MesaService {
	return &mesaService{
		mesas:       mesas,
		prefacturas: prefacturas,
		ventas:      ventas,
		catalogo:    catalogo,
		rdb:         rdb,
		cacheTTL:    time.Duration(cacheTTLSeconds) * time.Second,
		pdfPath:     pdfPath,
	}
}

func mesaCacheKey(restaurante, sucursal uuid.UUID) string {
	return fmt.Sprintf("mesas:%s:%s", restaurante, sucursal)
}

// InvalidarCacheMesas drops the floor-plan snapshot for a sucursal. Exported
// so the pedido orchestrator can invalidate after its own commits.
func InvalidarCacheMesas(ctx context.Context, rdb *redis.Client, restaurante, sucursal uuid.UUID) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, mesaCacheKey(restaurante, sucursal)).Err(); err != nil {
		log.Warn().Err(err).Msg("invalidacion de cache de mesas fallida")
	}
}

func (s *mesaService) Crear(ctx context.Context, actor Actor, req dto.CrearMesaRequest) (*dto.MesaResponse, error) {
	sucursal, err := s.resolverSucursal(ctx, actor, req.IDSucursal)
	if err != nil {
		return nil, err
	}

	if _, err := s.mesas.FindByNumero(ctx, req.Numero, sucursal, actor.IDRestaurante); err == nil {
		return nil, apierror.Conflictf("existente", "Ya existe la mesa %d en la sucursal", req.Numero)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Persistence(err)
	}

	capacidad := req.Capacidad
	if capacidad == 0 {
		capacidad = 4
	}
	mesa := &model.Mesa{
		IDRestaurante:  actor.IDRestaurante,
		IDSucursal:     sucursal,
		Numero:         req.Numero,
		Capacidad:      capacidad,
		Estado:         model.MesaLibre,
		TotalAcumulado: decimal.Zero,
	}
	if err := s.mesas.Create(ctx, mesa); err != nil {
		return nil, apierror.Persistence(err)
	}
	InvalidarCacheMesas(ctx, s.rdb, actor.IDRestaurante, sucursal)
	resp := mesaToResponse(mesa)
	return &resp, nil
}

func (s *mesaService) Eliminar(ctx context.Context, actor Actor, mesaID uuid.UUID) error {
	mesa, err := s.buscarMesa(ctx, actor, mesaID)
	if err != nil {
		return err
	}
	if mesa.Estado != model.MesaLibre {
		return apierror.Conflictf(string(mesa.Estado),
			"La mesa %d no puede eliminarse: %s", mesa.Numero, mesa.Estado.Descripcion())
	}
	deps, err := s.mesas.CountDependencias(ctx, mesaID, actor.IDRestaurante)
	if err != nil {
		return apierror.Persistence(err)
	}
	if deps > 0 {
		return apierror.Conflictf(string(mesa.Estado),
			"La mesa %d tiene %d registros asociados (ventas, prefacturas o reservas)", mesa.Numero, deps)
	}
	if err := s.mesas.Delete(ctx, mesaID, actor.IDRestaurante); err != nil {
		return apierror.Persistence(err)
	}
	InvalidarCacheMesas(ctx, s.rdb, actor.IDRestaurante, mesa.IDSucursal)
	return nil
}

func (s *mesaService) Get(ctx context.Context, actor Actor, mesaID uuid.UUID) (*dto.MesaResponse, error) {
	mesa, err := s.buscarMesa(ctx, actor, mesaID)
	if err != nil {
		return nil, err
	}
	resp := mesaToResponse(mesa)
	return &resp, nil
}

func (s *mesaService) List(ctx context.Context, actor Actor, sucursalID *uuid.UUID) (*dto.MesaListResponse, error) {
	sucursal := actor.IDSucursal
	if sucursalID != nil {
		sucursal = *sucursalID
	}

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, mesaCacheKey(actor.IDRestaurante, sucursal)).Result()
		if err == nil {
			var data []dto.MesaResponse
			if err := json.Unmarshal([]byte(cached), &data); err == nil {
				return &dto.MesaListResponse{Data: data, Fuente: "cache"}, nil
			}
		}
	}

	mesas, err := s.mesas.ListBySucursal(ctx, sucursal, actor.IDRestaurante)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	data := make([]dto.MesaResponse, 0, len(mesas))
	for i := range mesas {
		data = append(data, mesaToResponse(&mesas[i]))
	}

	if s.rdb != nil {
		if encoded, err := json.Marshal(data); err == nil {
			if err := s.rdb.Set(ctx, mesaCacheKey(actor.IDRestaurante, sucursal), encoded, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("escritura de cache de mesas fallida")
			}
		}
	}
	return &dto.MesaListResponse{Data: data, Fuente: "directo"}, nil
}

func (s *mesaService) Abrir(ctx context.Context, actor Actor, req dto.AbrirMesaRequest) (*dto.MesaResponse, error) {
	sucursal, err := s.resolverSucursal(ctx, actor, req.IDSucursal)
	if err != nil {
		return nil, err
	}

	mesa, err := s.buscarMesaPorNumero(ctx, actor, req.Numero, sucursal)
	if err != nil {
		return nil, err
	}
	if !mesa.Estado.PuedeTransicionar(model.MesaEnUso) {
		return nil, apierror.Conflictf(string(mesa.Estado),
			"La mesa %d no puede abrirse: %s", mesa.Numero, mesa.Estado.Descripcion())
	}

	err = runTx(ctx, s.mesas.DB(), func(tx *gorm.DB) error {
		// Settle anything a previous improperly closed session left behind
		// before the new session starts accounting.
		if err := s.ventas.CerrarAbiertasDeMesaTx(tx, mesa.Numero, sucursal, actor.IDRestaurante); err != nil {
			return err
		}
		if stale, err := s.prefacturas.FindAbiertaByMesaTx(tx, mesa.ID, actor.IDRestaurante); err == nil {
			log.Warn().
				Int("mesa", mesa.Numero).
				Str("prefactura", stale.ID.String()).
				Msg("prefactura abierta huerfana cerrada al reabrir mesa")
			if err := s.prefacturas.CerrarTx(tx, stale.ID, actor.IDRestaurante, decimal.Zero); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := s.mesas.AbrirTx(tx, mesa.ID, actor.IDRestaurante, actor.IDVendedor); err != nil {
			return err
		}
		return s.prefacturas.CrearTx(tx, &model.Prefactura{
			IDRestaurante:  actor.IDRestaurante,
			IDMesa:         mesa.ID,
			TotalAcumulado: decimal.Zero,
			Estado:         model.PrefacturaAbierta,
			FechaApertura:  time.Now(),
		})
	})
	if err != nil {
		return nil, apierror.Persistence(err)
	}

	InvalidarCacheMesas(ctx, s.rdb, actor.IDRestaurante, sucursal)
	log.Info().
		Int("mesa", mesa.Numero).
		Str("mesero", actor.Username).
		Msg("mesa abierta")
	return s.Get(ctx, actor, mesa.ID)
}

func (s *mesaService) Liberar(ctx context.Context, actor Actor, mesaID uuid.UUID) (*dto.MesaResponse, error) {
	mesa, err := s.buscarMesa(ctx, actor, mesaID)
	if err != nil {
		return nil, err
	}
	if mesa.Estado == model.MesaLibre {
		return nil, apierror.Conflictf(string(mesa.Estado), "La mesa %d ya esta libre", mesa.Numero)
	}
	if !mesa.Estado.PuedeTransicionar(model.MesaLibre) {
		return nil, apierror.Conflictf(string(mesa.Estado),
			"La mesa %d no puede liberarse: %s", mesa.Numero, mesa.Estado.Descripcion())
	}

	err = runTx(ctx, s.mesas.DB(), func(tx *gorm.DB) error {
		if err := s.ventas.CerrarAbiertasDeMesaTx(tx, mesa.Numero, mesa.IDSucursal, actor.IDRestaurante); err != nil {
			return err
		}
		if pre, err := s.prefacturas.FindAbiertaByMesaTx(tx, mesa.ID, actor.IDRestaurante); err == nil {
			// Liberated without billing: the tab closes at 0.
			if err := s.prefacturas.CerrarTx(tx, pre.ID, actor.IDRestaurante, decimal.Zero); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.mesas.ResetALibreTx(tx, mesa.ID, actor.IDRestaurante)
	})
	if err != nil {
		return nil, apierror.Persistence(err)
	}

	InvalidarCacheMesas(ctx, s.rdb, actor.IDRestaurante, mesa.IDSucursal)
	log.Info().Int("mesa", mesa.Numero).Str("usuario", actor.Username).Msg("mesa liberada sin facturar")
	return s.Get(ctx, actor, mesa.ID)
}

func (s *mesaService) Cerrar(ctx context.Context, actor Actor, mesaID uuid.UUID) (*dto.MesaResponse, error) {
	mesa, err := s.buscarMesa(ctx, actor, mesaID)
	if err != nil {
		return nil, err
	}
	if mesa.Estado == model.MesaLibre {
		return nil, apierror.Conflictf(string(mesa.Estado), "La mesa %d ya esta libre", mesa.Numero)
	}
	if !mesa.Estado.PuedeTransicionar(model.MesaLibre) {
		return nil, apierror.Conflictf(string(mesa.Estado),
			"La mesa %d no puede cerrarse: %s", mesa.Numero, mesa.Estado.Descripcion())
	}

	err = runTx(ctx, s.mesas.DB(), func(tx *gorm.DB) error {
		if err := s.ventas.CerrarAbiertasDeMesaTx(tx, mesa.Numero, mesa.IDSucursal, actor.IDRestaurante); err != nil {
			return err
		}
		if pre, err := s.prefacturas.FindAbiertaByMesaTx(tx, mesa.ID, actor.IDRestaurante); err == nil {
			if err := s.prefacturas.CerrarTx(tx, pre.ID, actor.IDRestaurante, mesa.TotalAcumulado); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return s.mesas.ResetALibreTx(tx, mesa.ID, actor.IDRestaurante)
	})
	if err != nil {
		return nil, apierror.Persistence(err)
	}

	InvalidarCacheMesas(ctx, s.rdb, actor.IDRestaurante, mesa.IDSucursal)
	log.Info().
		Int("mesa", mesa.Numero).
		Str("usuario", actor.Username).
		Str("total", mesa.TotalAcumulado.String()).
		Msg("mesa cerrada")
	return s.Get(ctx, actor, mesa.ID)
}

func (s *mesaService) SolicitarCobro(ctx context.Context, actor Actor, mesaID uuid.UUID) (*dto.MesaResponse, error) {
	return s.transicionar(ctx, actor, mesaID, model.MesaPendienteCobro, "cobro solicitado")
}

func (s *mesaService) CambiarEstado(ctx context.Context, actor Actor, mesaID uuid.UUID, destino model.EstadoMesa) (*dto.MesaResponse, error) {
	switch destino {
	case model.MesaLibre, model.MesaReservada, model.MesaMantenimiento:
	default:
		// en_uso / pendiente_cobro only via Abrir and SolicitarCobro.
		return nil, apierror.Validationf("Estado %q no asignable directamente", destino)
	}
	return s.transicionar(ctx, actor, mesaID, destino, "estado cambiado")
}

func (s *mesaService) transicionar(ctx context.Context, actor Actor, mesaID uuid.UUID, destino model.EstadoMesa, evento string) (*dto.MesaResponse, error) {
	mesa, err := s.buscarMesa(ctx, actor, mesaID)
	if err != nil {
		return nil, err
	}
	if !mesa.Estado.PuedeTransicionar(destino) {
		return nil, apierror.Conflictf(string(mesa.Estado),
			"La mesa %d no admite la transicion %s → %s: %s",
			mesa.Numero, mesa.Estado, destino, mesa.Estado.Descripcion())
	}

	err = runTx(ctx, s.mesas.DB(), func(tx *gorm.DB) error {
		return s.mesas.UpdateEstadoTx(tx, mesa.ID, actor.IDRestaurante, destino)
	})
	if err != nil {
		return nil, apierror.Persistence(err)
	}

	InvalidarCacheMesas(ctx, s.rdb, actor.IDRestaurante, mesa.IDSucursal)
	log.Info().
		Int("mesa", mesa.Numero).
		Str("de", string(mesa.Estado)).
		Str("a", string(destino)).
		Msg(evento)
	return s.Get(ctx, actor, mesa.ID)
}

func (s *mesaService) Prefactura(ctx context.Context, actor Actor, mesaID uuid.UUID) (*dto.PrefacturaResponse, error) {
	mesa, pre, ventas, err := s.sesionMesa(ctx, actor, mesaID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PrefacturaResponse{
		ID:             pre.ID.String(),
		IDMesa:         mesa.ID.String(),
		MesaNumero:     mesa.Numero,
		Estado:         string(pre.Estado),
		TotalAcumulado: pre.TotalAcumulado,
		FechaApertura:  pre.FechaApertura.Format(time.RFC3339),
		Ventas:         make([]dto.PedidoResponse, 0, len(ventas)),
	}
	for i := range ventas {
		resp.Ventas = append(resp.Ventas, ventaToPedidoResponse(&ventas[i]))
	}
	return resp, nil
}

func (s *mesaService) PrefacturaPDF(ctx context.Context, actor Actor, mesaID uuid.UUID) (string, error) {
	mesa, pre, ventas, err := s.sesionMesa(ctx, actor, mesaID)
	if err != nil {
		return "", err
	}
	nombre := "MentaPOS"
	if rest, err := s.catalogo.FindRestauranteByID(ctx, actor.IDRestaurante); err == nil {
		nombre = rest.Nombre
	}
	path, err := infra.GenerarPrefacturaPDF(nombre, mesa, pre, ventas, s.pdfPath)
	if err != nil {
		return "", apierror.Persistence(err)
	}
	return path, nil
}

// sesionMesa loads the mesa, its open prefactura and the session's ventas.
func (s *mesaService) sesionMesa(ctx context.Context, actor Actor, mesaID uuid.UUID) (*model.Mesa, *model.Prefactura, []model.Venta, error) {
	mesa, err := s.buscarMesa(ctx, actor, mesaID)
	if err != nil {
		return nil, nil, nil, err
	}
	pre, err := s.prefacturas.FindAbiertaByMesa(ctx, mesa.ID, actor.IDRestaurante)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, apierror.Conflictf(string(mesa.Estado),
				"La mesa %d no tiene una sesion abierta", mesa.Numero)
		}
		return nil, nil, nil, apierror.Persistence(err)
	}

	desde := pre.FechaApertura
	if mesa.HoraApertura != nil {
		desde = *mesa.HoraApertura
	}
	ventas, err := s.ventas.ListSesionMesa(ctx, mesa.ID, actor.IDRestaurante, desde)
	if err != nil {
		return nil, nil, nil, apierror.Persistence(err)
	}
	return mesa, pre, ventas, nil
}

func (s *mesaService) resolverSucursal(ctx context.Context, actor Actor, raw *string) (uuid.UUID, error) {
	if raw == nil {
		return actor.IDSucursal, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return uuid.Nil, apierror.Validationf("id_sucursal invalido")
	}
	if _, err := s.catalogo.FindSucursalByID(ctx, id, actor.IDRestaurante); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apierror.NotFoundf("Sucursal no encontrada")
		}
		return uuid.Nil, apierror.Persistence(err)
	}
	return id, nil
}

func (s *mesaService) buscarMesa(ctx context.Context, actor Actor, mesaID uuid.UUID) (*model.Mesa, error) {
	mesa, err := s.mesas.FindByID(ctx, mesaID, actor.IDRestaurante)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("Mesa no encontrada")
		}
		return nil, apierror.Persistence(err)
	}
	return mesa, nil
}

// buscarMesaPorNumero resolves a display number; on not-found the error
// carries the sucursal's valid numbers so the front end can guide the mesero.
func (s *mesaService) buscarMesaPorNumero(ctx context.Context, actor Actor, numero int, sucursal uuid.UUID) (*model.Mesa, error) {
	mesa, err := s.mesas.FindByNumero(ctx, numero, sucursal, actor.IDRestaurante)
	if err == nil {
		return mesa, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Persistence(err)
	}

	nf := apierror.NotFoundf("Mesa %d no encontrada en la sucursal", numero)
	if numeros, lerr := s.mesas.ListNumeros(ctx, sucursal, actor.IDRestaurante); lerr == nil && len(numeros) > 0 {
		partes := make([]string, 0, len(numeros))
		for _, n := range numeros {
			partes = append(partes, fmt.Sprint(n))
		}
		nf.Alternativas = "Mesas disponibles: " + strings.Join(partes, ", ")
	}
	return nil, nf
}
