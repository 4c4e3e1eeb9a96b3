package handler

import (
	"net/http"

	"mentapos/internal/apierror"
	"mentapos/internal/cocina"
	"mentapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type CocinaHandler struct {
	ventas service.VentaService
	hub    *cocina.Hub
}

func NewCocinaHandler(ventas service.VentaService, hub *cocina.Hub) *CocinaHandler {
	return &CocinaHandler{ventas: ventas, hub: hub}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin displays are expected; auth already happened via JWT.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Pendientes godoc
// @Summary      Ordenes pendientes de cocina
// @Description  Fallback HTTP para pantallas sin websocket: ordenes abiertas, la mas antigua primero.
// @Tags         cocina
// @Produce      json
// @Security     BearerAuth
// @Param        id_sucursal query string false "UUID de sucursal (default: la del token)"
// @Success      200 {array} dto.VentaListItem
// @Router       /v1/cocina/pendientes [get]
func (h *CocinaHandler) Pendientes(c *gin.Context) {
	sucursal, ok := parseSucursalQuery(c)
	if !ok {
		return
	}
	resp, err := h.ventas.PendientesCocina(c.Request.Context(), actorFromContext(c), sucursal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// WS godoc
// @Summary      Stream de eventos de cocina
// @Description  Upgrade a websocket; el cliente recibe pedido_creado, estado_actualizado y mesa_actualizada de su sucursal.
// @Tags         cocina
// @Security     BearerAuth
// @Success      101
// @Router       /v1/cocina/ws [get]
func (h *CocinaHandler) WS(c *gin.Context) {
	actor := actorFromContext(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("upgrade de websocket fallido")
		c.JSON(http.StatusBadRequest, apierror.New("No se pudo abrir el websocket"))
		return
	}
	h.hub.Register(conn, actor.IDRestaurante.String(), actor.IDSucursal.String())
}
