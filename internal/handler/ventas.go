package handler

import (
	"net/http"

	"mentapos/internal/apierror"
	"mentapos/internal/dto"
	"mentapos/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct {
	pedidos service.PedidoService
	ventas  service.VentaService
}

func NewVentasHandler(pedidos service.PedidoService, ventas service.VentaService) *VentasHandler {
	return &VentasHandler{pedidos: pedidos, ventas: ventas}
}

// RegistrarPedido godoc
// @Summary      Registrar un pedido
// @Description  Crea la orden en una sola transaccion: abre o acumula la mesa, descuenta stock y notifica a cocina.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarPedidoRequest true "Items del pedido"
// @Success      201  {object} dto.PedidoResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) RegistrarPedido(c *gin.Context) {
	var req dto.RegistrarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.pedidos.RegistrarPedido(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CerrarMesa godoc
// @Summary      Cerrar mesa y facturar
// @Description  Liquida la sesion: congela la prefactura, registra la venta de cierre, libera la mesa y opcionalmente emite factura.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CerrarMesaRequest true "Mesa, metodo de pago y datos de factura"
// @Success      200  {object} dto.CerrarMesaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ventas/cerrar-mesa [post]
func (h *VentasHandler) CerrarMesa(c *gin.Context) {
	var req dto.CerrarMesaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.pedidos.CerrarMesaConFactura(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar ventas
// @Description  Lista paginada filtrada por fecha (default hoy), estado y sucursal.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha  query string false "Fecha YYYY-MM-DD (default: hoy)"
// @Param        estado query string false "Estado de cocina | cerrada | all"
// @Param        page   query int    false "Pagina (default 1)"
// @Param        limit  query int    false "Registros por pagina (default 50)"
// @Success      200    {object} dto.VentaListResponse
// @Router       /v1/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.ventas.List(c.Request.Context(), actorFromContext(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener una venta
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la venta"
// @Success      200 {object} dto.VentaListItem
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id} [get]
func (h *VentasHandler) Obtener(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.ventas.GetByID(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarEstado godoc
// @Summary      Avanzar estado de cocina
// @Description  Valida el estado contra la whitelist y el grafo de transiciones antes de escribir.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la venta"
// @Param        body body dto.ActualizarEstadoRequest true "Estado destino"
// @Success      200  {object} dto.EstadoVentaResponse
// @Failure      400  {object} apierror.ValidationError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ventas/{id}/estado [patch]
func (h *VentasHandler) ActualizarEstado(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.ActualizarEstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ventas.ActualizarEstado(c.Request.Context(), actorFromContext(c), id, req.Estado)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
