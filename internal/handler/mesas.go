package handler

import (
	"net/http"

	"mentapos/internal/dto"
	"mentapos/internal/model"
	"mentapos/internal/service"

	"github.com/gin-gonic/gin"
)

type MesasHandler struct{ svc service.MesaService }

func NewMesasHandler(svc service.MesaService) *MesasHandler { return &MesasHandler{svc: svc} }

// Listar godoc
// @Summary      Listar mesas de la sucursal
// @Description  Snapshot del salon, servido desde cache redis de TTL corto.
// @Tags         mesas
// @Produce      json
// @Security     BearerAuth
// @Param        id_sucursal query string false "UUID de sucursal (default: la del token)"
// @Success      200 {object} dto.MesaListResponse
// @Router       /v1/mesas [get]
func (h *MesasHandler) Listar(c *gin.Context) {
	sucursal, ok := parseSucursalQuery(c)
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), actorFromContext(c), sucursal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPorSucursal godoc
// @Summary      Listar mesas por sucursal
// @Description  Variante con la sucursal en el path, mismo snapshot cacheado.
// @Tags         mesas
// @Produce      json
// @Security     BearerAuth
// @Param        id_sucursal path string true "UUID de la sucursal"
// @Success      200 {object} dto.MesaListResponse
// @Router       /v1/mesas/sucursal/{id_sucursal} [get]
func (h *MesasHandler) ListarPorSucursal(c *gin.Context) {
	sucursal, ok := parseUUIDParam(c, "id_sucursal")
	if !ok {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), actorFromContext(c), &sucursal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener una mesa
// @Tags         mesas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la mesa"
// @Success      200 {object} dto.MesaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/mesas/{id} [get]
func (h *MesasHandler) Obtener(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Crear godoc
// @Summary      Crear mesa
// @Tags         mesas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearMesaRequest true "Mesa nueva"
// @Success      201 {object} dto.MesaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/mesas [post]
func (h *MesasHandler) Crear(c *gin.Context) {
	var req dto.CrearMesaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Eliminar godoc
// @Summary      Eliminar mesa
// @Description  Solo mesas libres y sin ventas, prefacturas o reservas asociadas.
// @Tags         mesas
// @Security     BearerAuth
// @Param        id path string true "UUID de la mesa"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/mesas/{id} [delete]
func (h *MesasHandler) Eliminar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), actorFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Abrir godoc
// @Summary      Abrir mesa
// @Description  Inicia la sesion: la mesa pasa a en_uso, se abre la prefactura y se cierran ordenes huerfanas de sesiones previas.
// @Tags         mesas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AbrirMesaRequest true "Numero de mesa"
// @Success      200 {object} dto.MesaResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /v1/mesas/abrir [post]
func (h *MesasHandler) Abrir(c *gin.Context) {
	var req dto.AbrirMesaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Liberar godoc
// @Summary      Liberar mesa sin facturar
// @Tags         mesas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la mesa"
// @Success      200 {object} dto.MesaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/mesas/{id}/liberar [post]
func (h *MesasHandler) Liberar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Liberar(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary      Cerrar mesa sin factura
// @Description  Congela la prefactura en el total acumulado y libera la mesa. Para cierre con cobro usar POST /v1/ventas/cerrar-mesa.
// @Tags         mesas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la mesa"
// @Success      200 {object} dto.MesaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/mesas/{id}/cerrar [post]
func (h *MesasHandler) Cerrar(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SolicitarCobro godoc
// @Summary      Solicitar cobro
// @Description  en_uso → pendiente_cobro; bloquea nuevos pedidos en la mesa.
// @Tags         mesas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la mesa"
// @Success      200 {object} dto.MesaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/mesas/{id}/solicitar-cobro [post]
func (h *MesasHandler) SolicitarCobro(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.SolicitarCobro(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarEstado godoc
// @Summary      Cambiar estado administrativo
// @Description  Transiciones libre/reservada/mantenimiento segun el grafo de estados.
// @Tags         mesas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la mesa"
// @Param        body body dto.CambiarEstadoMesaRequest true "Estado destino"
// @Success      200 {object} dto.MesaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/mesas/{id}/estado [patch]
func (h *MesasHandler) CambiarEstado(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.CambiarEstadoMesaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), actorFromContext(c), id, model.EstadoMesa(req.Estado))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Prefactura godoc
// @Summary      Ver prefactura de la mesa
// @Description  Cuenta corriente de la sesion abierta con todas sus ordenes.
// @Tags         mesas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la mesa"
// @Success      200 {object} dto.PrefacturaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/mesas/{id}/prefactura [get]
func (h *MesasHandler) Prefactura(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Prefactura(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PrefacturaPDF godoc
// @Summary      Imprimir prefactura
// @Description  Genera el ticket PDF de la cuenta y lo devuelve como descarga.
// @Tags         mesas
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID de la mesa"
// @Success      200
// @Failure      409 {object} apierror.APIError
// @Router       /v1/mesas/{id}/prefactura/pdf [get]
func (h *MesasHandler) PrefacturaPDF(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	path, err := h.svc.PrefacturaPDF(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.FileAttachment(path, "prefactura.pdf")
}
