package handler

import (
	"net/http"
	"reflect"

	"mentapos/internal/apierror"
	"mentapos/internal/middleware"
	"mentapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// actorFromContext builds the service-layer Actor from the JWT claims set by
// the auth middleware.
func actorFromContext(c *gin.Context) service.Actor {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Actor{}
	}
	vendedor, _ := uuid.Parse(claims.UserID)
	sucursal, _ := uuid.Parse(claims.IDSucursal)
	restaurante, _ := uuid.Parse(claims.IDRestaurante)
	return service.Actor{
		IDVendedor:    vendedor,
		IDSucursal:    sucursal,
		IDRestaurante: restaurante,
		Username:      claims.Username,
		Rol:           claims.Rol,
	}
}

// respondError translates a service error into the HTTP status and envelope
// defined by the error taxonomy.
func respondError(c *gin.Context, err error) {
	status, body := apierror.StatusAndBody(err)
	if status == http.StatusInternalServerError {
		// Keep the internal detail in the request log.
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

// parseIDParam parses the :id path parameter as a UUID.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// parseUUIDParam parses a named path parameter as a UUID.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(name+" invalido"))
		return uuid.Nil, false
	}
	return id, true
}

// parseSucursalQuery reads an optional ?id_sucursal= filter.
func parseSucursalQuery(c *gin.Context) (*uuid.UUID, bool) {
	raw := c.Query("id_sucursal")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("id_sucursal invalido"))
		return nil, false
	}
	return &id, true
}
