package service_test

import (
	"context"
	"testing"

	"mentapos/internal/apierror"
	"mentapos/internal/config"
	"mentapos/internal/dto"
	"mentapos/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func buildAuthSvc(e *entorno) service.AuthService {
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return service.NewAuthService(e.catalogo, cfg)
}

func (e *entorno) setPassword(t *testing.T, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	e.catalogo.vendedores[e.actor.IDVendedor].PasswordHash = string(hash)
}

func TestLogin(t *testing.T) {
	e := nuevoEntorno()
	e.setPassword(t, "secreta123")
	svc := buildAuthSvc(e)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "secreta123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "maria", resp.User.Username)
	assert.Equal(t, "mesero", resp.User.Rol)
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	e := nuevoEntorno()
	e.setPassword(t, "secreta123")
	svc := buildAuthSvc(e)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "otra"})

	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "credenciales invalidas", ve.Detail)
}

func TestLogin_UsuarioDesconocido_MismaRespuesta(t *testing.T) {
	e := nuevoEntorno()
	svc := buildAuthSvc(e)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "nadie", Password: "x"})

	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
	// Unknown user and wrong password are indistinguishable to the caller.
	assert.Equal(t, "credenciales invalidas", ve.Detail)
}

func TestRefresh(t *testing.T) {
	e := nuevoEntorno()
	e.setPassword(t, "secreta123")
	svc := buildAuthSvc(e)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "maria", Password: "secreta123"})
	require.NoError(t, err)

	resp, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "maria", resp.User.Username)
}

func TestRefresh_TokenInvalido(t *testing.T) {
	e := nuevoEntorno()
	svc := buildAuthSvc(e)

	_, err := svc.Refresh(context.Background(), "no-es-un-jwt")

	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestRefresh_UsuarioDesactivado(t *testing.T) {
	e := nuevoEntorno()
	e.setPassword(t, "secreta123")
	svc := buildAuthSvc(e)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Username: "maria", Password: "secreta123"})
	require.NoError(t, err)

	e.catalogo.vendedores[e.actor.IDVendedor].Activo = false
	_, err = svc.Refresh(ctx, login.RefreshToken)

	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestCrearUsuario(t *testing.T) {
	e := nuevoEntorno()
	svc := buildAuthSvc(e)

	resp, err := svc.CrearUsuario(context.Background(), e.actor, dto.CrearUsuarioRequest{
		Username:   "pedro",
		Password:   "password123",
		Nombre:     "Pedro",
		Rol:        "cocinero",
		IDSucursal: e.actor.IDSucursal.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, "pedro", resp.Username)
	assert.Equal(t, "cocinero", resp.Rol)

	// The stored hash verifies against the plaintext.
	creado, err := e.catalogo.FindVendedorByUsername(context.Background(), "pedro", e.actor.IDRestaurante)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(creado.PasswordHash), []byte("password123")))
}

func TestCrearUsuario_UsernameDuplicado(t *testing.T) {
	e := nuevoEntorno()
	svc := buildAuthSvc(e)

	_, err := svc.CrearUsuario(context.Background(), e.actor, dto.CrearUsuarioRequest{
		Username:   "maria",
		Password:   "password123",
		Nombre:     "Otra Maria",
		Rol:        "cajero",
		IDSucursal: e.actor.IDSucursal.String(),
	})

	var ce *apierror.ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestDesactivarUsuario_PropioUsuario(t *testing.T) {
	e := nuevoEntorno()
	svc := buildAuthSvc(e)

	err := svc.DesactivarUsuario(context.Background(), e.actor, e.actor.IDVendedor)

	var ve *apierror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, e.catalogo.vendedores[e.actor.IDVendedor].Activo)
}
