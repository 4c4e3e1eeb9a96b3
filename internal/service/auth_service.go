package service

import (
	"context"
	"errors"
	"time"

	"mentapos/internal/apierror"
	"mentapos/internal/config"
	"mentapos/internal/dto"
	"mentapos/internal/model"
	"mentapos/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearUsuario(ctx context.Context, actor Actor, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, actor Actor, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error
	ReactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error
}

type authService struct {
	catalogo repository.CatalogoRepository
	cfg      *config.Config
}

func NewAuthService(catalogo repository.CatalogoRepository, cfg *config.Config) AuthService {
	return &authService{catalogo: catalogo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	vendedor, err := s.catalogo.FindVendedorPorCredencial(ctx, req.Username)
	if err != nil {
		// Same answer for unknown user and bad password.
		return nil, apierror.Validationf("credenciales invalidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(vendedor.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Validationf("credenciales invalidas")
	}

	resp, err := s.emitirTokens(vendedor)
	if err != nil {
		return nil, err
	}
	log.Info().Str("username", vendedor.Username).Str("rol", vendedor.Rol).Msg("login")
	return resp, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apierror.Validationf("refresh token invalido o expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.Validationf("claims invalidos")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, apierror.Validationf("token mal formado")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apierror.Validationf("token mal formado")
	}
	restStr, _ := claims["id_restaurante"].(string)
	rid, err := uuid.Parse(restStr)
	if err != nil {
		return nil, apierror.Validationf("token mal formado")
	}

	vendedor, err := s.catalogo.FindVendedorByID(ctx, uid, rid)
	if err != nil || !vendedor.Activo {
		return nil, apierror.Validationf("usuario no encontrado o inactivo")
	}
	return s.emitirTokens(vendedor)
}

func (s *authService) CrearUsuario(ctx context.Context, actor Actor, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	if _, err := s.catalogo.FindVendedorByUsername(ctx, req.Username, actor.IDRestaurante); err == nil {
		return nil, apierror.Conflictf("existente", "El username %q ya esta en uso", req.Username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Persistence(err)
	}

	sucursal, err := uuid.Parse(req.IDSucursal)
	if err != nil {
		return nil, apierror.Validationf("id_sucursal invalido")
	}
	if _, err := s.catalogo.FindSucursalByID(ctx, sucursal, actor.IDRestaurante); err != nil {
		return nil, apierror.NotFoundf("Sucursal no encontrada")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	vendedor := &model.Vendedor{
		IDRestaurante: actor.IDRestaurante,
		IDSucursal:    sucursal,
		Nombre:        req.Nombre,
		Username:      req.Username,
		PasswordHash:  string(hash),
		Rol:           req.Rol,
		Activo:        true,
	}
	if err := s.catalogo.CrearVendedor(ctx, vendedor); err != nil {
		return nil, apierror.Persistence(err)
	}
	resp := vendedorToResponse(vendedor)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, actor Actor, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	vendedores, err := s.catalogo.ListVendedores(ctx, actor.IDRestaurante, incluirInactivos)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	resp := make([]dto.UsuarioResponse, len(vendedores))
	for i := range vendedores {
		resp[i] = vendedorToResponse(&vendedores[i])
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	vendedor, err := s.catalogo.FindVendedorByID(ctx, id, actor.IDRestaurante)
	if err != nil {
		return nil, apierror.NotFoundf("Usuario no encontrado")
	}
	if req.Nombre != nil {
		vendedor.Nombre = *req.Nombre
	}
	if req.Rol != nil {
		vendedor.Rol = *req.Rol
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), 12)
		if err != nil {
			return nil, apierror.Persistence(err)
		}
		vendedor.PasswordHash = string(hash)
	}
	if err := s.catalogo.UpdateVendedor(ctx, vendedor); err != nil {
		return nil, apierror.Persistence(err)
	}
	resp := vendedorToResponse(vendedor)
	return &resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error {
	if id == actor.IDVendedor {
		return apierror.Validationf("No puede desactivar su propio usuario")
	}
	if err := s.catalogo.SetVendedorActivo(ctx, id, actor.IDRestaurante, false); err != nil {
		return apierror.Persistence(err)
	}
	return nil
}

func (s *authService) ReactivarUsuario(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.catalogo.SetVendedorActivo(ctx, id, actor.IDRestaurante, true); err != nil {
		return apierror.Persistence(err)
	}
	return nil
}

func (s *authService) emitirTokens(v *model.Vendedor) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(v, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	refreshToken, err := s.generateToken(v, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         vendedorToResponse(v),
	}, nil
}

func (s *authService) generateToken(v *model.Vendedor, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":        v.ID.String(),
		"username":       v.Username,
		"rol":            v.Rol,
		"id_sucursal":    v.IDSucursal.String(),
		"id_restaurante": v.IDRestaurante.String(),
		"exp":            time.Now().Add(duration).Unix(),
		"iat":            time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func vendedorToResponse(v *model.Vendedor) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:         v.ID.String(),
		Username:   v.Username,
		Nombre:     v.Nombre,
		Rol:        v.Rol,
		IDSucursal: v.IDSucursal.String(),
	}
}
