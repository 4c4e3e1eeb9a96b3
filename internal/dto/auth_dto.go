package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"`
	User         UsuarioResponse `json:"user"`
}

type UsuarioResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Nombre     string `json:"nombre"`
	Rol        string `json:"rol"`
	IDSucursal string `json:"id_sucursal"`
}

type CrearUsuarioRequest struct {
	Username   string `json:"username"    validate:"required,min=3"`
	Password   string `json:"password"    validate:"required,min=8"`
	Nombre     string `json:"nombre"      validate:"required"`
	Rol        string `json:"rol"         validate:"required,oneof=cajero mesero cocinero admin"`
	IDSucursal string `json:"id_sucursal" validate:"required,uuid"`
}

type ActualizarUsuarioRequest struct {
	Nombre   *string `json:"nombre"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Rol      *string `json:"rol"      validate:"omitempty,oneof=cajero mesero cocinero admin"`
}
