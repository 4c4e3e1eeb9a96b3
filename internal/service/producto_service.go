package service

import (
	"context"
	"errors"

	"mentapos/internal/apierror"
	"mentapos/internal/dto"
	"mentapos/internal/model"
	"mentapos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoService covers the menu/catalog surface: product CRUD plus the
// category listing. Stock movements live in InventarioService.
type ProductoService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ProductoResponse, error)
	List(ctx context.Context, actor Actor, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, actor Actor, id uuid.UUID) error
	Reactivar(ctx context.Context, actor Actor, id uuid.UUID) error
	ListCategorias(ctx context.Context, actor Actor) ([]dto.CategoriaResponse, error)
}

type productoService struct {
	repo repository.ProductoRepository
}

func NewProductoService(repo repository.ProductoRepository) ProductoService {
	return &productoService{repo: repo}
}

func (s *productoService) Crear(ctx context.Context, actor Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	producto := &model.Producto{
		IDRestaurante: actor.IDRestaurante,
		Nombre:        req.Nombre,
		Precio:        req.Precio,
		StockActual:   req.StockActual,
		Activo:        true,
	}
	if req.IDCategoria != nil {
		cat, err := uuid.Parse(*req.IDCategoria)
		if err != nil {
			return nil, apierror.Validationf("id_categoria invalido")
		}
		producto.IDCategoria = &cat
	}
	if err := s.repo.Create(ctx, producto); err != nil {
		return nil, apierror.Persistence(err)
	}
	resp := productoToResponse(producto)
	return &resp, nil
}

func (s *productoService) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id, actor.IDRestaurante)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("Producto no encontrado")
		}
		return nil, apierror.Persistence(err)
	}
	resp := productoToResponse(producto)
	return &resp, nil
}

func (s *productoService) List(ctx context.Context, actor Actor, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, actor.IDRestaurante, filter)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, actor Actor, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	producto, err := s.repo.FindByID(ctx, id, actor.IDRestaurante)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFoundf("Producto no encontrado")
		}
		return nil, apierror.Persistence(err)
	}
	if req.Nombre != nil {
		producto.Nombre = *req.Nombre
	}
	if req.Precio != nil {
		producto.Precio = *req.Precio
	}
	if req.IDCategoria != nil {
		cat, err := uuid.Parse(*req.IDCategoria)
		if err != nil {
			return nil, apierror.Validationf("id_categoria invalido")
		}
		producto.IDCategoria = &cat
	}
	if err := s.repo.Update(ctx, producto); err != nil {
		return nil, apierror.Persistence(err)
	}
	resp := productoToResponse(producto)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id, actor.IDRestaurante); err != nil {
		return apierror.Persistence(err)
	}
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.repo.Reactivar(ctx, id, actor.IDRestaurante); err != nil {
		return apierror.Persistence(err)
	}
	return nil
}

func (s *productoService) ListCategorias(ctx context.Context, actor Actor) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.ListCategorias(ctx, actor.IDRestaurante)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	resp := make([]dto.CategoriaResponse, len(categorias))
	for i, c := range categorias {
		resp[i] = dto.CategoriaResponse{ID: c.ID.String(), Nombre: c.Nombre, Activo: c.Activo}
	}
	return resp, nil
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	resp := dto.ProductoResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		Precio:      p.Precio,
		StockActual: p.StockActual,
		Activo:      p.Activo,
	}
	if p.IDCategoria != nil {
		id := p.IDCategoria.String()
		resp.IDCategoria = &id
	}
	if p.Categoria != nil {
		resp.Categoria = p.Categoria.Nombre
	}
	return resp
}
