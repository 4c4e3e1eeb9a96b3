package service_test

import (
	"context"
	"time"

	"mentapos/internal/dto"
	"mentapos/internal/model"
	"mentapos/internal/repository"
	"mentapos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. DB() returns nil so runTx executes the callback
// directly without a real transaction.

// ── Mesas ─────────────────────────────────────────────────────────────────────

type stubMesaRepo struct {
	mesas        map[uuid.UUID]*model.Mesa
	dependencias int64
}

func newStubMesaRepo() *stubMesaRepo {
	return &stubMesaRepo{mesas: make(map[uuid.UUID]*model.Mesa)}
}

func (r *stubMesaRepo) DB() *gorm.DB { return nil }

func (r *stubMesaRepo) FindByID(_ context.Context, id, restaurante uuid.UUID) (*model.Mesa, error) {
	m, ok := r.mesas[id]
	if !ok || m.IDRestaurante != restaurante {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *m
	return &copia, nil
}

func (r *stubMesaRepo) FindByNumero(_ context.Context, numero int, sucursal, restaurante uuid.UUID) (*model.Mesa, error) {
	for _, m := range r.mesas {
		if m.Numero == numero && m.IDSucursal == sucursal && m.IDRestaurante == restaurante {
			copia := *m
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMesaRepo) ListBySucursal(_ context.Context, sucursal, restaurante uuid.UUID) ([]model.Mesa, error) {
	var out []model.Mesa
	for _, m := range r.mesas {
		if m.IDSucursal == sucursal && m.IDRestaurante == restaurante {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubMesaRepo) ListNumeros(_ context.Context, sucursal, restaurante uuid.UUID) ([]int, error) {
	var out []int
	for _, m := range r.mesas {
		if m.IDSucursal == sucursal && m.IDRestaurante == restaurante {
			out = append(out, m.Numero)
		}
	}
	return out, nil
}

func (r *stubMesaRepo) AbrirTx(_ *gorm.DB, id, restaurante, mesero uuid.UUID) error {
	m := r.mesas[id]
	ahora := time.Now()
	m.Estado = model.MesaEnUso
	m.TotalAcumulado = decimal.Zero
	m.IDVentaActual = nil
	m.IDMeseroActual = &mesero
	m.HoraApertura = &ahora
	return nil
}

func (r *stubMesaRepo) ResetALibreTx(_ *gorm.DB, id, restaurante uuid.UUID) error {
	m := r.mesas[id]
	ahora := time.Now()
	m.Estado = model.MesaLibre
	m.TotalAcumulado = decimal.Zero
	m.IDVentaActual = nil
	m.IDMeseroActual = nil
	m.HoraCierre = &ahora
	return nil
}

func (r *stubMesaRepo) UpdateEstadoTx(_ *gorm.DB, id, restaurante uuid.UUID, estado model.EstadoMesa) error {
	r.mesas[id].Estado = estado
	return nil
}

func (r *stubMesaRepo) AcumularTotalTx(_ *gorm.DB, id, restaurante uuid.UUID, delta decimal.Decimal) error {
	m := r.mesas[id]
	m.TotalAcumulado = m.TotalAcumulado.Add(delta)
	return nil
}

func (r *stubMesaRepo) AsignarVentaActualTx(_ *gorm.DB, id, restaurante, venta uuid.UUID) error {
	v := venta
	r.mesas[id].IDVentaActual = &v
	return nil
}

func (r *stubMesaRepo) AsignarMeseroTx(_ *gorm.DB, id, restaurante, mesero uuid.UUID) error {
	m := mesero
	r.mesas[id].IDMeseroActual = &m
	return nil
}

func (r *stubMesaRepo) CountDependencias(_ context.Context, _, _ uuid.UUID) (int64, error) {
	return r.dependencias, nil
}

func (r *stubMesaRepo) Delete(_ context.Context, id, _ uuid.UUID) error {
	delete(r.mesas, id)
	return nil
}

func (r *stubMesaRepo) Create(_ context.Context, m *model.Mesa) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	copia := *m
	r.mesas[m.ID] = &copia
	return nil
}

var _ repository.MesaRepository = (*stubMesaRepo)(nil)

// ── Prefacturas ───────────────────────────────────────────────────────────────

type stubPrefacturaRepo struct {
	prefacturas map[uuid.UUID]*model.Prefactura
}

func newStubPrefacturaRepo() *stubPrefacturaRepo {
	return &stubPrefacturaRepo{prefacturas: make(map[uuid.UUID]*model.Prefactura)}
}

func (r *stubPrefacturaRepo) CrearTx(_ *gorm.DB, p *model.Prefactura) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	copia := *p
	r.prefacturas[p.ID] = &copia
	return nil
}

func (r *stubPrefacturaRepo) CerrarTx(_ *gorm.DB, id, _ uuid.UUID, totalFinal decimal.Decimal) error {
	p, ok := r.prefacturas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ahora := time.Now()
	p.Estado = model.PrefacturaCerrada
	p.TotalAcumulado = totalFinal
	p.FechaCierre = &ahora
	return nil
}

func (r *stubPrefacturaRepo) FindAbiertaByMesa(_ context.Context, mesa, restaurante uuid.UUID) (*model.Prefactura, error) {
	return r.findAbierta(mesa, restaurante)
}

func (r *stubPrefacturaRepo) FindAbiertaByMesaTx(_ *gorm.DB, mesa, restaurante uuid.UUID) (*model.Prefactura, error) {
	return r.findAbierta(mesa, restaurante)
}

func (r *stubPrefacturaRepo) findAbierta(mesa, restaurante uuid.UUID) (*model.Prefactura, error) {
	for _, p := range r.prefacturas {
		if p.IDMesa == mesa && p.IDRestaurante == restaurante && p.Estado == model.PrefacturaAbierta {
			copia := *p
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPrefacturaRepo) ActualizarTotalTx(_ *gorm.DB, id, _ uuid.UUID, delta decimal.Decimal) error {
	p, ok := r.prefacturas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.TotalAcumulado = p.TotalAcumulado.Add(delta)
	return nil
}

var _ repository.PrefacturaRepository = (*stubPrefacturaRepo)(nil)

// ── Ventas ────────────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas   map[uuid.UUID]*model.Venta
	facturas []model.Factura
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

func (r *stubVentaRepo) CrearTx(_ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	copia := *v
	r.ventas[v.ID] = &copia
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id, restaurante uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok || v.IDRestaurante != restaurante {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *v
	return &copia, nil
}

func (r *stubVentaRepo) UpdateEstado(_ context.Context, id, restaurante uuid.UUID, estado model.EstadoVenta) error {
	v, ok := r.ventas[id]
	if !ok || v.IDRestaurante != restaurante {
		return gorm.ErrRecordNotFound
	}
	v.Estado = estado
	return nil
}

func (r *stubVentaRepo) CerrarAbiertasDeMesaTx(_ *gorm.DB, mesaNumero int, sucursal, restaurante uuid.UUID) error {
	for _, v := range r.ventas {
		if v.MesaNumero != nil && *v.MesaNumero == mesaNumero &&
			v.IDSucursal == sucursal && v.IDRestaurante == restaurante && esAbierta(v.Estado) {
			v.Estado = model.VentaCerrada
		}
	}
	return nil
}

func (r *stubVentaRepo) List(_ context.Context, restaurante uuid.UUID, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.IDRestaurante != restaurante {
			continue
		}
		if filter.Estado != "" && filter.Estado != "all" && string(v.Estado) != filter.Estado {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) ListSesionMesa(_ context.Context, mesa, restaurante uuid.UUID, desde time.Time) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if v.IDMesa != nil && *v.IDMesa == mesa && v.IDRestaurante == restaurante &&
			!v.Fecha.Before(desde) && esAbierta(v.Estado) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubVentaRepo) ListPendientesCocina(_ context.Context, sucursal, restaurante uuid.UUID) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		switch v.Estado {
		case model.VentaRecibido, model.VentaEnPreparacion, model.VentaListoParaServir:
			if v.IDSucursal == sucursal && v.IDRestaurante == restaurante {
				out = append(out, *v)
			}
		}
	}
	return out, nil
}

func (r *stubVentaRepo) CrearFacturaTx(_ *gorm.DB, f *model.Factura) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	r.facturas = append(r.facturas, *f)
	return nil
}

func esAbierta(e model.EstadoVenta) bool {
	for _, a := range model.EstadosVentaAbiertos {
		if a == e {
			return true
		}
	}
	return false
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── Productos ─────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
	// falloStock, when set, makes DescontarStockClampTx fail (for the
	// stock-failure-policy tests).
	falloStock error
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	copia := *p
	r.productos[p.ID] = &copia
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id, restaurante uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok || p.IDRestaurante != restaurante {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	return &copia, nil
}

func (r *stubProductoRepo) List(_ context.Context, restaurante uuid.UUID, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.IDRestaurante == restaurante {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	copia := *p
	r.productos[p.ID] = &copia
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id, _ uuid.UUID) error {
	r.productos[id].Activo = false
	return nil
}

func (r *stubProductoRepo) Reactivar(_ context.Context, id, _ uuid.UUID) error {
	r.productos[id].Activo = true
	return nil
}

func (r *stubProductoRepo) ListCategorias(_ context.Context, _ uuid.UUID) ([]model.CategoriaProducto, error) {
	return nil, nil
}

func (r *stubProductoRepo) DescontarStockClampTx(_ *gorm.DB, id, restaurante uuid.UUID, cantidad int) (int, error) {
	if r.falloStock != nil {
		return 0, r.falloStock
	}
	p, ok := r.productos[id]
	if !ok || p.IDRestaurante != restaurante {
		return 0, gorm.ErrRecordNotFound
	}
	p.StockActual -= cantidad
	if p.StockActual < 0 {
		p.StockActual = 0
	}
	return p.StockActual, nil
}

func (r *stubProductoRepo) AjustarStock(_ context.Context, id, restaurante uuid.UUID, delta int) (int, error) {
	p, ok := r.productos[id]
	if !ok || p.IDRestaurante != restaurante {
		return 0, gorm.ErrRecordNotFound
	}
	p.StockActual += delta
	if p.StockActual < 0 {
		p.StockActual = 0
	}
	return p.StockActual, nil
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── Catalogo ──────────────────────────────────────────────────────────────────

type stubCatalogoRepo struct {
	restaurantes map[uuid.UUID]*model.Restaurante
	sucursales   map[uuid.UUID]*model.Sucursal
	metodos      map[string]*model.MetodoPago
	vendedores   map[uuid.UUID]*model.Vendedor
}

func newStubCatalogoRepo() *stubCatalogoRepo {
	return &stubCatalogoRepo{
		restaurantes: make(map[uuid.UUID]*model.Restaurante),
		sucursales:   make(map[uuid.UUID]*model.Sucursal),
		metodos:      make(map[string]*model.MetodoPago),
		vendedores:   make(map[uuid.UUID]*model.Vendedor),
	}
}

func (r *stubCatalogoRepo) FindRestauranteByID(_ context.Context, id uuid.UUID) (*model.Restaurante, error) {
	rest, ok := r.restaurantes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rest, nil
}

func (r *stubCatalogoRepo) FindSucursalByID(_ context.Context, id, restaurante uuid.UUID) (*model.Sucursal, error) {
	s, ok := r.sucursales[id]
	if !ok || s.IDRestaurante != restaurante {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubCatalogoRepo) ListSucursales(_ context.Context, restaurante uuid.UUID) ([]model.Sucursal, error) {
	var out []model.Sucursal
	for _, s := range r.sucursales {
		if s.IDRestaurante == restaurante {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubCatalogoRepo) FindMetodoPagoByDescripcion(_ context.Context, descripcion string, restaurante uuid.UUID) (*model.MetodoPago, error) {
	m, ok := r.metodos[descripcion]
	if !ok || m.IDRestaurante != restaurante {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubCatalogoRepo) FindOrCreateMetodoPago(_ context.Context, descripcion string, restaurante uuid.UUID) (*model.MetodoPago, error) {
	if m, ok := r.metodos[descripcion]; ok && m.IDRestaurante == restaurante {
		return m, nil
	}
	m := &model.MetodoPago{ID: uuid.New(), IDRestaurante: restaurante, Descripcion: descripcion, Activo: true}
	r.metodos[descripcion] = m
	return m, nil
}

func (r *stubCatalogoRepo) ListMetodosPago(_ context.Context, restaurante uuid.UUID) ([]model.MetodoPago, error) {
	var out []model.MetodoPago
	for _, m := range r.metodos {
		if m.IDRestaurante == restaurante {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *stubCatalogoRepo) FindVendedorByID(_ context.Context, id, restaurante uuid.UUID) (*model.Vendedor, error) {
	v, ok := r.vendedores[id]
	if !ok || v.IDRestaurante != restaurante || !v.Activo {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubCatalogoRepo) FindVendedorByUsername(_ context.Context, username string, restaurante uuid.UUID) (*model.Vendedor, error) {
	for _, v := range r.vendedores {
		if v.Username == username && v.IDRestaurante == restaurante {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCatalogoRepo) FindVendedorPorCredencial(_ context.Context, username string) (*model.Vendedor, error) {
	for _, v := range r.vendedores {
		if v.Username == username && v.Activo {
			return v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCatalogoRepo) CrearVendedor(_ context.Context, v *model.Vendedor) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	copia := *v
	r.vendedores[v.ID] = &copia
	return nil
}

func (r *stubCatalogoRepo) ListVendedores(_ context.Context, restaurante uuid.UUID, incluirInactivos bool) ([]model.Vendedor, error) {
	var out []model.Vendedor
	for _, v := range r.vendedores {
		if v.IDRestaurante == restaurante && (incluirInactivos || v.Activo) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *stubCatalogoRepo) UpdateVendedor(_ context.Context, v *model.Vendedor) error {
	copia := *v
	r.vendedores[v.ID] = &copia
	return nil
}

func (r *stubCatalogoRepo) SetVendedorActivo(_ context.Context, id, _ uuid.UUID, activo bool) error {
	v, ok := r.vendedores[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Activo = activo
	return nil
}

var _ repository.CatalogoRepository = (*stubCatalogoRepo)(nil)

// ── Fixture ───────────────────────────────────────────────────────────────────

// entorno bundles the stubs plus a coherent tenant: one restaurante, one
// sucursal, one vendedor and standard payment methods.
type entorno struct {
	mesas       *stubMesaRepo
	prefacturas *stubPrefacturaRepo
	ventas      *stubVentaRepo
	productos   *stubProductoRepo
	catalogo    *stubCatalogoRepo
	actor       service.Actor
}

func nuevoEntorno() *entorno {
	e := &entorno{
		mesas:       newStubMesaRepo(),
		prefacturas: newStubPrefacturaRepo(),
		ventas:      newStubVentaRepo(),
		productos:   newStubProductoRepo(),
		catalogo:    newStubCatalogoRepo(),
	}
	restaurante := uuid.New()
	sucursal := uuid.New()
	vendedor := uuid.New()

	e.catalogo.restaurantes[restaurante] = &model.Restaurante{ID: restaurante, Nombre: "La Menta", Activo: true}
	e.catalogo.sucursales[sucursal] = &model.Sucursal{ID: sucursal, IDRestaurante: restaurante, Nombre: "Centro", Activo: true}
	e.catalogo.vendedores[vendedor] = &model.Vendedor{
		ID: vendedor, IDRestaurante: restaurante, IDSucursal: sucursal,
		Nombre: "Maria", Username: "maria", Rol: "mesero", Activo: true,
	}
	for _, descripcion := range []string{"efectivo", "tarjeta"} {
		e.catalogo.metodos[descripcion] = &model.MetodoPago{
			ID: uuid.New(), IDRestaurante: restaurante, Descripcion: descripcion, Activo: true,
		}
	}

	e.actor = service.Actor{
		IDVendedor:    vendedor,
		IDSucursal:    sucursal,
		IDRestaurante: restaurante,
		Username:      "maria",
		Rol:           "mesero",
	}
	return e
}

func (e *entorno) seedMesa(numero int, estado model.EstadoMesa) *model.Mesa {
	mesa := &model.Mesa{
		ID:             uuid.New(),
		IDRestaurante:  e.actor.IDRestaurante,
		IDSucursal:     e.actor.IDSucursal,
		Numero:         numero,
		Capacidad:      4,
		Estado:         estado,
		TotalAcumulado: decimal.Zero,
	}
	if estado != model.MesaLibre {
		ahora := time.Now().Add(-time.Hour)
		mesa.HoraApertura = &ahora
	}
	e.mesas.mesas[mesa.ID] = mesa
	return mesa
}

func (e *entorno) seedProducto(nombre string, precio float64, stock int) *model.Producto {
	p := &model.Producto{
		ID:            uuid.New(),
		IDRestaurante: e.actor.IDRestaurante,
		Nombre:        nombre,
		Precio:        decimal.NewFromFloat(precio),
		StockActual:   stock,
		Activo:        true,
	}
	e.productos.productos[p.ID] = p
	return p
}
