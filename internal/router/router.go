package router

import (
	"time"

	"mentapos/internal/cocina"
	"mentapos/internal/config"
	"mentapos/internal/handler"
	"mentapos/internal/middleware"
	"mentapos/internal/repository"
	"mentapos/internal/service"
	"mentapos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, hub *cocina.Hub) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	mesaRepo := repository.NewMesaRepository(db)
	prefacturaRepo := repository.NewPrefacturaRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	catalogoRepo := repository.NewCatalogoRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(catalogoRepo, cfg)
	inventarioSvc := service.NewInventarioService(productoRepo, cfg.StockFailurePolicy)
	productoSvc := service.NewProductoService(productoRepo)
	mesaSvc := service.NewMesaService(mesaRepo, prefacturaRepo, ventaRepo, catalogoRepo,
		rdb, cfg.MesaCacheTTLSeconds, cfg.PDFStoragePath)
	ventaSvc := service.NewVentaService(ventaRepo, dispatcher)
	pedidoSvc := service.NewPedidoService(mesaRepo, prefacturaRepo, ventaRepo, productoRepo,
		catalogoRepo, inventarioSvc, dispatcher, rdb, cfg.PDFStoragePath)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	mesasH := handler.NewMesasHandler(mesaSvc)
	ventasH := handler.NewVentasHandler(pedidoSvc, ventaSvc)
	cocinaH := handler.NewCocinaHandler(ventaSvc, hub)
	productosH := handler.NewProductosHandler(productoSvc, inventarioSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		personal := middleware.RequireRole("cajero", "mesero", "cocinero", "admin")
		caja := middleware.RequireRole("cajero", "admin")
		salon := middleware.RequireRole("cajero", "mesero", "admin")

		// Mesas — floor plan and lifecycle
		v1.GET("/mesas", personal, mesasH.Listar)
		v1.GET("/mesas/sucursal/:id_sucursal", personal, mesasH.ListarPorSucursal)
		v1.GET("/mesas/:id", personal, mesasH.Obtener)
		v1.POST("/mesas", middleware.RequireRole("admin"), mesasH.Crear)
		v1.DELETE("/mesas/:id", middleware.RequireRole("admin"), mesasH.Eliminar)
		v1.POST("/mesas/abrir", salon, mesasH.Abrir)
		v1.POST("/mesas/:id/cerrar", caja, mesasH.Cerrar)
		v1.POST("/mesas/:id/liberar", caja, mesasH.Liberar)
		v1.POST("/mesas/:id/solicitar-cobro", salon, mesasH.SolicitarCobro)
		v1.PATCH("/mesas/:id/estado", caja, mesasH.CambiarEstado)
		v1.GET("/mesas/:id/prefactura", salon, mesasH.Prefactura)
		v1.GET("/mesas/:id/prefactura/pdf", salon, mesasH.PrefacturaPDF)

		// Ventas — order intake, ledger and mesa settlement
		v1.POST("/ventas", salon, ventasH.RegistrarPedido)
		v1.GET("/ventas", personal, ventasH.Listar)
		v1.GET("/ventas/:id", personal, ventasH.Obtener)
		cocinaRoles := middleware.RequireRole("cocinero", "mesero", "admin")
		v1.PATCH("/ventas/:id/estado", cocinaRoles, ventasH.ActualizarEstado)
		// Alias kept for clients that still use the older status route.
		v1.PUT("/ventas/:id/status", cocinaRoles, ventasH.ActualizarEstado)
		v1.POST("/ventas/cerrar-mesa", caja, ventasH.CerrarMesa)

		// Cocina — kitchen display feed
		v1.GET("/cocina/pendientes", middleware.RequireRole("cocinero", "admin"), cocinaH.Pendientes)
		v1.GET("/cocina/ws", middleware.RequireRole("cocinero", "admin"), cocinaH.WS)

		// Productos — catalog reads for all staff, writes for admin
		v1.GET("/productos", personal, productosH.Listar)
		v1.GET("/productos/:id", personal, productosH.Obtener)
		v1.PATCH("/productos/:id/stock", middleware.RequireRole("admin"), productosH.AjustarStock)
		prods := v1.Group("/productos", middleware.RequireRole("admin"))
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}
		v1.GET("/categorias", personal, productosH.ListarCategorias)

		usuarios := v1.Group("/usuarios", middleware.RequireRole("admin"))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
