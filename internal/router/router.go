package router

import (
	"time"

	"deliverypdv/internal/config"
	"deliverypdv/internal/handler"
	"deliverypdv/internal/infra"
	"deliverypdv/internal/middleware"
	"deliverypdv/internal/repository"
	"deliverypdv/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the service layer shared by the HTTP routes and the
// background workers started in cmd/server.
type Services struct {
	Tenants    repository.TenantRepository
	Operadores service.OperadorService
	PDVs       service.PDVService
	Caixa      service.CaixaService
	Vendas     service.VendaService
	Cupons     service.CupomService
	Limiter    *middleware.IPRateLimiter
}

// NewServices wires the services over store. With Redis, locks are
// distributed and tenant lookups cached; without it both stay in process.
// Dependency graph: Handler ← Service ← Store ← DB/Redis
func NewServices(cfg *config.Config, store repository.Store, rdb *redis.Client, jobs service.Jobs) *Services {
	var (
		locker  service.Locker              = infra.NewLocalLocker()
		tenants repository.TenantRepository = store.Tenants()
	)
	if rdb != nil {
		locker = infra.NewRedisLocker(rdb, 15*time.Second)
		tenants = repository.NewCachedTenantRepository(tenants, rdb, 5*time.Minute)
	}
	relogio := service.NewRelogio(cfg.Location())

	return &Services{
		Tenants:    tenants,
		Operadores: service.NewOperadorService(store),
		PDVs:       service.NewPDVService(store, locker, relogio),
		Caixa:      service.NewCaixaService(store, locker, jobs, relogio),
		Vendas:     service.NewVendaService(store, jobs, relogio),
		Cupons:     service.NewCupomService(store),
		Limiter:    middleware.NewIPRateLimiter(cfg.PDVRateLimitPerMinute),
	}
}

// New returns the configured gin engine. db and rdb are only used by the
// health check and may be nil.
func New(cfg *config.Config, svc *Services, db *gorm.DB, rdb *redis.Client) *gin.Engine {
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

	// ── Handlers ─────────────────────────────────────────────────────────────
	operadoresH := handler.NewOperadoresHandler(svc.Operadores)
	pdvsH := handler.NewPDVsHandler(svc.PDVs, svc.Operadores)
	caixaH := handler.NewCaixaHandler(svc.Caixa, svc.Operadores)
	vendasH := handler.NewVendasHandler(svc.Vendas, svc.Operadores)
	cupomH := handler.NewCupomHandler(svc.Cupons)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	t := r.Group("/v1/:tenantSlug", middleware.JWTAuth(cfg.JWTSecret), middleware.TenantResolver(svc.Tenants))

	// Back office
	admin := t.Group("", middleware.RequireRole(middleware.RolAdmin))
	{
		admin.POST("/pdvs", pdvsH.Criar)
		admin.GET("/pdvs", pdvsH.Listar)

		admin.POST("/operadores", operadoresH.Criar)
		admin.GET("/operadores", operadoresH.Listar)
		admin.DELETE("/operadores/:id", operadoresH.Desativar)

		admin.POST("/vendas", vendasH.Registrar)
		admin.PATCH("/vendas/:id/status", vendasH.AlterarStatus)
		admin.DELETE("/vendas/:id", vendasH.Cancelar)

		admin.GET("/caixa/sessoes/:id", caixaH.Relatorio)
		admin.POST("/caixa/sessoes/:id/fechar", caixaH.FecharSessao)
	}

	// Till terminals. Routes carrying operator credentials are rate limited.
	pdv := t.Group("/pdv", middleware.RequireRole(middleware.RolPDV, middleware.RolAdmin))
	{
		cred := pdv.Group("", svc.Limiter.Middleware())
		cred.POST("/caixa/abrir", caixaH.Abrir)
		cred.POST("/caixa/fechar", caixaH.Fechar)
		cred.POST("/caixa/sangria", caixaH.Sangria)
		cred.POST("/caixa/suprimento", caixaH.Suprimento)
		cred.POST("/caixa/atual", caixaH.Atual)
		cred.POST("/vendas", vendasH.RegistrarPDV)
		cred.POST("/trocar-operador", pdvsH.TrocarOperador)
		cred.POST("/cancelar-venda", vendasH.CancelarVenda)
		cred.POST("/cancelar-ultima-venda", vendasH.CancelarUltimaVenda)

		pdv.POST("/reimprimir-cupom", cupomH.Reimprimir)
		pdv.POST("/reimprimir-ultimo-cupom", cupomH.ReimprimirUltimo)
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
