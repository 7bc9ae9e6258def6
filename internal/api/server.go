package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/baylot/raffle-api/docs"
	v1 "github.com/baylot/raffle-api/internal/api/handler/v1"
	"github.com/baylot/raffle-api/internal/api/middleware"
	"github.com/baylot/raffle-api/internal/auth"
	"github.com/baylot/raffle-api/internal/cache"
	"github.com/baylot/raffle-api/internal/config"
	"github.com/baylot/raffle-api/internal/imagestore"
	"github.com/baylot/raffle-api/internal/repository"
	"github.com/baylot/raffle-api/internal/repository/dao"
	"github.com/baylot/raffle-api/internal/service"
	"github.com/baylot/raffle-api/internal/solana"
	"github.com/baylot/raffle-api/internal/web"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

type handlers struct {
	ticket  *v1.TicketHandler
	payment *v1.PaymentHandler
	admin   *v1.AdminHandler
	health  *v1.HealthHandler
}

// NewServer wires the registry onto db. rdb may be nil, in which case payment verdicts are not cached.
func NewServer(ctx context.Context, conf *config.AppConfig, db *gorm.DB, rdb *redis.Client) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()
	if err := engine.SetTrustedProxies(conf.API.TrustedProxies); err != nil {
		return nil, fmt.Errorf("engine.SetTrustedProxies -> %w", err)
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("web.Templates -> %w", err)
	}
	engine.SetHTMLTemplate(tmpl)

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	images, err := imagestore.New(ctx, conf.Storage)
	if err != nil {
		return nil, fmt.Errorf("imagestore.New -> %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}

	verifier := s.initVerifier(rdb)
	keyGate, tokens, gate := auth.NewGates(conf.Admin)

	h := handlers{
		ticket:  s.initTicketHandler(db, images, gate, verifier),
		payment: v1.NewPaymentHandler(service.NewPaymentService(verifier)),
		admin:   s.initAdminHandler(keyGate, tokens),
		health:  v1.NewHealthHandler(sqlDB),
	}
	s.MountHandlers(h)

	return s, nil
}

func (s *Server) initVerifier(rdb *redis.Client) service.PaymentVerifier {
	conf := s.Config.Solana
	client := solana.NewClient(conf.RPCURL, &http.Client{Timeout: conf.Timeout})
	verifier := solana.NewVerifier(client, conf.WalletAddress, conf.MinLamports, conf.Timeout)
	if rdb == nil {
		return verifier
	}

	return solana.NewCachedVerifier(verifier, cache.NewRedisVerdictCache(rdb), conf.CacheTTL)
}

func (s *Server) initTicketHandler(
	db *gorm.DB,
	images service.ImageStore,
	gate auth.Gate,
	verifier service.PaymentVerifier,
) *v1.TicketHandler {
	var policies []service.IssuancePolicy
	if s.Config.Payment.RequireForIssuance {
		policies = append(policies, service.NewPaymentIssuancePolicy(verifier))
	}

	ticketDAO := dao.NewTicketDAO(db)
	repo := repository.NewTicketRepository(ticketDAO)
	svc := service.NewTicketService(repo, images, gate, policies...)

	return v1.NewTicketHandler(svc, s.Config.Storage.MaxUploadMB<<20)
}

func (s *Server) initAdminHandler(keyGate auth.Gate, tokens *auth.TokenGate) *v1.AdminHandler {
	if tokens == nil {
		return v1.NewAdminHandler(keyGate, nil)
	}

	return v1.NewAdminHandler(keyGate, tokens)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.SecurityHeaders())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	limiter := middleware.NewRateLimiter(s.Config.API.RateLimit, s.Config.API.RateBurst)

	public := s.Router.Group("/")
	{
		public.GET("/", h.ticket.HandleShowcase)
		public.GET("/healthz", h.health.HandleHealthcheck)
		public.GET("/tickets/search", h.ticket.HandleSearchTicket)
		public.GET("/tickets/count", h.ticket.HandleCountTickets)
		public.GET("/tickets/archived", h.ticket.HandleListArchived)
		public.GET("/tickets/winners", h.ticket.HandleListWinners)
		public.GET("/tickets/featured", h.ticket.HandleListFeatured)
		public.GET("/tickets/all/html", h.ticket.HandleListTicketsHTML)
		public.GET("/tickets/:ticket", h.ticket.HandleGetTicket)
	}

	// Mutations and RPC-backed lookups share a per-client budget.
	limited := s.Router.Group("/", limiter.Handle())
	{
		limited.POST("/admin/token", h.admin.HandleIssueToken)
		limited.GET("/tickets/check-transaction", h.payment.HandleCheckTransaction)
		limited.POST("/tickets/create", h.ticket.HandleCreateTicket)
		limited.PUT("/tickets/:ticket/winner", h.ticket.HandleDeclareWinner)
		limited.PUT("/tickets/:ticket/feature", h.ticket.HandleSetFeatured)
		limited.POST("/tickets/:ticket/archive", h.ticket.HandleArchiveTicket)
		limited.POST("/tickets/:ticket/unarchive", h.ticket.HandleUnarchiveTicket)
		limited.DELETE("/tickets/all", h.ticket.HandleDeleteAllActive)
		limited.DELETE("/tickets/archived/all", h.ticket.HandleDeleteAllArchived)
		limited.DELETE("/tickets/:ticket", h.ticket.HandleDeleteTicket)
	}

	if s.Config.Storage.Driver == "local" {
		s.Router.Static(s.Config.Storage.URLPrefix, s.Config.Storage.Dir)
	}

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = "/"
	docs.SwaggerInfo.Title = "Baylot raffle API"
	docs.SwaggerInfo.Description = "Issue, look up and showcase raffle tickets."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
