package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/invoicer/internal/config"
	customerdomain "github.com/smallbiznis/invoicer/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/invoicer/internal/invoice/domain"
	locationdomain "github.com/smallbiznis/invoicer/internal/location/domain"
	"github.com/smallbiznis/invoicer/internal/observability"
	obslogger "github.com/smallbiznis/invoicer/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/invoicer/internal/observability/metrics"
	obstracing "github.com/smallbiznis/invoicer/internal/observability/tracing"
	orgdomain "github.com/smallbiznis/invoicer/internal/organization/domain"
	"github.com/smallbiznis/invoicer/internal/ratelimit"
	taxdomain "github.com/smallbiznis/invoicer/internal/tax/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log, obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if httpMetrics != nil {
		r.GET("/metrics", httpMetrics.Handler())
	}

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	log             *zap.Logger
	organizationSvc orgdomain.Service
	customerSvc     customerdomain.Service
	locationSvc     locationdomain.Service
	taxSvc          taxdomain.Service
	documentSvc     invoicedomain.Service
	previewLimiter  *ratelimit.PreviewLimiter
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Log             *zap.Logger
	OrganizationSvc orgdomain.Service
	CustomerSvc     customerdomain.Service
	LocationSvc     locationdomain.Service
	TaxSvc          taxdomain.Service
	DocumentSvc     invoicedomain.Service
	PreviewLimiter  *ratelimit.PreviewLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		log:             p.Log.Named("http.server"),
		organizationSvc: p.OrganizationSvc,
		customerSvc:     p.CustomerSvc,
		locationSvc:     p.LocationSvc,
		taxSvc:          p.TaxSvc,
		documentSvc:     p.DocumentSvc,
		previewLimiter:  p.PreviewLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Organizations --------
	api.POST("/organizations", s.CreateOrganization)
	api.GET("/organizations/:id", s.GetOrganizationByID)
	api.PUT("/organizations/:id/billing-preferences", s.SetBillingPreferences)

	scoped := api.Group("", OrgContext())

	// -------- Customers --------
	scoped.POST("/customers", s.CreateCustomer)
	scoped.GET("/customers", s.ListCustomers)
	scoped.GET("/customers/:id", s.GetCustomerByID)
	scoped.POST("/customers/:id/locations", s.CreateLocation)
	scoped.GET("/customers/:id/locations", s.ListLocations)

	// -------- Tax Definitions --------
	scoped.POST("/tax-definitions", s.CreateTaxDefinition)
	scoped.GET("/tax-definitions", s.ListTaxDefinitions)
	scoped.PATCH("/tax-definitions/:id", s.UpdateTaxDefinition)
	scoped.POST("/tax-definitions/:id/disable", s.DisableTaxDefinition)

	// -------- Documents --------
	scoped.POST("/documents", s.CreateDocument)
	scoped.GET("/documents", s.ListDocuments)
	scoped.GET("/documents/:id", s.GetDocumentByID)
	scoped.PUT("/documents/:id", s.UpdateDocument)
	scoped.DELETE("/documents/:id", s.DeleteDocument)
	scoped.POST("/documents/:id/recalculate", s.RecalculateDocument)
	scoped.POST("/documents/:id/convert", s.ConvertEstimate)
	scoped.POST("/documents/:id/send", s.SendDocument)
	scoped.POST("/documents/:id/pay", s.PayDocument)
	scoped.POST("/documents/:id/void", s.VoidDocument)
	scoped.GET("/documents/:id/html", s.RenderDocumentHTML)
	scoped.GET("/documents/:id/pdf", s.RenderDocumentPDF)

	// Preview works with or without an organization.
	api.POST("/totals/preview", optionalOrgContext(), s.previewLimiter.Middleware(), s.PreviewTotals)
}
