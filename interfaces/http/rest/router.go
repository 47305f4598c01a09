// Package rest wires the HTTP surface: routing, middleware and the
// endpoint handlers.
package rest

import (
	"net/http"

	"homegraph/application/ports"
	"homegraph/application/services"
	"homegraph/infrastructure/config"
	"homegraph/interfaces/http/rest/handlers"
	"homegraph/interfaces/http/rest/middleware"
	"homegraph/pkg/auth"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Router creates and configures the HTTP router
type Router struct {
	ingestion *services.IngestionService
	receipts  *services.ReceiptService
	search    *services.SearchService
	chat      *services.ChatService
	ledger    ports.Ledger
	cfg       *config.Config
	logger    *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	ingestion *services.IngestionService,
	receipts *services.ReceiptService,
	search *services.SearchService,
	chat *services.ChatService,
	ledger ports.Ledger,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		ingestion: ingestion,
		receipts:  receipts,
		search:    search,
		chat:      chat,
		ledger:    ledger,
		cfg:       cfg,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)

	var validator *auth.JWTValidator
	if rt.cfg.JWTSecret != "" {
		v, err := auth.NewJWTValidator(auth.JWTConfig{
			SecretKey: rt.cfg.JWTSecret,
			Issuer:    rt.cfg.JWTIssuer,
		})
		if err != nil {
			rt.logger.Error("JWT validator setup failed", zap.Error(err))
		} else {
			validator = v
		}
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(validator, rt.logger))

		photoHandler := handlers.NewPhotoHandler(rt.ingestion, rt.logger)
		r.Post("/photos", photoHandler.AnalyzePhoto)

		receiptHandler := handlers.NewReceiptHandler(rt.receipts, rt.logger)
		r.Post("/receipts", receiptHandler.IngestReceipt)

		searchHandler := handlers.NewSearchHandler(rt.search, rt.logger)
		r.Get("/search", searchHandler.Search)

		chatHandler := handlers.NewChatHandler(rt.chat, rt.logger)
		r.Post("/chat", chatHandler.Ask)

		reportHandler := handlers.NewReportHandler(rt.ledger, rt.logger)
		r.Get("/inventory/report", reportHandler.ValuationReport)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
