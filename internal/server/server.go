package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/ecotrack/internal/advisor"
	"github.com/dukerupert/ecotrack/internal/handler"
	"github.com/dukerupert/ecotrack/internal/identity"
	"github.com/dukerupert/ecotrack/internal/imagestore"
	"github.com/dukerupert/ecotrack/internal/metrics"
	"github.com/dukerupert/ecotrack/internal/middleware"
	"github.com/dukerupert/ecotrack/internal/savings"
	"github.com/dukerupert/ecotrack/internal/store"
	"github.com/dukerupert/ecotrack/internal/telemetry"
	ws "github.com/dukerupert/ecotrack/internal/websocket"
)

const (
	DefaultGenerateLimit  = 10
	DefaultGenerateWindow = time.Minute
)

// Options are the tunables the router needs.
type Options struct {
	Savings        savings.Config
	Models         advisor.Models
	SignInURL      string
	PublicPaths    []string
	OriginPatterns []string
	GenerateLimit  int
	GenerateWindow time.Duration
	Version        string
}

// Clients are the process-wide handles to external services. Verifier, Users
// and Generator are required; the rest may be nil.
type Clients struct {
	Verifier  middleware.TokenVerifier
	Users     *identity.UserClient
	Generator advisor.Generator
	Webhooks  *identity.WebhookVerifier
	Images    *imagestore.Store
	Metrics   *metrics.Metrics
	Reporter  *telemetry.Reporter
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	opts        Options
	clients     Clients
	footprintH  *handler.FootprintHandler
	insightH    *handler.InsightHandler
	ecoTipH     *handler.EcoTipHandler
	goalH       *handler.GoalHandler
	waterH      *handler.WaterSavingHandler
	savingsH    *handler.SavingsHandler
	webhookH    *handler.WebhookHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, opts Options, clients Clients, logger *slog.Logger) *Server {
	if opts.GenerateLimit <= 0 {
		opts.GenerateLimit = DefaultGenerateLimit
	}
	if opts.GenerateWindow <= 0 {
		opts.GenerateWindow = DefaultGenerateWindow
	}

	var onCount func(int)
	if clients.Metrics != nil {
		onCount = clients.Metrics.SetWebsocketClients
	}
	hub := ws.NewHub(logger.With("component", "websocket"), onCount)

	footprintStore := store.NewFootprintStore(db)
	insightStore := store.NewInsightStore(db)
	goalStore := store.NewGoalStore(db)
	ecoTipStore := store.NewEcoTipStore(db)
	waterStore := store.NewWaterSavingStore(db)

	deps := advisor.Deps{
		Generator:  clients.Generator,
		Footprints: footprintStore,
		Insights:   insightStore,
		Tips:       ecoTipStore,
		Models:     opts.Models,
		Logger:     logger.With("component", "advisor"),
	}
	if clients.Images != nil {
		deps.Images = clients.Images
	}
	if clients.Metrics != nil {
		deps.Observer = clients.Metrics
	}
	adv := advisor.New(deps)

	calc := savings.NewCalculator(footprintStore, opts.Savings)

	base := func(component string) handler.Base {
		b := handler.Base{Hub: hub, Logger: logger.With("component", component)}
		if clients.Reporter != nil {
			b.Reporter = clients.Reporter
		}
		return b
	}

	// Optional collaborators stay untyped nil when absent.
	var (
		hooks  handler.WebhookVerifier
		images handler.OwnerImages
		users  handler.CacheEvicter
	)
	if clients.Webhooks != nil {
		hooks = clients.Webhooks
	}
	if clients.Images != nil {
		images = clients.Images
	}
	if clients.Users != nil {
		users = clients.Users
	}

	return &Server{
		db:         db,
		hub:        hub,
		opts:       opts,
		clients:    clients,
		footprintH: handler.NewFootprintHandler(footprintStore, base("carbon_footprint")),
		insightH:   handler.NewInsightHandler(insightStore, adv, base("carbon_insight")),
		ecoTipH:    handler.NewEcoTipHandler(ecoTipStore, adv, base("eco_tip")),
		goalH:      handler.NewGoalHandler(goalStore, base("sustainability_goal")),
		waterH:     handler.NewWaterSavingHandler(waterStore, base("water_saving")),
		savingsH: handler.NewSavingsHandler(calc, handler.SavingsStores{
			Footprints: footprintStore,
			Insights:   insightStore,
			Goals:      goalStore,
			EcoTips:    ecoTipStore,
			Water:      waterStore,
		}, base("savings")),
		webhookH:    handler.NewWebhookHandler(db, hooks, images, users, base("webhook")),
		rateLimiter: middleware.NewRateLimiter(opts.GenerateLimit, opts.GenerateWindow),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	authMiddleware := middleware.RequireAuth(middleware.AuthConfig{
		Verifier:    s.clients.Verifier,
		Users:       s.clients.Users,
		SignInURL:   s.opts.SignInURL,
		PublicPaths: s.opts.PublicPaths,
		Logger:      s.logger.With("component", "auth"),
	})

	requestLogger := middleware.RequestLogger(s.logger.With("component", "http"))
	return middleware.AssignRequestID(requestLogger(authMiddleware(mux)))
}

// route registers h under pattern, instrumented with the pattern as its label.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	var next http.Handler = h
	if s.clients.Metrics != nil {
		next = middleware.Instrument(s.clients.Metrics, pattern)(next)
	}
	mux.Handle(pattern, next)
}

// limited caps how often one owner may call a generative endpoint.
func (s *Server) limited(name string, h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return name + ":" + middleware.OwnerKey(r)
	}
	return s.rateLimiter.Middleware(keyFunc)(h).ServeHTTP
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Public
	s.route(mux, "GET /{$}", s.index)
	s.route(mux, "GET /health", handler.Health(s.db))
	s.route(mux, "POST /api/webhooks/identity", s.webhookH.Identity)
	if s.clients.Metrics != nil {
		mux.Handle("GET /metrics", s.clients.Metrics.Handler())
	}

	// Carbon footprints
	s.route(mux, "POST /api/carbonFootprints", s.footprintH.Create)
	s.route(mux, "GET /api/carbonFootprints", s.footprintH.Get)
	s.route(mux, "PUT /api/carbonFootprints", s.footprintH.Update)
	s.route(mux, "DELETE /api/carbonFootprints", s.footprintH.Delete)

	// Insights
	s.route(mux, "POST /api/generate-insight", s.limited("insight", s.insightH.Create))
	s.route(mux, "GET /api/generate-insight", s.insightH.Get)
	s.route(mux, "PUT /api/generate-insight", s.insightH.Update)
	s.route(mux, "DELETE /api/generate-insight", s.insightH.Delete)

	// Eco tips
	s.route(mux, "POST /api/eco-tips", s.limited("eco_tip", s.ecoTipH.Create))
	s.route(mux, "GET /api/eco-tips", s.ecoTipH.Get)
	s.route(mux, "PUT /api/eco-tips", s.ecoTipH.Update)
	s.route(mux, "DELETE /api/eco-tips", s.ecoTipH.Delete)

	// Goals
	s.route(mux, "POST /api/sustainabilityGoals", s.goalH.Create)
	s.route(mux, "GET /api/sustainabilityGoals", s.goalH.Get)
	s.route(mux, "PUT /api/sustainabilityGoals", s.goalH.Update)
	s.route(mux, "DELETE /api/sustainabilityGoals", s.goalH.Delete)

	// Water savings
	s.route(mux, "POST /api/waterSavings", s.waterH.Create)
	s.route(mux, "GET /api/waterSavings", s.waterH.Get)
	s.route(mux, "PUT /api/waterSavings", s.waterH.Update)
	s.route(mux, "DELETE /api/waterSavings", s.waterH.Delete)

	// Derived figures
	s.route(mux, "GET /api/carbonSaved", s.savingsH.CarbonSaved)
	s.route(mux, "GET /api/energySaved", s.savingsH.EnergySaved)
	s.route(mux, "GET /api/dashboard", s.savingsH.Dashboard)

	// Live updates
	mux.Handle("GET /ws", ws.HandleWebSocket(s.hub, s.opts.OriginPatterns, s.logger.With("component", "websocket")))
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "ecotrack",
		"version": s.opts.Version,
	})
}
