package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tair/pos-core/internal/analytics"
	"github.com/tair/pos-core/internal/cart"
	"github.com/tair/pos-core/internal/catalog"
	"github.com/tair/pos-core/internal/inventory"
	"github.com/tair/pos-core/internal/notification"
	"github.com/tair/pos-core/internal/staff"
	"github.com/tair/pos-core/internal/store"
)

// Syncer exposes mirror reconciliation to administrators
type Syncer interface {
	Resync(ctx context.Context) error
	Flush(ctx context.Context) (int, error)
	MirrorStatus() []store.MirrorStatus
}

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// Handler serves the REST API
type Handler struct {
	commands  *catalog.CommandHandlers
	queries   *catalog.QueryHandlers
	login     *staff.LoginHandler
	carts     *cart.Service
	inventory *inventory.Reconciler
	reports   *analytics.Engine
	feed      *notification.Builder
	sync      Syncer
	limiter   Limiter
	checks    map[string]HealthCheck
}

// NewHandler creates the REST handler. limiter may be nil to disable login
// rate limiting.
func NewHandler(
	commands *catalog.CommandHandlers,
	queries *catalog.QueryHandlers,
	login *staff.LoginHandler,
	carts *cart.Service,
	restock *inventory.Reconciler,
	reports *analytics.Engine,
	feed *notification.Builder,
	sync Syncer,
	limiter Limiter,
) *Handler {
	return &Handler{
		commands:  commands,
		queries:   queries,
		login:     login,
		carts:     carts,
		inventory: restock,
		reports:   reports,
		feed:      feed,
		sync:      sync,
		limiter:   limiter,
		checks:    make(map[string]HealthCheck),
	}
}

// AddHealthCheck registers a dependency probed by GET /health
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", RateLimitMiddleware(h.limiter, "/api/auth/login", h.Login)).Methods("POST")

	// Catalog
	api.HandleFunc("/products", AuthMiddleware(h.ListProducts)).Methods("GET")
	api.HandleFunc("/products/stats", AuthMiddleware(h.GetStats)).Methods("GET")
	api.HandleFunc("/products/lookup", AuthMiddleware(h.LookupProduct)).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}", AuthMiddleware(h.GetProduct)).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}/expiry", AuthMiddleware(h.GetExpiry)).Methods("GET")
	api.HandleFunc("/products", AdminMiddleware(h.CreateProduct)).Methods("POST")
	api.HandleFunc("/products/{id:[0-9]+}", AdminMiddleware(h.UpdateProduct)).Methods("PUT")
	api.HandleFunc("/products/{id:[0-9]+}", AdminMiddleware(h.DeleteProduct)).Methods("DELETE")
	api.HandleFunc("/products/{id:[0-9]+}/restock/preview", AuthMiddleware(h.PreviewRestock)).Methods("GET")
	api.HandleFunc("/products/{id:[0-9]+}/restock", AdminMiddleware(h.Restock)).Methods("POST")

	// Inventory
	api.HandleFunc("/inventory/low-stock", AuthMiddleware(h.LowStock)).Methods("GET")
	api.HandleFunc("/inventory/expiring", AuthMiddleware(h.Expiring)).Methods("GET")
	api.HandleFunc("/inventory/scan", AuthMiddleware(h.ScanReceiving)).Methods("POST")

	// Carts
	api.HandleFunc("/carts", AuthMiddleware(h.OpenCart)).Methods("POST")
	api.HandleFunc("/carts/{id}", AuthMiddleware(h.GetCart)).Methods("GET")
	api.HandleFunc("/carts/{id}", AuthMiddleware(h.DiscardCart)).Methods("DELETE")
	api.HandleFunc("/carts/{id}/lines", AuthMiddleware(h.AddCartLine)).Methods("POST")
	api.HandleFunc("/carts/{id}/lines/{key}", AuthMiddleware(h.ChangeCartLine)).Methods("PATCH")
	api.HandleFunc("/carts/{id}/lines/{key}/price", AuthMiddleware(h.OverrideCartPrice)).Methods("PUT")
	api.HandleFunc("/carts/{id}/custom", AuthMiddleware(h.AddCustomLine)).Methods("POST")
	api.HandleFunc("/carts/{id}/scan", AuthMiddleware(h.ScanIntoCart)).Methods("POST")
	api.HandleFunc("/carts/{id}/checkout", AuthMiddleware(h.Checkout)).Methods("POST")

	// Orders and expenses
	api.HandleFunc("/orders", AuthMiddleware(h.ListOrders)).Methods("GET")
	api.HandleFunc("/orders/import", AdminMiddleware(h.ImportOrder)).Methods("POST")
	api.HandleFunc("/orders/{id}", AuthMiddleware(h.GetOrder)).Methods("GET")
	api.HandleFunc("/expenses", AuthMiddleware(h.ListExpenses)).Methods("GET")
	api.HandleFunc("/expenses", AdminMiddleware(h.AddExpense)).Methods("POST")
	api.HandleFunc("/expenses/{id:[0-9]+}", AdminMiddleware(h.DeleteExpense)).Methods("DELETE")

	// Reports
	api.HandleFunc("/reports/today", AuthMiddleware(h.Today)).Methods("GET")
	api.HandleFunc("/reports/days/{date}", AuthMiddleware(h.Day)).Methods("GET")
	api.HandleFunc("/reports/range", AuthMiddleware(h.Range)).Methods("GET")
	api.HandleFunc("/reports/recent", AuthMiddleware(h.Recent)).Methods("GET")
	api.HandleFunc("/reports/finance", AuthMiddleware(h.Finance)).Methods("GET")
	api.HandleFunc("/reports/months/{year:[0-9]+}/{month:[0-9]+}", AuthMiddleware(h.Month)).Methods("GET")
	api.HandleFunc("/reports/years/{year:[0-9]+}", AuthMiddleware(h.Year)).Methods("GET")
	api.HandleFunc("/reports/calendar", AuthMiddleware(h.Calendar)).Methods("GET")

	// Notifications
	api.HandleFunc("/notifications", AuthMiddleware(h.Notifications)).Methods("GET")
	api.HandleFunc("/notifications/read-all", AuthMiddleware(h.MarkAllRead)).Methods("POST")
	api.HandleFunc("/notifications/{id:[0-9]+}/read", AuthMiddleware(h.MarkRead)).Methods("POST")

	// Mirror administration
	api.HandleFunc("/admin/resync", AdminMiddleware(h.Resync)).Methods("POST")
	api.HandleFunc("/admin/sync", AdminMiddleware(h.SyncStatus)).Methods("GET")

	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}

// Router builds the complete HTTP handler with metrics, docs and CORS
func (h *Handler) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(RecoveryMiddleware, RequestIDMiddleware, TracingMiddleware, MetricsMiddleware, LoggingMiddleware)

	h.RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler())
	RegisterSwaggerDocs(router, httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(router)
}

// RegisterSwaggerDocs registers Swagger documentation routes
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// HealthCheck handles GET /health
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"store": "healthy"}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "healthy"
	}

	if !healthy {
		respondJSON(w, http.StatusServiceUnavailable, Response{Success: false, Error: "unhealthy", Data: status})
		return
	}
	respondData(w, http.StatusOK, "healthy", status)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil
}

// queryInt reads an integer query parameter; absent means def
func queryInt(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil
}
