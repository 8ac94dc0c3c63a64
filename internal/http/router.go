package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loyalty-backend/internal/handlers"
	"loyalty-backend/internal/middleware"
)

// NewRouter assembles the API surface: public auth routes, the
// storefront under /api/store, and the back office under /api/admin.
func NewRouter(
	authHandler *handlers.AuthHandler,
	agencyHandler *handlers.AgencyHandler,
	catalogHandler *handlers.CatalogHandler,
	checkoutHandler *handlers.CheckoutHandler,
	orderHandler *handlers.OrderHandler,
	ledgerHandler *handlers.LedgerHandler,
	importHandler *handlers.ImportHandler,
	productHandler *handlers.ProductHandler,
	bannerHandler *handlers.BannerHandler,
	categoryHandler *handlers.CategoryHandler,
	totpHandler *handlers.TOTPHandler,
	monitoringHandler *handlers.MonitoringHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/verify-2fa", authHandler.Verify2FA).Methods("POST")
	r.HandleFunc("/auth/agency/register", agencyHandler.Register).Methods("POST")
	r.HandleFunc("/auth/agency/login", agencyHandler.Login).Methods("POST")

	// Storefront catalog - browsable anonymously, personalized when a
	// token is present
	catalogAPI := r.PathPrefix("/api/store/catalog").Subrouter()
	catalogAPI.Use(authMiddleware.OptionalAgency)
	catalogAPI.HandleFunc("/products", catalogHandler.ListProducts).Methods("GET")
	catalogAPI.HandleFunc("/products/{id}", catalogHandler.GetProduct).Methods("GET")
	catalogAPI.HandleFunc("/banners", catalogHandler.ListBanners).Methods("GET")
	catalogAPI.HandleFunc("/categories", catalogHandler.ListCategories).Methods("GET")

	// Storefront account routes - active agency token required
	storeAPI := r.PathPrefix("/api/store").Subrouter()
	storeAPI.Use(authMiddleware.AuthenticateAgency)
	storeAPI.HandleFunc("/profile", agencyHandler.Profile).Methods("GET")
	storeAPI.HandleFunc("/profile", agencyHandler.UpdateProfile).Methods("PUT")
	storeAPI.HandleFunc("/cart/preview", checkoutHandler.Preview).Methods("POST")
	storeAPI.HandleFunc("/checkout", checkoutHandler.Confirm).Methods("POST")
	storeAPI.HandleFunc("/orders", checkoutHandler.ListMyOrders).Methods("GET")
	storeAPI.HandleFunc("/orders/{id}", checkoutHandler.GetMyOrder).Methods("GET")
	storeAPI.HandleFunc("/ledger", ledgerHandler.MyEntries).Methods("GET")
	storeAPI.HandleFunc("/balance", ledgerHandler.MyBalance).Methods("GET")
	storeAPI.HandleFunc("/statement.pdf", ledgerHandler.MyStatement).Methods("GET")

	// Back office - back-office user token required
	adminAPI := r.PathPrefix("/api/admin").Subrouter()
	adminAPI.Use(authMiddleware.Authenticate)

	adminAPI.HandleFunc("/agencies", agencyHandler.List).Methods("GET")
	adminAPI.HandleFunc("/agencies/{id}", agencyHandler.Get).Methods("GET")
	adminAPI.HandleFunc("/agencies/{id}/activate", agencyHandler.Activate).Methods("POST")
	adminAPI.HandleFunc("/agencies/{id}/deactivate", agencyHandler.Deactivate).Methods("POST")

	adminAPI.HandleFunc("/products", productHandler.Create).Methods("POST")
	adminAPI.HandleFunc("/products/{id}", productHandler.Get).Methods("GET")
	adminAPI.HandleFunc("/products/{id}", productHandler.Update).Methods("PUT")
	adminAPI.HandleFunc("/products/{id}/lots", productHandler.AddLot).Methods("POST")
	adminAPI.HandleFunc("/lots/{lotId}", productHandler.DeactivateLot).Methods("DELETE")

	adminAPI.HandleFunc("/banners", bannerHandler.Create).Methods("POST")
	adminAPI.HandleFunc("/banners", bannerHandler.List).Methods("GET")
	adminAPI.HandleFunc("/banners/{id}", bannerHandler.SetActive).Methods("PATCH")
	adminAPI.HandleFunc("/banners/{id}", bannerHandler.Delete).Methods("DELETE")

	adminAPI.HandleFunc("/categories", categoryHandler.Create).Methods("POST")
	adminAPI.HandleFunc("/categories", categoryHandler.List).Methods("GET")
	adminAPI.HandleFunc("/categories/{id}", categoryHandler.SetActive).Methods("PATCH")

	adminAPI.HandleFunc("/orders", orderHandler.List).Methods("GET")
	adminAPI.HandleFunc("/orders/{id}", orderHandler.Get).Methods("GET")
	adminAPI.HandleFunc("/orders/{id}/status", orderHandler.UpdateStatus).Methods("PUT")
	adminAPI.HandleFunc("/orders/{id}/cancel", orderHandler.Cancel).Methods("POST")

	adminAPI.HandleFunc("/imports", importHandler.Run).Methods("POST")
	adminAPI.HandleFunc("/imports", importHandler.ListBatches).Methods("GET")

	adminAPI.HandleFunc("/ledger", ledgerHandler.ListEntries).Methods("GET")
	adminAPI.HandleFunc("/ledger/balances", ledgerHandler.Balances).Methods("GET")
	adminAPI.HandleFunc("/ledger/balances.csv", ledgerHandler.ExportBalancesCSV).Methods("GET")
	adminAPI.HandleFunc("/ledger/totals", ledgerHandler.Totals).Methods("GET")
	adminAPI.HandleFunc("/ledger/adjust", middleware.RequireRole("admin")(http.HandlerFunc(ledgerHandler.Adjust)).ServeHTTP).Methods("POST")
	adminAPI.HandleFunc("/ledger/stream", ledgerHandler.Stream)

	adminAPI.HandleFunc("/2fa/setup", totpHandler.Setup).Methods("POST")
	adminAPI.HandleFunc("/2fa/verify", totpHandler.VerifyEnable).Methods("POST")

	adminAPI.HandleFunc("/monitoring/stats", monitoringHandler.Stats).Methods("GET")

	// Health endpoint (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.Check).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
