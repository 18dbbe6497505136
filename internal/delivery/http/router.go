package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"sponsorengine/internal/delivery/http/controllers"
	"sponsorengine/internal/delivery/http/middleware"
	"sponsorengine/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Every sponsorship route requires a valid bearer token; mutating review,
// level, and link routes additionally require the sponsorship manager role.
func NewRouter(
	eoiController *controllers.EOIController,
	levelController *controllers.LevelController,
	linkController *controllers.LinkController,
	sponsorController *controllers.SponsorController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	manager := middleware.RequireRole(domain.RoleSponsorshipManager)
	managed := func(h http.HandlerFunc) http.HandlerFunc { return auth(manager(h)) }

	// EOI lifecycle
	mux.HandleFunc("POST /sponsorship/eois", auth(eoiController.Submit))
	mux.HandleFunc("POST /sponsorship/eois/bulk", managed(eoiController.BulkApply))
	mux.HandleFunc("GET /sponsorship/eois/{eoiID}", managed(eoiController.Get))
	mux.HandleFunc("POST /sponsorship/eois/{eoiID}/approve", managed(eoiController.Approve))
	mux.HandleFunc("POST /sponsorship/eois/{eoiID}/reject", managed(eoiController.Reject))
	mux.HandleFunc("POST /sponsorship/eois/{eoiID}/request-info", managed(eoiController.RequestInfo))
	mux.HandleFunc("GET /sponsorship/events/{eventID}/eois", managed(eoiController.ListForEvent))

	// Level registry
	mux.HandleFunc("POST /sponsorship/levels", managed(levelController.Save))
	mux.HandleFunc("DELETE /sponsorship/levels/{levelID}", managed(levelController.Delete))
	mux.HandleFunc("POST /sponsorship/events/{eventID}/levels/defaults", managed(levelController.PopulateDefaults))
	mux.HandleFunc("GET /sponsorship/events/{eventID}/levels", auth(levelController.ListForEvent))

	// Linkage ledger
	mux.HandleFunc("POST /sponsorship/links", managed(linkController.Create))
	mux.HandleFunc("DELETE /sponsorship/links", managed(linkController.Remove))
	mux.HandleFunc("GET /sponsorship/links", auth(linkController.List))

	// Sponsor autocomplete
	mux.HandleFunc("GET /sponsorship/sponsors/search", managed(sponsorController.Search))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
