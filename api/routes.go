package api

import (
	"net/http"

	"github.com/garnizeh/vagas/internal/config"
	"github.com/garnizeh/vagas/pkg/repository"
	"github.com/gorilla/mux"
)

// Store is everything the HTTP layer needs from the record store.
type Store interface {
	PostingStore
	ApplicantStore
}

func SetupRoutes(cfg *config.Config, version, buildTime string, store Store, health repository.HealthChecker) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, req, http.StatusNotFound, CodeNotFound, "route not found")
	})
	// Preflight requests never match a route's method, so they land here and
	// CORSMiddleware answers them.
	r.MethodNotAllowedHandler = CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, req, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	}))

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	systemHandler := NewSystemHandler(health)
	postings := NewPostingsHandler(store)
	applicants := NewApplicantsHandler(store)

	// Open endpoints
	r.HandleFunc("/", systemHandler.RootHandler).Methods(http.MethodGet)
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods(http.MethodGet)
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods(http.MethodGet)

	public := r.PathPrefix("/v1/public").Subrouter()
	public.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.Public.RateLimit, cfg.Public.Burst)))
	public.HandleFunc("/postings/{slug}", postings.GetPublicPosting).Methods(http.MethodGet)

	// Management routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	if cfg.Auth.Require {
		apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.Auth.JWTSecret))
	}

	apiV1.HandleFunc("/postings", postings.CreatePosting).Methods(http.MethodPost)
	apiV1.HandleFunc("/postings", postings.ListPostings).Methods(http.MethodGet)
	apiV1.HandleFunc("/postings/{id:[0-9]+}", postings.GetPosting).Methods(http.MethodGet)
	apiV1.HandleFunc("/postings/{id:[0-9]+}", postings.UpdatePosting).Methods(http.MethodPut, http.MethodPatch)
	apiV1.HandleFunc("/postings/{id:[0-9]+}", postings.DeletePosting).Methods(http.MethodDelete)
	apiV1.HandleFunc("/postings/{id:[0-9]+}/applicants", postings.ListPostingApplicants).Methods(http.MethodGet)

	apiV1.HandleFunc("/applicants", applicants.CreateApplicant).Methods(http.MethodPost)
	apiV1.HandleFunc("/applicants", applicants.ListApplicants).Methods(http.MethodGet)
	apiV1.HandleFunc("/applicants/{id:[0-9]+}", applicants.GetApplicant).Methods(http.MethodGet)
	apiV1.HandleFunc("/applicants/{id:[0-9]+}", applicants.UpdateApplicant).Methods(http.MethodPut, http.MethodPatch)
	apiV1.HandleFunc("/applicants/{id:[0-9]+}", applicants.DeleteApplicant).Methods(http.MethodDelete)
	apiV1.HandleFunc("/applicants/{id:[0-9]+}/profile", applicants.RequestProfile).Methods(http.MethodPost)

	return r
}
