package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/garnizeh/bidtrack/internal/apps"
	"github.com/garnizeh/bidtrack/internal/config"
	"github.com/garnizeh/bidtrack/internal/db"
	"github.com/garnizeh/bidtrack/internal/files"
	"github.com/garnizeh/bidtrack/internal/hire"
	"github.com/garnizeh/bidtrack/internal/importer"
	"github.com/garnizeh/bidtrack/internal/notify"
	"github.com/garnizeh/bidtrack/internal/repository/sqlite"
	"github.com/garnizeh/bidtrack/internal/stats"
	"github.com/garnizeh/bidtrack/internal/target"
)

// SetupRoutes builds the full router. The queue is the background job
// pool; handlers only ever enqueue through it.
func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB, queue notify.Enqueuer, store *files.Store) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository
	repo := sqlite.New(database)

	// Services
	dispatcher := notify.NewDispatcher(repo, repo, queue, logger)
	appsSvc := apps.New(repo, repo, repo, dispatcher, queue)
	hireSvc := hire.New(repo, repo, dispatcher)
	targetSvc := target.New(repo, dispatcher)
	statsSvc := stats.New(repo, repo, repo, repo, repo)
	imp, err := importer.New(repo)
	if err != nil {
		return nil, err
	}

	// Handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	jobsHandler := NewJobsHandler(appsSvc, store)
	catalogHandler := NewCatalogHandler(repo)
	hiresHandler := NewHiresHandler(hireSvc)
	targetsHandler := NewTargetsHandler(targetSvc)
	notificationsHandler := NewNotificationsHandler(repo)
	portfoliosHandler := NewPortfoliosHandler(repo)
	platformsHandler := NewPlatformsHandler(repo, repo)
	statsHandler := NewStatsHandler(statsSvc)
	usersHandler := NewUsersHandler(repo)
	importHandler := NewImportHandler(imp)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// Uploaded attachments
	r.PathPrefix(files.URLPrefix).Handler(
		http.StripPrefix(files.URLPrefix, http.FileServer(http.Dir(store.Dir()))),
	).Methods("GET")

	// API v1 protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddleware(cfg.JWTSecret, repo))

	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Applied jobs
	apiV1.HandleFunc("/jobs/applied", jobsHandler.Apply).Methods("POST")
	apiV1.HandleFunc("/jobs/applied", jobsHandler.List).Methods("GET")
	apiV1.HandleFunc("/jobs/applied/{id}", jobsHandler.Get).Methods("GET")
	apiV1.HandleFunc("/jobs/applied/{id}", jobsHandler.Edit).Methods("PUT")
	apiV1.HandleFunc("/jobs/applied/{id}/stage", jobsHandler.UpdateStage).Methods("PUT")
	apiV1.HandleFunc("/jobs/ignored", jobsHandler.Ignore).Methods("POST")

	// Manually entered postings
	apiV1.HandleFunc("/jobs", catalogHandler.Create).Methods("POST")
	apiV1.HandleFunc("/jobs/{id:[0-9]+}", catalogHandler.Get).Methods("GET")

	// Hires
	apiV1.HandleFunc("/jobs/hired", hiresHandler.MarkHired).Methods("POST")
	apiV1.HandleFunc("/jobs/hired/{bidderId}", hiresHandler.ListByBidder).Methods("GET")

	// Weekly targets
	apiV1.HandleFunc("/targets", targetsHandler.SetTarget).Methods("POST")
	apiV1.HandleFunc("/targets/current", targetsHandler.GetTarget).Methods("GET")

	// Notifications
	apiV1.HandleFunc("/notifications", notificationsHandler.List).Methods("GET")
	apiV1.HandleFunc("/notifications/read-all", notificationsHandler.MarkAllRead).Methods("PUT")
	apiV1.HandleFunc("/notifications/{id}/read", notificationsHandler.MarkRead).Methods("PUT")
	apiV1.HandleFunc("/notifications/{id}", notificationsHandler.Delete).Methods("DELETE")

	// Portfolios
	apiV1.HandleFunc("/portfolios", portfoliosHandler.Create).Methods("POST")
	apiV1.HandleFunc("/portfolios", portfoliosHandler.List).Methods("GET")
	apiV1.HandleFunc("/portfolios/{id}", portfoliosHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/portfolios/{id}", portfoliosHandler.Delete).Methods("DELETE")

	// Catalog reads
	apiV1.HandleFunc("/platforms", platformsHandler.List).Methods("GET")
	apiV1.HandleFunc("/profiles", platformsHandler.ListProfiles).Methods("GET")

	// Admin routes
	admin := apiV1.PathPrefix("/admin").Subrouter()
	admin.Use(AdminOnlyMiddleware)

	admin.HandleFunc("/job-stats", statsHandler.JobStats).Methods("GET")
	admin.HandleFunc("/import", importHandler.Import).Methods("POST")
	admin.HandleFunc("/users", usersHandler.List).Methods("GET")
	admin.HandleFunc("/users/{id}/blocked", usersHandler.SetBlocked).Methods("PUT")
	admin.HandleFunc("/platforms", platformsHandler.Create).Methods("POST")
	admin.HandleFunc("/platforms/{id}", platformsHandler.Update).Methods("PUT")
	admin.HandleFunc("/platforms/{id}", platformsHandler.Delete).Methods("DELETE")
	admin.HandleFunc("/profiles", platformsHandler.CreateProfile).Methods("POST")
	admin.HandleFunc("/profiles/{id}", platformsHandler.UpdateProfile).Methods("PUT")
	admin.HandleFunc("/profiles/{id}", platformsHandler.DeleteProfile).Methods("DELETE")

	return r, nil
}
