package main

import (
	"context"
	"log"
	"net/http"

	"loggit/config"
	"loggit/handlers"
	"loggit/ledger"
	"loggit/middleware"
	"loggit/storage"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Local fallback tier always opens; the remote tier is best-effort.
	local, err := storage.OpenSQLite(cfg.LocalDBPath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer local.Close()

	var remote storage.Store
	if pg, err := storage.OpenPostgres(cfg.DatabaseURL); err != nil {
		log.Printf("Remote store unavailable at startup: %v", err)
	} else {
		remote = pg
	}

	store := storage.NewFailover(remote, local)
	ctx := context.Background()
	store.Connect(ctx)

	if err := storage.SeedMaster(ctx, store, cfg.MasterUsername, cfg.MasterPasscode); err != nil {
		log.Fatalf("Failed to seed master account: %v", err)
	}

	auth := middleware.NewAuth(cfg.JWTSecret, store)
	manager := ledger.NewManager(store)

	authHandler := handlers.NewAuthHandler(cfg, auth, store)
	ledgerHandler := handlers.NewLedgerHandler(manager, store)
	userHandler := handlers.NewUserHandler(store)
	exportHandler := handlers.NewExportHandler(store)

	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	router.Post("/login", authHandler.Login)
	router.Post("/setup-passcode", authHandler.SetupPasscode)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/logout", authHandler.Logout)
		r.Post("/passcode", authHandler.ChangePasscode)

		r.Get("/ledger", ledgerHandler.Ledger)
		r.Post("/entries", ledgerHandler.CreateEntry)
		r.Put("/entries/{id}", ledgerHandler.UpdateEntry)
		r.Delete("/entries/{id}", ledgerHandler.DeleteEntry)
		r.Get("/storage/status", ledgerHandler.StorageStatus)

		// Master only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireMaster)
			r.Get("/ledger/{subjectID}", ledgerHandler.SubjectLedger)
			r.Post("/verifications", ledgerHandler.SetVerification)
			r.Get("/users", userHandler.ListUsers)
			r.Post("/users", userHandler.CreateUser)
			r.Put("/users/{id}", userHandler.UpdateUser)
			r.Post("/users/{id}/status", userHandler.SetUserStatus)
			r.Delete("/users/{id}", userHandler.DeleteUser)
			r.Get("/export/csv", exportHandler.ExportCSV)
			r.Get("/export/xlsx", exportHandler.ExportXLSX)
		})
	})

	log.Printf("Server starting on port %s (storage: %s)", cfg.ServerPort, store.Status())
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, router))
}
