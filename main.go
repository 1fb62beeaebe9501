package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"battery-passport/internal/assets"
	"battery-passport/internal/audit"
	"battery-passport/internal/database"
	"battery-passport/internal/label"
	"battery-passport/internal/observability/metrics"
	"battery-passport/internal/passport/application"
	passportrepo "battery-passport/internal/passport/infrastructure/postgres"
	passporthttp "battery-passport/internal/passport/interfaces/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.Migrate(db); err != nil {
			logger.Fatalf("migrate error: %v", err)
		}
		logger.Printf("migrations applied")
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	layout, err := label.LoadLayout()
	if err != nil {
		logger.Fatalf("label layout error: %v", err)
	}
	composer, err := label.NewComposer(layout)
	if err != nil {
		logger.Fatalf("label composer error: %v", err)
	}

	store, err := assets.NewStore(cfg.AssetRoot)
	if err != nil {
		logger.Fatalf("asset store error: %v", err)
	}

	repo := passportrepo.NewBatteryRepository(db)
	service, err := application.NewPassportService(
		application.Config{BaseURL: cfg.BaseURL},
		repo, composer, label.NewPreviewGenerator(), store, systemClock{},
	)
	if err != nil {
		logger.Fatalf("passport service error: %v", err)
	}
	resolver, err := application.NewVerificationService(repo)
	if err != nil {
		logger.Fatalf("verification service error: %v", err)
	}

	apiHandler, err := passporthttp.NewHandler(service, resolver, auditRepo)
	if err != nil {
		logger.Fatalf("api handler error: %v", err)
	}
	webHandler, err := passporthttp.NewWebHandler(service, resolver, logger)
	if err != nil {
		logger.Fatalf("web handler error: %v", err)
	}
	exportHandler, err := passporthttp.NewRegistryExportHandler(repo, auditRepo)
	if err != nil {
		logger.Fatalf("export handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/", webHandler)
	mux.Handle("/generate", webHandler)
	mux.Handle("/verify/", webHandler)
	mux.Handle("/api/v1/passports", apiHandler)
	mux.Handle("/api/v1/passports/", apiHandler)
	mux.Handle("/api/v1/registry/export.csv", exportHandler)
	mux.Handle("/api/v1/registry/export.xlsx", exportHandler)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(store.Root()))))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL   string
	HTTPAddr      string
	BaseURL       string
	AssetRoot     string
	RunMigrations bool
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:   getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:      getenvDefault("HTTP_ADDR", ":8080"),
		BaseURL:       getenvDefault("BASE_URL", "http://localhost:8080"),
		AssetRoot:     getenvDefault("ASSET_ROOT", "static"),
		RunMigrations: getenvBoolDefault("RUN_MIGRATIONS", false),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvBoolDefault(key string, fallback bool) bool {
	switch os.Getenv(key) {
	case "":
		return fallback
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }
