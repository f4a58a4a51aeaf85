package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rise-pro/debt-aging/internal/api/handlers"
	"github.com/rise-pro/debt-aging/internal/api/middleware"
	"github.com/rise-pro/debt-aging/internal/history"
	"github.com/rise-pro/debt-aging/internal/jobs"
	"github.com/rise-pro/debt-aging/internal/jobs/inmemory"
	"github.com/rise-pro/debt-aging/internal/ledger"
	"github.com/rise-pro/debt-aging/internal/logger"
	"github.com/rise-pro/debt-aging/internal/matching"
	"github.com/rise-pro/debt-aging/internal/notify"
	"github.com/rise-pro/debt-aging/internal/payments"
	"github.com/rise-pro/debt-aging/internal/store"
	"github.com/rise-pro/debt-aging/internal/suppliers"
)

func main() {
	// Local development reads configuration from .env; missing file is fine.
	_ = godotenv.Load()

	var (
		port       = flag.String("port", envOr("PORT", "8080"), "HTTP server port")
		webhookURL = flag.String("webhook", os.Getenv("AUTOMATION_WEBHOOK_URL"), "automation webhook URL (or set AUTOMATION_WEBHOOK_URL)")
		company    = flag.String("company", envOr("COMPANY_NAME", "רייז פרו"), "company name signing draft messages")
		useBQ      = flag.Bool("bigquery", os.Getenv("USE_BIGQUERY") == "true", "back the supplier registry and run history with BigQuery")
	)
	flag.Parse()

	log := logger.New()

	ctx := context.Background()

	// Repositories: BigQuery when configured, in-memory otherwise.
	var supplierRepo suppliers.Repository
	var historyRepo history.Repository
	if *useBQ {
		bqSuppliers, err := suppliers.NewBigQuerySupplierRepository(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create supplier repository")
		}
		supplierRepo = bqSuppliers

		bqHistory, err := history.NewBigQueryRunRepository(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create history repository")
		}
		historyRepo = bqHistory
	} else {
		log.Warn().Msg("BigQuery disabled - supplier registry and run history are in-memory")
		supplierRepo = suppliers.NewMemoryRepository()
		historyRepo = history.NewMemoryRepository()
	}
	defer supplierRepo.Close()
	defer historyRepo.Close()

	if *webhookURL == "" {
		log.Warn().Msg("No automation webhook configured - draft dispatch will fail until one is set")
	}
	webhook := notify.NewWebhookClient(*webhookURL, nil)

	resultStore := store.New(ledger.DefaultVocabulary())
	engine := matching.NewEngine(matching.Config{})
	calculator := payments.NewCalculator(nil)

	// Job infrastructure for asynchronous draft dispatch.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		dispatchJob, ok := job.(*jobs.SendDraftsJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", dispatchJob.JobID).
			Str("run_id", dispatchJob.RunID).
			Int("drafts", len(dispatchJob.Drafts)).
			Msg("Dispatching drafts")

		if err := webhook.SendDrafts(ctx, dispatchJob.RunID, dispatchJob.Drafts); err != nil {
			log.Error().
				Err(err).
				Str("job_id", dispatchJob.JobID).
				Msg("Draft dispatch failed")
			return err
		}

		log.Info().Str("job_id", dispatchJob.JobID).Msg("Draft dispatch completed")
		return nil
	}

	go func() {
		log.Info().Msg("Starting dispatch worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Dispatch worker stopped with error")
		}
	}()

	processHandler := handlers.NewProcessHandler(resultStore, engine, supplierRepo, historyRepo, *company, log)
	paymentsHandler := handlers.NewPaymentsHandler(resultStore, calculator, log)
	suppliersHandler := handlers.NewSuppliersHandler(supplierRepo, log)
	historyHandler := handlers.NewHistoryHandler(historyRepo, log)
	dispatchHandler := handlers.NewDispatchHandler(resultStore, supplierRepo, jobQueue, jobStore, webhook, *company, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/process-excel", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			processHandler.ProcessExcel(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/preview-excel", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			processHandler.PreviewExcel(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/processing-details/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			category := strings.TrimPrefix(r.URL.Path, "/api/processing-details/")
			if category == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Category is required")
				return
			}
			processHandler.GetDetails(w, r, category)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/move-row", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			processHandler.MoveRow(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/delete-row", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			processHandler.DeleteRow(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/bulk-delete", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			processHandler.BulkDelete(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/generate-payment", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			paymentsHandler.GeneratePayment(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/export-ready-payment", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			paymentsHandler.ExportReadyPayment(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/suppliers", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			suppliersHandler.ListSuppliers(w, r)
		case http.MethodPost:
			suppliersHandler.CreateSupplier(w, r)
		case http.MethodDelete:
			suppliersHandler.DeleteAllSuppliers(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/suppliers/", func(w http.ResponseWriter, r *http.Request) {
		supplierID := strings.TrimPrefix(r.URL.Path, "/api/suppliers/")
		if supplierID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Supplier ID is required")
			return
		}
		switch r.Method {
		case http.MethodPut:
			suppliersHandler.UpdateSupplier(w, r, supplierID)
		case http.MethodDelete:
			suppliersHandler.DeleteSupplier(w, r, supplierID)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/processing-history", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			historyHandler.ListRuns(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/send-drafts", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			dispatchHandler.SendDrafts(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/trigger-automation", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			dispatchHandler.TriggerAutomation(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			dispatchHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			dispatchHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.Auth(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
