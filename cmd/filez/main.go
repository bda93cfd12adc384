// Command filez runs the Filez HTTP API server: it loads configuration,
// connects to Postgres, starts the storage-location/application/
// access-policy reconciler, and serves the C8 HTTP surface.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/filez-project/filez/internal/logger"
	"github.com/filez-project/filez/internal/telemetry"
	"github.com/filez-project/filez/pkg/access"
	"github.com/filez-project/filez/pkg/api"
	"github.com/filez-project/filez/pkg/config"
	"github.com/filez-project/filez/pkg/dbgateway"
	"github.com/filez-project/filez/pkg/directory"
	"github.com/filez-project/filez/pkg/events"
	"github.com/filez-project/filez/pkg/files"
	"github.com/filez-project/filez/pkg/jobs"
	"github.com/filez-project/filez/pkg/models"
	"github.com/filez-project/filez/pkg/quota"
	"github.com/filez-project/filez/pkg/reconciler/controller"
	"github.com/filez-project/filez/pkg/reconciler/store"
	filezv1alpha1 "github.com/filez-project/filez/pkg/reconciler/v1alpha1"
	"github.com/filez-project/filez/pkg/storage"
	"github.com/filez-project/filez/pkg/tags"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Error("filez exited with error", "error", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "filez",
		Short: "Filez multi-tenant file content service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	return cmd
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: "dev",
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer shutdownTelemetry(ctx)

	if err := dbgateway.Migrate(cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	gw, err := dbgateway.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer gw.Close()

	registry := storage.NewRegistry()
	dir := directory.New(gw)
	eventLog := events.NewLog(gw, logger.With("component", "events"))
	defer eventLog.Close()

	quotaSvc := quota.NewService(gw)
	jobCoordinator := jobs.NewCoordinator(gw)
	filesSvc := files.NewService(gw, registry, quotaSvc, eventLog, jobCoordinator)
	tagsSvc := tags.NewService(gw)

	controlPlaneStore, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("opening control-plane store: %w", err)
	}

	mgr, err := startReconciler(controlPlaneStore, registry)
	if err != nil {
		return fmt.Errorf("starting reconciler: %w", err)
	}
	go func() {
		if err := mgr.Start(ctx); err != nil {
			logger.Error("reconciler manager stopped", "error", err)
		}
	}()

	router := api.NewRouter(api.Deps{
		Files:     filesSvc,
		Tags:      tagsSvc,
		Quota:     quotaSvc,
		Jobs:      jobCoordinator,
		Events:    eventLog,
		Registry:  registry,
		Policies:  access.PolicyLister(dir),
		AuthKeys:  dir,
		Apps:      dir,
		JWTSecret: []byte(cfg.JWTSecret),
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}
	go func() {
		logger.Info("filez metrics server listening", "addr", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	quotaSweepInterval, err := time.ParseDuration(cfg.QuotaSweepInterval)
	if err != nil {
		return fmt.Errorf("invalid quota_sweep_interval %q: %w", cfg.QuotaSweepInterval, err)
	}
	jobPollInterval, err := time.ParseDuration(cfg.JobPollInterval)
	if err != nil {
		return fmt.Errorf("invalid job_poll_interval %q: %w", cfg.JobPollInterval, err)
	}
	go runQuotaSweeper(ctx, quotaSvc, quotaSweepInterval)
	go runJobSweeper(ctx, jobCoordinator, jobPollInterval)
	go runStoragePurgeWorker(ctx, jobCoordinator, filesSvc, jobPollInterval)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("filez http server listening", "addr", cfg.HTTPAddr)
		serveErr <- srv.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
	case <-sigCtx.Done():
		logger.Info("shutting down filez http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
	}
	return nil
}

func startReconciler(cpStore *store.Store, registry *storage.Registry) (ctrl.Manager, error) {
	scheme := ctrlScheme()
	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("creating controller manager: %w", err)
	}

	if err := (&controller.StorageLocationReconciler{Client: mgr.GetClient(), Store: cpStore, Registry: registry}).SetupWithManager(mgr); err != nil {
		return nil, fmt.Errorf("setting up storage location controller: %w", err)
	}
	if err := (&controller.ApplicationReconciler{Client: mgr.GetClient(), Store: cpStore}).SetupWithManager(mgr); err != nil {
		return nil, fmt.Errorf("setting up application controller: %w", err)
	}
	if err := (&controller.AccessPolicyReconciler{Client: mgr.GetClient(), Store: cpStore}).SetupWithManager(mgr); err != nil {
		return nil, fmt.Errorf("setting up access policy controller: %w", err)
	}
	return mgr, nil
}

func ctrlScheme() *runtime.Scheme {
	scheme, err := filezv1alpha1.SchemeBuilder.Build()
	if err != nil {
		logger.Error("building controller-runtime scheme failed", "error", err)
		os.Exit(1)
	}
	return scheme
}

func runQuotaSweeper(ctx context.Context, quotaSvc *quota.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			released, err := quotaSvc.SweepStaleReservations(ctx, 3600)
			if err != nil {
				logger.Error("quota sweep failed", "error", err)
				continue
			}
			if released > 0 {
				logger.Info("quota sweep released stale reservations", "count", released)
			}
		}
	}
}

func runJobSweeper(ctx context.Context, coordinator *jobs.Coordinator, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reclaimed, err := coordinator.Sweep(ctx)
			if err != nil {
				logger.Error("job sweep failed", "error", err)
				continue
			}
			if reclaimed > 0 {
				logger.Info("job sweep reclaimed stale jobs", "count", reclaimed)
			}
		}
	}
}

// runStoragePurgeWorker polls for files.JobKindPurgeStorage jobs and deletes
// the underlying objects for a soft-deleted File's versions. This is the
// one in-process consumer of the C10 job coordinator in this binary; other
// job kinds are reserved for future background work enqueued the same way.
const purgeWorkerInstanceID = "filez-purge-worker"

func runStoragePurgeWorker(ctx context.Context, coordinator *jobs.Coordinator, filesSvc *files.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			claimed, err := coordinator.Pickup(ctx, files.JobKindPurgeStorage, purgeWorkerInstanceID, 10)
			if err != nil {
				logger.Error("storage purge job pickup failed", "error", err)
				continue
			}
			for _, job := range claimed {
				processPurgeJob(ctx, coordinator, filesSvc, job)
			}
		}
	}
}

func processPurgeJob(ctx context.Context, coordinator *jobs.Coordinator, filesSvc *files.Service, job models.Job) {
	raw, _ := job.Payload["file_id"].(string)
	id, err := models.ParseID(raw)
	if err != nil {
		msg := fmt.Sprintf("invalid file_id payload: %v", err)
		_ = coordinator.UpdateStatus(ctx, job.ID, models.JobStatusFailed, &msg)
		return
	}

	if err := filesSvc.PurgeStorage(ctx, models.FileID(id)); err != nil {
		msg := err.Error()
		logger.Error("storage purge job failed", "job_id", job.ID.String(), "error", err)
		_ = coordinator.UpdateStatus(ctx, job.ID, models.JobStatusFailed, &msg)
		return
	}
	_ = coordinator.UpdateStatus(ctx, job.ID, models.JobStatusSucceeded, nil)
}
