package server

import (
	"context"
	"errors"
	nethttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/dwarvesf/ape-bridge-backend/internal/evmrpc"
	"github.com/dwarvesf/ape-bridge-backend/internal/handler"
	natshandler "github.com/dwarvesf/ape-bridge-backend/internal/handler/nats"
	"github.com/dwarvesf/ape-bridge-backend/internal/intake"
	"github.com/dwarvesf/ape-bridge-backend/internal/model"
	"github.com/dwarvesf/ape-bridge-backend/internal/monitoring"
	"github.com/dwarvesf/ape-bridge-backend/internal/query"
	"github.com/dwarvesf/ape-bridge-backend/internal/store"
	pgstore "github.com/dwarvesf/ape-bridge-backend/internal/store/postgres"
	"github.com/dwarvesf/ape-bridge-backend/internal/telemetry"
	"github.com/dwarvesf/ape-bridge-backend/internal/tracker"
	"github.com/dwarvesf/ape-bridge-backend/internal/transport/http"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/config"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/logger"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/vault"
	"github.com/dwarvesf/ape-bridge-backend/internal/utils/webhook"
)

const (
	indexConfirmationsJob = "index_confirmations"
	sweepStalledJob       = "sweep_stalled"
	jobTimeout            = 5 * time.Minute
	shutdownTimeout       = 10 * time.Second
)

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)
	defer logger.Sync()

	if appConfig.Vault.Addr != "" {
		loadVaultSecrets(appConfig, logger)
	}

	var (
		db *gorm.DB
		s  *store.Store
	)
	switch appConfig.StoreDriver {
	case store.DriverPostgres:
		db = pgstore.New(appConfig, logger)
		s = store.New(db)
	case store.DriverMemory:
		s = store.NewMemory()
	default:
		logger.Fatal("[Init] unknown store driver", map[string]string{
			"driver": appConfig.StoreDriver,
		})
	}

	// metrics
	metricsRegistry := prometheus.NewRegistry()
	metricsRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := monitoring.NewHTTPMetrics()
	httpMetrics.MustRegister(metricsRegistry)
	externalAPIMetrics := monitoring.NewExternalAPIMetrics()
	externalAPIMetrics.MustRegister(metricsRegistry)
	jobMetrics := monitoring.NewBackgroundJobMetrics()
	jobMetrics.MustRegister(metricsRegistry)
	recorder := monitoring.NewBusinessMetricsRecorder(httpMetrics)

	webhookClient := webhook.New(logger, appConfig.Webhooks.SettlementURL)

	bridgeTracker, err := tracker.New(s.BridgeTransaction, webhookClient, logger,
		tracker.WithStallThreshold(appConfig.Stall.Threshold),
		tracker.WithMetricsRecorder(recorder),
	)
	if err != nil {
		logger.Fatal("[Init][tracker.New]", map[string]string{"error": err.Error()})
	}
	bridgeIntake, err := intake.New(s.BridgeTransaction, intake.DefaultFeeTable(), appConfig.Blockchain.RequiredConfirmations, logger, recorder)
	if err != nil {
		logger.Fatal("[Init][intake.New]", map[string]string{"error": err.Error()})
	}
	bridgeQuery, err := query.New(s.BridgeTransaction)
	if err != nil {
		logger.Fatal("[Init][query.New]", map[string]string{"error": err.Error()})
	}

	readers, err := evmrpc.New(appConfig, logger)
	if err != nil {
		logger.Fatal("[Init][evmrpc.New]", map[string]string{"error": err.Error()})
	}
	guardedReaders := make(map[model.Network]evmrpc.ChainReader, len(readers))
	for network, reader := range readers {
		guardedReaders[network] = monitoring.NewCircuitBreakerChainReader(
			reader,
			monitoring.CircuitBreakerConfigs["chain_rpc"],
			externalAPIMetrics,
			logger,
		)
	}

	jobStatusManager := monitoring.NewJobStatusManager(logger, jobMetrics)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go jobStatusManager.Start(ctx)

	t := telemetry.New(s.BridgeTransaction, bridgeTracker, guardedReaders, logger, recorder, jobMetrics)

	c := cron.New()
	indexJob := monitoring.NewInstrumentedJob(indexConfirmationsJob, t.IndexConfirmations, jobStatusManager, logger, jobTimeout).
		WithUptimeWebhook(webhookClient, appConfig.Webhooks.IndexConfirmationsUptimeURL)
	if len(guardedReaders) == 0 {
		logger.Warn("[Init] no chain rpc configured, confirmation polling disabled")
	} else if _, err := c.AddFunc(appConfig.IndexPeriod, indexJob.Execute); err != nil {
		logger.Fatal("[Init][AddFunc] invalid index period", map[string]string{
			"period": appConfig.IndexPeriod,
			"error":  err.Error(),
		})
	}

	sweepJob := monitoring.NewInstrumentedJob(sweepStalledJob, t.SweepStalled, jobStatusManager, logger, jobTimeout).
		WithUptimeWebhook(webhookClient, appConfig.Webhooks.SweepStalledUptimeURL)
	if _, err := c.AddFunc(appConfig.Stall.SweepPeriod, sweepJob.Execute); err != nil {
		logger.Fatal("[Init][AddFunc] invalid stall sweep period", map[string]string{
			"period": appConfig.Stall.SweepPeriod,
			"error":  err.Error(),
		})
	}
	c.Start()

	natsConn, feed := startConfirmationFeed(appConfig, logger, bridgeTracker, bridgeQuery, recorder)

	h := handler.New(logger, handler.Services{
		Intake:           bridgeIntake,
		Query:            bridgeQuery,
		Tracker:          bridgeTracker,
		Store:            s.BridgeTransaction,
		DB:               db,
		Readers:          guardedReaders,
		JobStatusManager: jobStatusManager,
		MetricsRegistry:  metricsRegistry,
	})
	httpServer := &nethttp.Server{
		Addr:    ":" + appConfig.ApiServer.Port,
		Handler: http.NewHttpServer(appConfig, logger, h, httpMetrics),
	}

	go func() {
		logger.Info("[Init] http server listening", map[string]string{"addr": httpServer.Addr})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Fatal("[Init][ListenAndServe]", map[string]string{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	logger.Info("[Init] shutting down")

	<-c.Stop().Done()
	if feed != nil {
		feed.Close()
	}
	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn("[Init][Drain]", map[string]string{"error": err.Error()})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("[Init][Shutdown]", map[string]string{"error": err.Error()})
	}
}

// startConfirmationFeed subscribes to watcher events when NATS is configured.
// A broker outage at startup only disables the feed; the poller keeps running.
func startConfirmationFeed(
	appConfig *config.AppConfig,
	logger *logger.Logger,
	bridgeTracker tracker.ITracker,
	bridgeQuery query.IQuery,
	recorder *monitoring.BusinessMetricsRecorder,
) (*nats.Conn, *natshandler.Handler) {
	if appConfig.Nats.URL == "" {
		logger.Info("[startConfirmationFeed] NATS_URL not set, confirmation feed disabled")
		return nil, nil
	}

	conn, err := nats.Connect(appConfig.Nats.URL,
		nats.Name("ape-bridge-backend"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		logger.Error("[startConfirmationFeed][Connect]", map[string]string{
			"url":   appConfig.Nats.URL,
			"error": err.Error(),
		})
		return nil, nil
	}

	feed, err := natshandler.NewHandler(bridgeTracker, bridgeQuery, logger, recorder)
	if err != nil {
		logger.Fatal("[startConfirmationFeed][NewHandler]", map[string]string{"error": err.Error()})
	}
	if err := feed.Subscribe(conn, appConfig.Nats.ConfirmationSubject); err != nil {
		logger.Error("[startConfirmationFeed][Subscribe]", map[string]string{"error": err.Error()})
		conn.Close()
		return nil, nil
	}

	return conn, feed
}

func loadVaultSecrets(appConfig *config.AppConfig, logger *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := vault.New(ctx, appConfig.Vault.Addr, appConfig.Vault.KVSecretPath, appConfig.Vault.Role)
	if err != nil {
		logger.Fatal("[loadVaultSecrets][vault.New]", map[string]string{"error": err.Error()})
	}
	secrets, err := client.Secrets(ctx)
	if err != nil {
		logger.Fatal("[loadVaultSecrets][Secrets]", map[string]string{"error": err.Error()})
	}

	applied := appConfig.ApplySecrets(secrets)
	logger.Info("[loadVaultSecrets] secrets loaded", map[string]string{
		"keys": strings.Join(applied, ","),
	})
}
