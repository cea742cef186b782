// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vc-assistant/internal/api"
	awsclient "vc-assistant/internal/common/aws"
	"vc-assistant/internal/common/camunda"
	"vc-assistant/internal/common/config"
	"vc-assistant/internal/common/database"
	"vc-assistant/internal/common/google"
	"vc-assistant/internal/common/llm"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/common/observability"
	"vc-assistant/internal/common/validation"
	"vc-assistant/internal/repository"
	"vc-assistant/pkg/registry"

	assistantchat "vc-assistant/internal/workers/ai-conversation/assistant-chat"
	preparecall "vc-assistant/internal/workers/calendar/prepare-call"
	synccalendar "vc-assistant/internal/workers/calendar/sync-calendar"
	draftpassemail "vc-assistant/internal/workers/deals/draft-pass-email"
	reconciledeal "vc-assistant/internal/workers/deals/reconcile-deal"
	searchdeals "vc-assistant/internal/workers/deals/search-deals"
	analyzedeck "vc-assistant/internal/workers/documents/analyze-deck"
	classifyemail "vc-assistant/internal/workers/inbox/classify-email"
	syncinbox "vc-assistant/internal/workers/inbox/sync-inbox"

	"go.uber.org/zap"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// workerTimeout prefers the per-worker config over the package default.
func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if w, ok := cfg.Workers[taskType]; ok && w.Timeout > 0 {
		return config.GetDuration(w.Timeout)
	}
	return fallback
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.Build(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting vc-assistant",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if cfg.Database.Postgres.ApplySchema {
		if err := pg.ApplySchema(ctx, repository.Schema); err != nil {
			zapLog.Fatal("apply schema failed", zap.Error(err))
		}
		zapLog.Info("Schema applied")
	}

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Completion provider ---
	completer, err := llm.NewClient(ctx, cfg.APIs.Completion, log)
	if err != nil {
		zapLog.Fatal("completion client init failed", zap.Error(err))
	}

	// --- AWS delivery channels (optional) ---
	var mailSender draftpassemail.MailSender
	if cfg.Integrations.AWS.SES.Enabled {
		ses, err := awsclient.NewSESClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SES.FromEmail)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		mailSender = ses
	}
	var alerter syncinbox.Alerter
	if cfg.Integrations.AWS.SNS.Enabled {
		sns, err := awsclient.NewSNSClient(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.TopicARN)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		alerter = sns
	}

	// --- Domain services ---
	store := repository.New(pg.DB)
	dealIndex := repository.NewDealIndex(esClient.Client, cfg.Database.Elasticsearch.DealIndex)
	connector := google.NewConnector(cfg.Google)

	classifyCfg := classifyemail.LoadConfig()
	classifyCfg.Timeout = workerTimeout(cfg, classifyemail.TaskType, classifyCfg.Timeout)
	classifier := classifyemail.NewHandler(classifyCfg, completer, rdb.Client, log)

	reconcileCfg := reconciledeal.LoadConfig()
	reconcileCfg.Timeout = workerTimeout(cfg, reconciledeal.TaskType, reconcileCfg.Timeout)
	reconciler := reconciledeal.NewHandler(reconcileCfg, store.Deals, store.Contacts, store.Emails, dealIndex, log)

	inboxCfg := syncinbox.LoadConfig()
	inboxCfg.Timeout = workerTimeout(cfg, syncinbox.TaskType, inboxCfg.Timeout)
	inbox := syncinbox.NewHandler(inboxCfg, connector, classifier, reconciler, store.Emails, alerter, log)

	calendarCfg := synccalendar.LoadConfig()
	calendarCfg.Timeout = workerTimeout(cfg, synccalendar.TaskType, calendarCfg.Timeout)
	calendarSync := synccalendar.NewHandler(calendarCfg, connector, reconciledeal.NewMatcher(store.Deals), store.Meetings, log)

	prepCfg := preparecall.LoadConfig()
	prepCfg.Timeout = workerTimeout(cfg, preparecall.TaskType, prepCfg.Timeout)
	callPrep := preparecall.NewHandler(prepCfg, store.Meetings, store.Deals, log)

	chatCfg := assistantchat.LoadConfig()
	chatCfg.Timeout = workerTimeout(cfg, assistantchat.TaskType, chatCfg.Timeout)
	chat := assistantchat.NewHandler(chatCfg, completer, store.ChatMessages, log)

	deckCfg := analyzedeck.LoadConfig()
	deckCfg.Timeout = workerTimeout(cfg, analyzedeck.TaskType, deckCfg.Timeout)
	decks := analyzedeck.NewHandler(deckCfg, completer, store.Documents, log)

	passCfg := draftpassemail.LoadConfig()
	passCfg.Timeout = workerTimeout(cfg, draftpassemail.TaskType, passCfg.Timeout)
	passEmails := draftpassemail.NewHandler(passCfg, store.Deals, completer, mailSender, log)

	searchCfg := searchdeals.LoadConfig()
	searchCfg.Timeout = workerTimeout(cfg, searchdeals.TaskType, searchCfg.Timeout)
	search := searchdeals.NewHandler(searchCfg, dealIndex, log)

	// --- Zeebe workers ---
	var workers []*camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		reg, err := registry.LoadRegistry(cfg.Registry.Path)
		if err != nil {
			zapLog.Fatal("activity registry load failed", zap.Error(err))
		}
		validator, err := validation.NewSchemaValidator(reg)
		if err != nil {
			zapLog.Fatal("input schema compile failed", zap.Error(err))
		}

		var zb *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zb, err = camunda.NewClient(ctx, cfg.Camunda)
			if err != nil && !camunda.IsTransient(err) {
				zapLog.Fatal("zeebe client misconfigured", zap.Error(err))
			}
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zb.Close()
		zapLog.Info("Zeebe client connected successfully")

		handlers := map[string]camunda.JobHandler{
			classifyemail.TaskType:  classifier,
			reconciledeal.TaskType:  reconciler,
			syncinbox.TaskType:      inbox,
			synccalendar.TaskType:   calendarSync,
			preparecall.TaskType:    callPrep,
			assistantchat.TaskType:  chat,
			analyzedeck.TaskType:    decks,
			draftpassemail.TaskType: passEmails,
			searchdeals.TaskType:    search,
		}
		for taskType, handler := range handlers {
			if !config.IsWorkerEnabled(cfg, taskType) {
				zapLog.Info("worker disabled", zap.String("taskType", taskType))
				continue
			}
			wcfg := config.GetWorkerConfig(cfg, taskType)
			workers = append(workers, camunda.NewWorker(zb.GetClient(), taskType, camunda.WorkerOptions{
				MaxJobsActive: wcfg.MaxJobsActive,
				Timeout:       config.GetDuration(wcfg.Timeout),
				Validator:     validator,
			}, handler, log))
		}
		zapLog.Info("Workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP API ---
	checks := map[string]func(context.Context) error{
		"postgres":      pg.Ping,
		"redis":         rdb.Ping,
		"elasticsearch": esClient.Ping,
	}
	if breaker, ok := completer.(*llm.BreakerCompleter); ok {
		checks["completion"] = breaker.Ready
	}

	server := api.NewServer(cfg.Server, api.Services{
		Chat:       chat,
		Inbox:      inbox,
		Calendar:   calendarSync,
		Decks:      decks,
		Documents:  store.Documents,
		PassEmails: passEmails,
		Search:     search,
		CallPrep:   callPrep,
		Tracer:     obs,
		Checks:     checks,
	}, log)

	if err := server.Run(ctx); err != nil {
		zapLog.Error("API server failed", zap.Error(err))
	}

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Stop()
	}
	zapLog.Info("vc-assistant stopped gracefully")
}
