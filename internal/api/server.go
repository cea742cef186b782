// Package api exposes the assistant operations over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vc-assistant/internal/common/config"
	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/models"
	"vc-assistant/internal/repository"
	assistantchat "vc-assistant/internal/workers/ai-conversation/assistant-chat"
	preparecall "vc-assistant/internal/workers/calendar/prepare-call"
	synccalendar "vc-assistant/internal/workers/calendar/sync-calendar"
	draftpassemail "vc-assistant/internal/workers/deals/draft-pass-email"
	searchdeals "vc-assistant/internal/workers/deals/search-deals"
	analyzedeck "vc-assistant/internal/workers/documents/analyze-deck"
	syncinbox "vc-assistant/internal/workers/inbox/sync-inbox"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
)

type ChatService interface {
	Execute(ctx context.Context, input *assistantchat.Input) (*assistantchat.Output, error)
}

type InboxSyncer interface {
	Execute(ctx context.Context, input *syncinbox.Input) (*syncinbox.Output, error)
}

type CalendarSyncer interface {
	Execute(ctx context.Context, input *synccalendar.Input) (*synccalendar.Output, error)
}

type DeckAnalyzer interface {
	Execute(ctx context.Context, input *analyzedeck.Input) (*analyzedeck.Output, error)
	Analyze(ctx context.Context, documentID, content string) (*models.DeckAnalysis, error)
}

type PassEmailDrafter interface {
	Execute(ctx context.Context, input *draftpassemail.Input) (*draftpassemail.Output, error)
}

type DealSearcher interface {
	Execute(ctx context.Context, input *searchdeals.Input) (*searchdeals.Output, error)
}

type CallPreparer interface {
	Execute(ctx context.Context, input *preparecall.Input) (*preparecall.Output, error)
}

// Tracer starts request spans. observability.Observability satisfies it.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, trace.Span)
}

// Services are the operations behind the routes. Nil tracer is allowed.
type Services struct {
	Chat       ChatService
	Inbox      InboxSyncer
	Calendar   CalendarSyncer
	Decks      DeckAnalyzer
	Documents  repository.DocumentStore
	PassEmails PassEmailDrafter
	Search     DealSearcher
	CallPrep   CallPreparer
	Tracer     Tracer

	// Checks back /ready, keyed by dependency name.
	Checks map[string]func(context.Context) error
}

type Server struct {
	config   config.ServerConfig
	services Services
	validate *validator.Validate
	logger   logger.Logger
}

func NewServer(cfg config.ServerConfig, services Services, log logger.Logger) *Server {
	return &Server{
		config:   cfg,
		services: services,
		validate: validator.New(),
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.logger))
	router.Use(requestMetrics)
	if s.services.Tracer != nil {
		router.Use(requestTracing(s.services.Tracer))
	}

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", s.healthCheck)
	router.Get("/ready", s.readinessCheck)
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		if s.config.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(config.GetDuration(s.config.RequestTimeout)))
		}

		r.Post("/chat", s.chat)
		r.Post("/gmail/sync", s.syncGmail)
		r.Post("/calendar/sync", s.syncCalendar)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/upload", s.uploadDocument)
			r.Post("/analyze", s.analyzeDocument)
		})

		r.Route("/deals", func(r chi.Router) {
			r.Get("/search", s.searchDeals)
			r.Post("/{dealID}/pass-email", s.draftPassEmail)
		})

		r.Get("/meetings/{meetingID}/prep", s.prepareCall)
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", map[string]interface{}{"address": s.config.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) readinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var failed []string
	for name, check := range s.services.Checks {
		if err := check(ctx); err != nil {
			s.logger.Warn("readiness check failed", map[string]interface{}{"check": name, "error": err.Error()})
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		s.respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "not ready", "failed": failed})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
