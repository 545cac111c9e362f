package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/kovalyov-valentin/airport-news-feed/internal/metrics"
	"github.com/kovalyov-valentin/airport-news-feed/internal/newsfeed"
)

type FeedService interface {
	Feed(ctx context.Context, code string) (newsfeed.Result, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Фоновый запуск обновления по времени запроса. Может быть nil
type Trigger interface {
	Maybe(now time.Time) bool
}

type Server struct {
	feeds   FeedService
	pinger  Pinger
	trigger Trigger
	metrics *metrics.Metrics
	siteURL string
	log     logrus.FieldLogger
	now     func() time.Time
}

func New(feeds FeedService, pinger Pinger, trigger Trigger, m *metrics.Metrics, siteURL string, log logrus.FieldLogger) *Server {
	return &Server{
		feeds:   feeds,
		pinger:  pinger,
		trigger: trigger,
		metrics: m,
		siteURL: strings.TrimRight(siteURL, "/"),
		log:     log.WithField("component", "http"),
		now:     time.Now,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/rss/{iata_code}", s.handleRSS)
	r.Get("/airports/{iata_code}", s.handleAirport)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	return r
}

// Run слушает addr до отмены ctx, потом аккуратно гасит сервер
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server started")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration":    time.Since(start),
			"request_id":  middleware.GetReqID(r.Context()),
			"remote_addr": r.RemoteAddr,
		}).Info("request processed")
	})
}

// Результат запроса ленты с учетом фонового обновления
func (s *Server) feed(r *http.Request) (string, newsfeed.Result, error) {
	if s.trigger != nil {
		s.trigger.Maybe(s.now())
	}

	code := newsfeed.NormalizeCode(chi.URLParam(r, "iata_code"))
	res, err := s.feeds.Feed(r.Context(), code)

	outcome := res.Status.String()
	switch {
	case err != nil:
		outcome = "error"
		s.log.WithError(err).WithField("iata", code).Error("failed to build feed")
	case res.Status == newsfeed.StatusFound && len(res.Records) == 0:
		outcome = "empty"
	}
	s.metrics.FeedRequests.WithLabelValues(outcome).Inc()

	return code, res, err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := s.pinger.Ping(ctx); err != nil {
		s.log.WithError(err).Warn("health check failed")
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}
