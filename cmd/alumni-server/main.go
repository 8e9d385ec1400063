package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/igm/sockjs-go/sockjs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/saurabhraj25aug2004/alumni-association-website/internal/config"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/httpapi"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/hub"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/logging"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/relay"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/store/postgres"
	"github.com/saurabhraj25aug2004/alumni-association-website/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.Log)

	shutdownTracer := telemetry.Setup("alumni-server")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping postgres")
	}

	st := postgres.NewStore(pool)
	h := hub.New()

	// With NATS configured, outbox events fan out through the broker so
	// every server instance relays them. Without it the poller feeds the
	// local hub directly.
	var sink relay.Sink = relay.SinkFunc(h.Broadcast)
	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL,
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second))
		if err != nil {
			log.Fatal().Err(err).Msg("connect nats")
		}
		defer nc.Drain()

		sub, err := hub.SubscribeEvents(nc, h)
		if err != nil {
			log.Fatal().Err(err).Msg("subscribe events")
		}
		defer sub.Unsubscribe()

		sink = hub.NewNATSPublisher(nc)
		log.Info().Str("url", cfg.NATSURL).Msg("relaying events through nats")
	}

	poller := relay.NewPoller(st, sink, cfg.Relay.PollInterval, cfg.Relay.BatchSize)
	go func() {
		if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("relay poller stopped")
		}
	}()

	api := httpapi.NewHandler(st, httpapi.Options{SessionTTL: cfg.SessionTTL})

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimit.RequestsPerMinute, time.Minute))
	r.Use(httpapi.RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", api.Routes())

	// RawWebsocket serves the unframed /realtime/websocket endpoint the
	// Go client dials; browser clients use the regular sockjs transports.
	sockjsOpts := sockjs.DefaultOptions
	sockjsOpts.RawWebsocket = true
	sockjsHandler := sockjs.NewHandler("/realtime", sockjsOpts, hub.SessionHandler(h, st, st))
	r.Mount("/realtime", sockjsHandler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, "alumni-server"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
