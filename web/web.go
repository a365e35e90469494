package web

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Nintron27/pillow"
	"github.com/andybalholm/brotli"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/turanweb/turan/database"
	"github.com/turanweb/turan/internal/assets"
	"github.com/turanweb/turan/internal/clock"
	"github.com/turanweb/turan/internal/config"
	"github.com/turanweb/turan/internal/events"
	"github.com/turanweb/turan/internal/funnel"
	"github.com/turanweb/turan/internal/handlers"
	"github.com/turanweb/turan/internal/leads"
	"github.com/turanweb/turan/internal/metrics"
	"github.com/turanweb/turan/internal/routes"
	"github.com/turanweb/turan/internal/sessions"
	"github.com/turanweb/turan/internal/wizard"
)

//go:embed static
var staticFS embed.FS

const reapInterval = time.Minute

// Run sets up all needed dependencies for the server, early returning with
// an error if one occurs.
func Run(ctx context.Context, getenv func(string) string, stdout, stderr io.Writer) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(getenv)
	if err != nil {
		return err
	}

	// Create logger
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	if err := assets.Load(static); err != nil {
		return err
	}

	// Start embedded NATS server
	ns, err := pillow.Run(
		pillow.WithNATSServerOptions(&server.Options{
			JetStream: true,
			StoreDir:  cfg.NATSStoreDir,
		}),
		pillow.WithPlatformAdapter(ctx, cfg.Prod(), &pillow.FlyioHubAndSpoke{
			ClusterName:       "turan_swarm",
			DisableClustering: true,
		}),
	)
	if err != nil {
		return err
	}

	nc, err := ns.NATSClient()
	if err != nil {
		return err
	}

	// Create bucket for sessions, records expire with the live sessions
	js, err := jetstream.New(nc)
	if err != nil {
		return err
	}
	sessionsKV, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket: "sessions",
		TTL:    cfg.SessionIdle,
	})
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	wizardMetrics := metrics.NewWizard(reg)

	// Funnel analytics are optional, they need postgres
	var db *database.Database
	var funnelStore *funnel.Store
	if cfg.FunnelEnabled() {
		db, err = database.Open(ctx, cfg.PostgresURI)
		if err != nil {
			return err
		}
		funnelStore = funnel.NewStore(db.Pool)
		go func() {
			if err := funnel.Consume(ctx, nc, funnelStore, logger); err != nil {
				logger.LogAttrs(ctx, slog.LevelError, "funnel consumer stopped", slog.String("error", err.Error()))
			}
		}()
	}

	sessionStore := sessions.NewKVStore(sessionsKV)
	bus := events.NewBus(nc, wizardMetrics, logger)
	registry := wizard.NewRegistry(clock.Real{})
	mount := handlers.NewMount(wizard.Options{
		Clock:     clock.Real{},
		Submitter: leads.NewClient(cfg.LeadsAPIURL, &http.Client{Timeout: 15 * time.Second}, logger),
		Hooks:     bus.Hooks(),
		Logger:    logger,
	})

	deps := routes.Deps{
		Logger:      logger,
		Cookies:     sessions.NewCookieStore(cfg.CookieKey, cfg.Prod(), int(cfg.SessionIdle.Seconds())),
		Sessions:    sessionStore,
		Registry:    registry,
		NATS:        nc,
		Mount:       mount,
		DefaultFlow: wizard.Variant(cfg.Flow),
		Gatherer:    reg,
		Dev:         !cfg.Prod(),
	}
	if funnelStore != nil && cfg.AdminEnabled() {
		deps.Funnel = funnelStore
		deps.Admins = map[string]string{cfg.AdminUser: cfg.AdminPassword}
	}

	// Drop sessions nobody has touched for a while
	go func() {
		ticker := time.NewTicker(reapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				reaped := registry.Reap(cfg.SessionIdle)
				wizardMetrics.SetLiveSessions(registry.Len())
				for _, sid := range reaped {
					if err := sessionStore.Delete(ctx, sid); err != nil {
						logger.LogAttrs(ctx, slog.LevelWarn, "failed to delete reaped session",
							slog.String("sid", sid), slog.String("error", err.Error()))
					}
				}
				if len(reaped) > 0 {
					logger.LogAttrs(ctx, slog.LevelDebug, "reaped idle sessions", slog.Int("count", len(reaped)))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Create and run server
	srv := NewServer(deps)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}
	go func() {
		logger.LogAttrs(
			ctx,
			slog.LevelInfo,
			"server started",
			slog.String("PORT", httpServer.Addr),
			slog.String("flow", cfg.Flow),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(stderr, "error listening and serving: %s\n", err)
		}
	}()

	// Handle graceful shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(stderr, "error shutting down http server: %s\n", err)
		}
		registry.Close()
		if db != nil {
			db.Close()
		}
		if err := ns.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(stderr, "error shutting down nats server: %s\n", err)
		}
	}()
	wg.Wait()
	return nil
}

func NewServer(deps routes.Deps) http.Handler {
	mux := chi.NewMux()

	mux.Use(middleware.Logger)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(middleware.Heartbeat("/heartbeat"))
	mux.Use(Compressor(2))

	routes.AddRoutes(mux, deps)

	return mux
}

// Compress is an adapter middleware from Chi that compresses
// the response body of a given content types to a data format based
// on Accept-Encoding request header. Adapted to include Brotli encoding.
//
// NOTE: make sure to set the Content-Type header on your response
// otherwise this middleware will not compress the response body.
// Passing a compression level of 2-5 is sensible value.
func Compressor(level int) func(next http.Handler) http.Handler {
	compressor := middleware.NewCompressor(level)
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterV2(w, level)
	})

	return compressor.Handler
}
