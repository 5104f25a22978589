// Модуль main — входная точка инспектора: инициализация конфигурации, логгера,
// хранилища вкладок и запуск HTTP-сервера.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sol1corejz/gzip64-inspector/cmd/config"
	"github.com/sol1corejz/gzip64-inspector/internal/cert"
	"github.com/sol1corejz/gzip64-inspector/internal/file"
	"github.com/sol1corejz/gzip64-inspector/internal/handlers"
	"github.com/sol1corejz/gzip64-inspector/internal/logger"
	"github.com/sol1corejz/gzip64-inspector/internal/middlewares"
	"github.com/sol1corejz/gzip64-inspector/internal/storage"
	"github.com/sol1corejz/gzip64-inspector/pkg/gzip64"
	"github.com/sol1corejz/gzip64-inspector/pkg/httpmsg"
	"github.com/sol1corejz/gzip64-inspector/pkg/inspector"
	"go.uber.org/zap"
)

// Глобальные переменные для информации о версии сборки.
var (
	buildVersion = "N/A" // Версия сборки, передается на этапе компиляции.
	buildDate    = "N/A" // Дата сборки, передается на этапе компиляции.
	buildCommit  = "N/A" // Коммит сборки, передается на этапе компиляции.
)

// Каталог, в котором хранится самоподписанный сертификат.
const certDir = "."

func main() {
	// Канал сообщения о закрытии соединения
	idleConnsClosed := make(chan struct{})
	// Канал для перенаправления прерываний
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	if err := config.ParseFlags(); err != nil {
		log.Printf("failed to parse config: %v", err)
		return
	}

	if err := logger.Initialize(config.FlagLogLevel, config.FlagLogFile); err != nil {
		log.Printf("failed to initialize logger: %v", err)
		return
	}
	defer logger.Log.Sync()

	if err := run(ctx, sigint, idleConnsClosed); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Error("Failed to run server", zap.Error(err))
		return
	}

	<-idleConnsClosed
	logger.Log.Info("Server Shutdown gracefully")
}

func newEngine() *gzip64.Engine {
	return gzip64.NewEngine(
		gzip64.WithSink(logger.NewSink(logger.Log)),
		gzip64.WithLevel(config.GzipLevel),
		gzip64.WithMaxDecompressedSize(config.MaxDecompressedSize),
	)
}

func newFilter() httpmsg.Filter {
	if config.StrictContentType {
		return httpmsg.Filter{Mode: httpmsg.MatchStrict}
	}
	return httpmsg.Filter{Mode: httpmsg.MatchLoose}
}

// newRouter собирает маршруты API и, если задана доверенная подсеть,
// подключает профилирование pprof.
func newRouter(store storage.Storage, journal *file.Producer) chi.Router {
	h := handlers.New(store, newEngine(), newFilter(), config.SecretKey)
	h.Journal = journal
	r := handlers.NewRouter(h, config.GzipLevel, config.TrustedSubnet)

	trusted := func(fn http.HandlerFunc) http.HandlerFunc {
		return logger.RequestLogger(middlewares.TrustedSubnetMiddleware(config.TrustedSubnet, fn))
	}
	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", trusted(pprof.Index))
		r.Get("/cmdline", trusted(pprof.Cmdline))
		r.Get("/profile", trusted(pprof.Profile))
		r.Get("/symbol", trusted(pprof.Symbol))
		r.Get("/trace", trusted(pprof.Trace))
		r.Get("/{profile}", trusted(pprof.Index))
	})

	return r
}

// sweep периодически закрывает вкладки, которыми не пользовались дольше idle.
func sweep(ctx context.Context, store storage.Storage, idle time.Duration) {
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.Sweep(now.Add(-idle)); n > 0 {
				logger.Log.Info("idle tabs closed", zap.Int("count", n))
			}
		}
	}
}

// run запускает HTTP-сервер и ожидает сигнала завершения в отдельной горутине.
func run(ctx context.Context, sigint chan os.Signal, idleConnsClosed chan struct{}) error {
	logger.Log.Info("Running server",
		zap.String("extension", inspector.ExtensionName),
		zap.String("address", config.FlagRunAddr),
		zap.Int64("maxDecompressedSize", config.MaxDecompressedSize),
		zap.Bool("strictContentType", config.StrictContentType),
	)

	store := storage.NewMemoryStorage()
	go sweep(ctx, store, config.TabIdleTimeout)

	var journal *file.Producer
	if config.JournalFile != "" {
		p, err := file.NewProducer(config.JournalFile)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		journal = p
	}

	srv := &http.Server{
		Addr:              config.FlagRunAddr,
		Handler:           newRouter(store, journal),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-sigint

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("HTTP server Shutdown failed", zap.Error(err))
		}
		if journal != nil {
			if err := journal.Close(); err != nil {
				logger.Log.Error("failed to close journal", zap.Error(err))
			}
		}

		close(idleConnsClosed)
	}()

	if config.EnableHTTPS {
		certPath, keyPath, err := cert.Ensure(certDir)
		if err != nil {
			return err
		}
		logger.Log.Info("Loading TLS certificate", zap.String("cert", certPath))
		return srv.ListenAndServeTLS(certPath, keyPath)
	}
	return srv.ListenAndServe()
}
