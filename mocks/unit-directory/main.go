// Command unit-directory is a stand-in for the external Unit Directory. It
// serves the HTTP protocol the directory client speaks, backed by an
// in-memory directory seeded with the demo buildings. Point the API at it
// with DIRECTORY_BACKEND=http and DIRECTORY_URL.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"unitgate/internal/directory"
	dirmemory "unitgate/internal/directory/memory"
	"unitgate/internal/directory/server"
	"unitgate/internal/platform/logger"
	"unitgate/internal/seeder"
)

const (
	defaultPort      = "8081"
	defaultLatencyMs = 0
)

type memoryBuildings struct {
	dir *dirmemory.Directory
}

func (m memoryBuildings) AddBuilding(_ context.Context, b directory.Building) error {
	m.dir.AddBuilding(b)
	return nil
}

func main() {
	log := logger.New(getEnv("LOG_LEVEL", "info"))
	port := getEnv("PORT", defaultPort)
	latency := time.Duration(getEnvInt("LATENCY_MS", defaultLatencyMs)) * time.Millisecond

	dir := dirmemory.New()
	if err := seeder.New(memoryBuildings{dir}, dir, log).SeedAll(context.Background()); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Get("/health", handleHealth)
	r.Group(func(r chi.Router) {
		if latency > 0 {
			r.Use(simulateLatency(latency))
		}
		server.New(dir).Register(r)
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("mock unit directory starting", "port", port, "latency", latency)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck // health probe
		"status":  "healthy",
		"service": "unit-directory",
	})
}

func simulateLatency(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
