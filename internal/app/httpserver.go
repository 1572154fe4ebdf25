package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Spok95/telegram-events-bot/internal/metrics"
	"go.uber.org/zap"
)

// Pinger: то, что проверяет /healthz (*sql.DB, *sqlx.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HTTPServer struct {
	srv *http.Server
}

// HealthHandler: /healthz пингует БД, /metrics отдаёт prometheus.
func HealthHandler(db Pinger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		metrics.ObserveDBPing(time.Since(t0))
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// StartHTTP поднимает сервер и гасит его при отмене ctx.
func StartHTTP(ctx context.Context, addr string, db Pinger, log *zap.Logger) *HTTPServer {
	srv := &http.Server{Addr: addr, Handler: HealthHandler(db), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	return &HTTPServer{srv: srv}
}
