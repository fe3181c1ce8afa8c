package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/boroughlab/incident-cli/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline once and serve the results over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		result, err := runPipeline(ctx)
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: resultsMux(result),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			// The signal context is already cancelled; draining needs
			// its own deadline.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("run_id", result.RunID),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// resultsMux serves the finished run read-only. The snapshot is static,
// so there is nothing to recompute per request.
func resultsMux(result *pipeline.Result) *http.ServeMux {
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"status": "ok", "run_id": result.RunID})
	})

	mux.HandleFunc("GET /v1/result", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, result)
	})

	mux.HandleFunc("GET /v1/rates", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, result.Rates)
	})

	mux.HandleFunc("GET /v1/monthly", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, result.Monthly)
	})

	mux.HandleFunc("GET /v1/centroids", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, result.Centroids)
	})

	mux.HandleFunc("GET /v1/evaluation", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, result.Evaluation)
	})

	return mux
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
