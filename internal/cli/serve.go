package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	carverrors "github.com/carvekit/carve/pkg/errors"
	"github.com/carvekit/carve/pkg/extract"
	"github.com/carvekit/carve/pkg/output"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr string // listen address
}

// newServeCmd creates the serve command. The server accepts extraction
// jobs over HTTP and returns the run report as JSON. File outputs
// (directory, archive) are written on the server's filesystem when the
// job requests them.
func newServeCmd() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve extraction as a local HTTP API",
		Long: `Serve starts an HTTP server that accepts extraction jobs and responds
with the run report.

Endpoints:
  POST /api/extract   Run a job (request body: job JSON, response: report JSON)
  GET  /api/health    Liveness check

Example:
  carve serve --addr :8384
  curl -X POST localhost:8384/api/extract -d '{"entries":["main.py"],"roots":["."]}'`,
		RunE: func(c *cobra.Command, args []string) error {
			return runServe(c.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8384", "listen address")

	return cmd
}

// runServe starts the HTTP server and blocks until ctx is cancelled.
func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/api/health", handleHealth)
	r.Post("/api/extract", handleExtract(ctx))

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", opts.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// handleHealth reports server liveness.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// apiError is the JSON error envelope returned on failed requests.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleExtract runs a job posted as JSON and responds with the report.
// The server context bounds every run so in-flight jobs stop on shutdown.
func handleExtract(serverCtx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		logger := loggerFromContext(serverCtx)

		var job extract.Job
		if err := json.NewDecoder(req.Body).Decode(&job); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{
				Code:    string(carverrors.ErrCodeInvalidJob),
				Message: "invalid job JSON: " + err.Error(),
			})
			return
		}

		ctx, cancel := mergeDone(req.Context(), serverCtx)
		defer cancel()

		res, err := extract.NewResolver(&job, languages, extract.Options{
			Logf: func(msg string, args ...any) { logger.Debugf(msg, args...) },
		}).Run(ctx)
		if err != nil {
			writeJSON(w, statusFor(err), apiError{
				Code:    string(carverrors.GetCode(err)),
				Message: carverrors.UserMessage(err),
			})
			return
		}

		report, err := output.Materialize(res, &job, output.Options{
			OutputDir:   job.OutputDir,
			ArchivePath: job.ArchivePath,
			Report:      job.Report,
			Logf:        func(msg string, args ...any) { logger.Debugf(msg, args...) },
		})
		if err != nil {
			writeJSON(w, statusFor(err), apiError{
				Code:    string(carverrors.GetCode(err)),
				Message: carverrors.UserMessage(err),
			})
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch carverrors.GetCode(err) {
	case carverrors.ErrCodeInvalidJob, carverrors.ErrCodeInvalidRoot,
		carverrors.ErrCodeInvalidPattern, carverrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case carverrors.ErrCodeNotFound, carverrors.ErrCodeEntryNotFound,
		carverrors.ErrCodeRootNotFound:
		return http.StatusNotFound
	case carverrors.ErrCodeConflict, carverrors.ErrCodeDestination:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// mergeDone returns a context derived from primary that is also cancelled
// when secondary is done.
func mergeDone(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(primary)
	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
