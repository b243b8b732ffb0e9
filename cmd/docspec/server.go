package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/docspec/pkg/codec"
	"github.com/Sumatoshi-tech/docspec/pkg/grammar"
	"github.com/Sumatoshi-tech/docspec/pkg/observability"
	"github.com/Sumatoshi-tech/docspec/pkg/schema"
	"github.com/Sumatoshi-tech/docspec/pkg/sentence"
)

const shutdownTimeout = 10 * time.Second

// ReconstructResponse is the body of a successful POST /api/reconstruct.
type ReconstructResponse struct {
	Results   []sentence.Result `json:"results"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error      string              `json:"error"`
	Violations []schema.FieldError `json:"violations,omitempty"`
}

func serverCmd(state *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve typed tree reconstruction over HTTP",
		Long: `Start an HTTP server exposing:
  POST /api/reconstruct   sentence documents in, typed trees out (?format=sexpr for text)
  GET  /api/symbols       the grammar catalog
  GET  /metrics           Prometheus metrics
  GET  /healthz           liveness
  GET  /readyz            readiness (grammar catalog consistency)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			startErr := state.start(observability.ModeServe, cmd.ErrOrStderr())
			if startErr != nil {
				return startErr
			}

			defer state.stop()

			if cmd.Flags().Changed("host") {
				state.cfg.Server.Host = host
			}

			if cmd.Flags().Changed("port") {
				state.cfg.Server.Port = port
			}

			return runServer(cmd.Context(), state)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "interface to listen on (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")

	return cmd
}

func runServer(ctx context.Context, state *app) error {
	serverCfg := state.cfg.Server
	logger := state.logger()

	api := &apiServer{rec: state.reconstructor(), logger: logger, workers: state.cfg.Batch.Workers}
	handler := newServerMux(api, state.providers.Tracer, logger, state.providers.MetricsHandler)

	listener, err := net.Listen("tcp", net.JoinHostPort(serverCfg.Host, strconv.Itoa(serverCfg.Port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  serverCfg.ReadTimeout,
		WriteTimeout: serverCfg.WriteTimeout,
		IdleTimeout:  serverCfg.IdleTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	logger.InfoContext(ctx, "docspec server starting", "addr", "http://"+listener.Addr().String())

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		serveErr := server.Serve(listener)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", serveErr)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), shutdownTimeout)
		defer cancel()

		logger.InfoContext(shutdownCtx, "docspec server stopping")

		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// newServerMux creates the HTTP routes wrapped in tracing middleware. A nil
// metricsHandler leaves /metrics unrouted.
func newServerMux(api *apiServer, tracer trace.Tracer, logger *slog.Logger, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/reconstruct", api.handleReconstruct)
	mux.HandleFunc("GET /api/symbols", handleSymbols)
	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(catalogReady(grammar.Default())))

	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	return observability.HTTPMiddleware(tracer, logger, mux)
}

type apiServer struct {
	rec     *sentence.Reconstructor
	logger  *slog.Logger
	workers int
}

func (api *apiServer) handleReconstruct(responseWriter http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	body, readErr := io.ReadAll(http.MaxBytesReader(responseWriter, request.Body, codec.MaxInputSize))
	if readErr != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(readErr, &tooLarge) {
			api.writeJSON(ctx, responseWriter, http.StatusRequestEntityTooLarge, ErrorResponse{Error: readErr.Error()})

			return
		}

		api.writeJSON(ctx, responseWriter, http.StatusBadRequest, ErrorResponse{Error: readErr.Error()})

		return
	}

	jsonBody, convertErr := codec.ToJSON(body, requestSyntax(request))
	if convertErr != nil {
		api.writeJSON(ctx, responseWriter, http.StatusBadRequest, ErrorResponse{Error: convertErr.Error()})

		return
	}

	validateErr := schema.Validate(jsonBody)
	if validateErr != nil {
		resp := ErrorResponse{Error: validateErr.Error()}

		var verr *schema.ValidationError
		if errors.As(validateErr, &verr) {
			resp.Violations = verr.Errors
		}

		api.writeJSON(ctx, responseWriter, http.StatusBadRequest, resp)

		return
	}

	docs, decodeErr := codec.DecodeDocuments(jsonBody, codec.SyntaxJSON)
	if decodeErr != nil {
		api.writeJSON(ctx, responseWriter, http.StatusBadRequest, ErrorResponse{Error: decodeErr.Error()})

		return
	}

	results, stats, batchErr := api.rec.Batch(ctx, docs, sentence.BatchOptions{Workers: api.workers, Policy: sentence.PolicySkip})
	if batchErr != nil {
		api.writeJSON(ctx, responseWriter, http.StatusServiceUnavailable, ErrorResponse{Error: batchErr.Error()})

		return
	}

	if request.URL.Query().Get("format") == string(codec.FormatSExpr) {
		responseWriter.Header().Set("Content-Type", "text/plain; charset=utf-8")

		encodeErr := codec.NewEncoder(responseWriter, codec.FormatSExpr, false).Encode(results)
		if encodeErr != nil {
			api.logger.ErrorContext(ctx, "failed to write response", "error", encodeErr)
		}

		return
	}

	api.writeJSON(ctx, responseWriter, http.StatusOK, ReconstructResponse{
		Results:   results,
		Succeeded: stats.Succeeded,
		Failed:    stats.Failed,
	})
}

func requestSyntax(request *http.Request) codec.Syntax {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if err != nil {
		return codec.SyntaxJSON
	}

	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return codec.SyntaxYAML
	default:
		return codec.SyntaxJSON
	}
}

func handleSymbols(responseWriter http.ResponseWriter, request *http.Request) {
	rows := catalogRows(grammar.Default(), false, false)

	responseWriter.Header().Set("Content-Type", "application/json")

	encodeErr := json.NewEncoder(responseWriter).Encode(rows)
	if encodeErr != nil {
		slog.Default().ErrorContext(request.Context(), "failed to encode JSON response", "error", encodeErr)
	}
}

// catalogReady fails while catalog has labels in both namespaces.
func catalogReady(catalog *grammar.Catalog) observability.ReadyCheck {
	return func(_ context.Context) error {
		collisions := catalog.Collisions()
		if len(collisions) > 0 {
			return fmt.Errorf("%w: %s", ErrCatalogCollision, strings.Join(collisions, ", "))
		}

		return nil
	}
}

// writeJSON encodes value as JSON with status.
func (api *apiServer) writeJSON(ctx context.Context, responseWriter http.ResponseWriter, status int, value any) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(status)

	encodeErr := json.NewEncoder(responseWriter).Encode(value)
	if encodeErr != nil {
		api.logger.ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}
