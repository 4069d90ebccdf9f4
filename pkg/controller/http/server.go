package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/controller/graphql"
	"github.com/secmon-lab/vigia/pkg/domain/model"
	"github.com/secmon-lab/vigia/pkg/usecase"
	"github.com/secmon-lab/vigia/pkg/utils/apperr"
)

// maxBodySize bounds request bodies; the largest payload is an analysis form
const maxBodySize = 1 << 20

// Server represents the HTTP server
type Server struct {
	*http.Server
	router chi.Router
}

// Option configures the HTTP server
type Option func(*options)

type options struct {
	corsOrigins []string
}

// WithCORSOrigins allows browser requests from the given origins
func WithCORSOrigins(origins ...string) Option {
	return func(o *options) {
		o.corsOrigins = append(o.corsOrigins, origins...)
	}
}

// NewServer creates a new HTTP server
func NewServer(ctx context.Context, addr string, lifecycleUC *usecase.Lifecycle, referenceUC *usecase.Reference, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	router := chi.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	if len(o.corsOrigins) > 0 {
		router.Use(CORSMiddleware(o.corsOrigins))
	}

	reports := &reportHandler{lifecycle: lifecycleUC}
	admin := &adminHandler{reference: referenceUC}

	router.Get("/health", handleHealth)

	// GraphQL endpoint serving the same operations as the REST routes
	router.Handle("/graphql", createGraphQLHandler(lifecycleUC, referenceUC))

	router.Route("/api", func(r chi.Router) {
		r.Get("/intake/options", admin.intakeOptions)

		r.Route("/reports", func(r chi.Router) {
			r.Post("/", reports.create)
			r.Get("/", reports.qualityQueue)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", reports.get)
				r.Post("/dispatch", reports.dispatch)
				r.Post("/priority", reports.requestPriority)
				r.Post("/close", reports.closeWithoutAction)
				r.Put("/analysis", reports.saveDraft)
				r.Post("/analysis/complete", reports.completeAnalysis)
			})
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/top-sectors", reports.topSectors)
			r.Get("/indicators", reports.indicators)
		})

		r.Get("/sectors/{sector}/reports", reports.sectorQueue)

		r.Route("/login", func(r chi.Router) {
			r.Get("/users", admin.loginUsers)
			r.Post("/{userID}", admin.selectUser)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/sectors", admin.listSectors)
			r.Post("/sectors", admin.createSector)
			r.Post("/sectors/{id}/toggle", admin.toggleSector)

			r.Get("/users", admin.listUsers)
			r.Post("/users", admin.createUser)
			r.Post("/users/{id}/toggle", admin.toggleUser)

			r.Get("/roles", admin.listRoles)
			r.Post("/roles", admin.createRole)
		})
	})

	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: router,
	}
}

// createGraphQLHandler creates a GraphQL handler over the use cases
func createGraphQLHandler(lifecycleUC *usecase.Lifecycle, referenceUC *usecase.Reference) http.Handler {
	resolver := graphql.NewResolver(lifecycleUC, referenceUC)
	srv := handler.New(graphql.NewExecutableSchema(resolver))
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	return srv
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "vigia",
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// decodeJSON reads the request body into v. Malformed bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagValidation))
	}
	return nil
}

// errorStatus maps the error taxonomy onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case goerr.HasTag(err, model.ErrTagValidation):
		return http.StatusBadRequest
	case goerr.HasTag(err, model.ErrTagNotFound):
		return http.StatusNotFound
	case goerr.HasTag(err, model.ErrTagInvalidTransition),
		goerr.HasTag(err, model.ErrTagAlreadyRequested):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError logs err and writes it as a JSON error response
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apperr.Handle(r.Context(), err)

	status := errorStatus(err)
	resp := errorResponse{Error: "internal server error"}
	if status != http.StatusInternalServerError {
		resp.Error = err.Error()
		if field, ok := goerr.Values(err)["field"].(string); ok {
			resp.Field = field
		}
	}

	writeJSON(w, r, status, resp)
}
