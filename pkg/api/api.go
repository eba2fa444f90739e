// Package api serves value-chain documents over HTTP.
//
// The server is a thin adapter: every request loads one document from a
// [store.Store], runs a single [editor.Editor] operation on it, and saves the
// result if the graph changed. Requests for the same document are
// serialized; requests for different documents run concurrently.
//
// # Routes
//
//	GET    /healthz
//	GET    /colors
//	GET    /graphs
//	GET    /graphs/{id}
//	PUT    /graphs/{id}
//	DELETE /graphs/{id}
//	POST   /graphs/{id}/clear
//	POST   /graphs/{id}/nodes
//	PATCH  /graphs/{id}/nodes/{nodeID}
//	DELETE /graphs/{id}/nodes/{nodeID}
//	PUT    /graphs/{id}/nodes/{nodeID}/position
//	POST   /graphs/{id}/nodes/{nodeID}/connect/{dir}
//	POST   /graphs/{id}/edges
//	DELETE /graphs/{id}/edges/{edgeID}
//	GET    /graphs/{id}/render.svg
//
// A mutation on a document that does not exist yet starts from an empty
// graph, so the first POST creates the document. Reads of a missing
// document return 404.
//
// Errors are written as {"code": "...", "message": "..."} with the status
// from [errors.HTTPStatus].
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/valuechain/pkg/editor"
	"github.com/matzehuels/valuechain/pkg/observability"
	"github.com/matzehuels/valuechain/pkg/store"
)

// maxBodyBytes bounds request bodies, including imported documents.
const maxBodyBytes = 4 << 20

// Config configures a [Server].
type Config struct {
	// Store holds the documents. Required.
	Store store.Store

	// StrictColor rejects color overrides that do not parse.
	StrictColor bool

	// CORSOrigins enables CORS for the listed origins. Empty disables CORS.
	CORSOrigins []string

	// Middleware runs around every route, after request ids are assigned.
	// The CLI uses it for request logging.
	Middleware []func(http.Handler) http.Handler
}

// Server handles the HTTP API.
type Server struct {
	store       store.Store
	strictColor bool
	origins     []string
	middleware  []func(http.Handler) http.Handler

	mu    sync.Mutex
	locks map[string]*docLock
}

// docLock serializes requests for one document. It is dropped from
// Server.locks once no request holds or waits for it.
type docLock struct {
	mu   sync.Mutex
	refs int
}

// New returns a server backed by cfg.Store.
func New(cfg Config) *Server {
	return &Server{
		store:       cfg.Store,
		strictColor: cfg.StrictColor,
		origins:     cfg.CORSOrigins,
		middleware:  cfg.Middleware,
		locks:       make(map[string]*docLock),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(instrument)
	for _, mw := range s.middleware {
		r.Use(mw)
	}
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/colors", s.handleColors)

	r.Route("/graphs", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Put("/", s.handleImport)
			r.Delete("/", s.handleDelete)
			r.Post("/clear", s.handleClear)
			r.Get("/render.svg", s.handleRender)

			r.Post("/nodes", s.handleAddNode)
			r.Route("/nodes/{nodeID}", func(r chi.Router) {
				r.Patch("/", s.handleUpdateNode)
				r.Delete("/", s.handleRemoveNode)
				r.Put("/position", s.handleMoveNode)
				r.Post("/connect/{dir}", s.handleConnect)
			})

			r.Post("/edges", s.handleAddEdge)
			r.Delete("/edges/{edgeID}", s.handleRemoveEdge)
		})
	})

	return r
}

// lock blocks until the caller is the only request working on document
// id and returns the matching unlock.
func (s *Server) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &docLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

func (s *Server) editorOptions() []editor.Option {
	opts := []editor.Option{editor.WithHistoryLimit(0)}
	if s.strictColor {
		opts = append(opts, editor.WithStrictColor())
	}
	return opts
}

// instrument reports every request to the HTTP hooks.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}
