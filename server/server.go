package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server wires the document store, blob store, and cache behind the HTTP API
type Server struct {
	config   *Config
	store    Store
	blobs    BlobStore
	cache    Cache
	uploader *Uploader
	log      *logrus.Logger
	handler  http.Handler
}

// NewServer builds a server from configuration, connecting to the document
// database, S3, and (when configured) Redis. Client handles are created once
// here and shared by every request for the process lifetime.
func NewServer(ctx context.Context, config *Config) (*Server, error) {
	log := newLogger(config)

	store, err := NewMongoStore(ctx, config.Mongo.URI, config.Mongo.Database, config.Mongo.PasswordSecretARN, config.Mongo.CACertFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create document store: %v", err)
	}

	blobs, err := NewS3BlobStore(config.S3.Region, config.S3.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob store: %v", err)
	}

	var cache Cache = &NoOpCache{}
	if config.Redis.Address != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		redisCache, err := NewRedisCache(pingCtx, config.Redis.Address, config.Redis.TTL)
		if err != nil {
			log.WithError(err).Warn("failed to connect to Redis, continuing without cache")
		} else {
			cache = redisCache
			log.WithField("address", config.Redis.Address).Info("connected to Redis cache")
		}
	}

	return newServerWith(config, store, blobs, cache, log), nil
}

// newServerWith assembles the server from already-built collaborators
func newServerWith(config *Config, store Store, blobs BlobStore, cache Cache, log *logrus.Logger) *Server {
	s := &Server{
		config:   config,
		store:    store,
		blobs:    blobs,
		cache:    cache,
		uploader: NewUploader(store, blobs, cache, log),
		log:      log,
	}
	// CORS wraps outside the router so preflight requests are answered
	// even when no route matches the OPTIONS method.
	s.handler = s.corsMiddleware(s.routes())
	return s
}

func newLogger(config *Config) *logrus.Logger {
	log := logrus.New()
	if level, err := logrus.ParseLevel(config.Log.Level); err == nil {
		log.SetLevel(level)
	}
	if config.Log.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/delete-instruction", s.handleDeleteInstruction).Methods(http.MethodDelete)
	r.HandleFunc("/all-instructions", s.handleAllInstructions).Methods(http.MethodGet)
	r.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)

	r.HandleFunc("/events", s.handleCreateEvent).Methods(http.MethodPost)
	r.HandleFunc("/events", s.handleStudioEvents).Methods(http.MethodGet)
	r.HandleFunc("/all-events", s.handleAllEvents).Methods(http.MethodGet)
	r.HandleFunc("/delete-event", s.handleDeleteEvent).Methods(http.MethodDelete)

	r.HandleFunc("/admins", s.handleCreateAdmin).Methods(http.MethodPost)
	r.HandleFunc("/get-admins", s.handleGetAdmins).Methods(http.MethodGet)
	r.HandleFunc("/get-admins-entry", s.handleGetAdmins).Methods(http.MethodGet)
	r.HandleFunc("/admins/{adminId}", s.handleDeleteAdmin).Methods(http.MethodDelete)

	r.HandleFunc("/studios", s.handleCreateStudio).Methods(http.MethodPost)
	r.HandleFunc("/get-studios", s.handleGetStudios).Methods(http.MethodGet)
	r.HandleFunc("/get-studios-user", s.handleGetStudios).Methods(http.MethodGet)
	r.HandleFunc("/studios/{studioName}", s.handleDeleteStudio).Methods(http.MethodDelete)

	return r
}

// Run starts the HTTP server and blocks
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.config.Server.HTTPPort)
	s.log.WithField("addr", addr).Info("HTTP server listening")

	srv := &http.Server{Addr: addr, Handler: s.handler}
	return srv.ListenAndServe()
}

// Handler exposes the routed handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Stop releases the external client handles
func (s *Server) Stop(ctx context.Context) {
	if closer, ok := s.store.(interface{ Close(context.Context) error }); ok {
		if err := closer.Close(ctx); err != nil {
			s.log.WithError(err).Warn("failed to close document store")
		}
	}
	if closer, ok := s.cache.(io.Closer); ok {
		closer.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		httpRequestsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()

		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
