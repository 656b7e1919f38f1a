package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/casetrace/evidence-analyzer/internal/auth"
	"github.com/casetrace/evidence-analyzer/internal/contradiction"
	"github.com/casetrace/evidence-analyzer/internal/embeddings"
	"github.com/casetrace/evidence-analyzer/internal/nli"
	"github.com/casetrace/evidence-analyzer/internal/storage"
)

type Server struct {
	router *chi.Mux

	authService auth.Service

	caseRepo          storage.CaseRepository
	documentRepo      storage.DocumentRepository
	chunkRepo         storage.ChunkRepository
	contradictionRepo storage.ContradictionRepository
	custodyRepo       storage.CustodyRepository

	embedder *embeddings.CachedClient
	detector *contradiction.Detector
}

// ServerConfig holds server dependencies and credentials
type ServerConfig struct {
	DB              *sql.DB
	JWTSecret       string
	OpenRouterKey   string
	AnthropicAPIKey string
}

func NewServer(cfg ServerConfig) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authRepo := auth.NewPostgresRepository(cfg.DB)
	authService := auth.NewJWTService(auth.Config{SecretKey: cfg.JWTSecret}, authRepo)

	// The Claude classifier only participates when a detection request
	// enables secondary confirmation; without a key the deterministic
	// heuristic handles that path too.
	var classifier nli.Classifier
	if cfg.AnthropicAPIKey != "" {
		classifier = nli.NewClaudeClassifier(nli.ClaudeConfig{APIKey: cfg.AnthropicAPIKey})
	}

	var embedder *embeddings.CachedClient
	if cfg.OpenRouterKey != "" {
		embedder = embeddings.NewCachedClient(embeddings.NewClient(cfg.OpenRouterKey), nil)
	}

	s := &Server{
		router:            r,
		authService:       authService,
		caseRepo:          storage.NewPostgresCaseRepository(cfg.DB),
		documentRepo:      storage.NewPostgresDocumentRepository(cfg.DB),
		chunkRepo:         storage.NewPostgresChunkRepository(cfg.DB),
		contradictionRepo: storage.NewPostgresContradictionRepository(cfg.DB),
		custodyRepo:       storage.NewPostgresCustodyRepository(cfg.DB),
		embedder:          embedder,
		detector:          contradiction.NewDetector(classifier),
	}
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API v1
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.authService))

			r.Route("/cases", func(r chi.Router) {
				investigator := auth.RequireRole(auth.RoleInvestigator)

				r.Get("/", s.handleListCases)
				r.Post("/", s.handleCreateCase)
				r.Get("/{caseID}", s.handleGetCase)
				r.Put("/{caseID}", s.handleUpdateCase)
				r.With(investigator).Delete("/{caseID}", s.handleDeleteCase)

				// Evidence. Reviewers read, investigators ingest.
				r.With(investigator).Post("/{caseID}/documents", s.handleUpload)
				r.Get("/{caseID}/documents", s.handleListDocuments)
				r.Get("/{caseID}/chunks", s.handleListChunks)
				r.Post("/{caseID}/chunks/similar", s.handleFindSimilarChunks)
				r.Get("/{caseID}/custody", s.handleGetCustodyLog)

				// Detection
				r.With(investigator).Post("/{caseID}/detect", s.handleDetect)
				r.Get("/{caseID}/contradictions", s.handleGetContradictions)
				r.Post("/{caseID}/verify-determinism", s.handleVerifyDeterminism)
			})
		})
	})
}

func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helper to send JSON responses
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
