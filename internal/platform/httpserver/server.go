package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	votingcore "agora/contexts/governance/voting-core"
	votingerrors "agora/contexts/governance/voting-core/domain/errors"
	votinghttp "agora/contexts/governance/voting-core/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "agora/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	voting votingcore.Module
	server *http.Server
}

func New(
	voting votingcore.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		voting: voting,
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.server.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /v1/articles", s.handleRegisterArticle)
	s.mux.HandleFunc("GET /v1/articles/urgent", s.handleUrgentArticles)
	s.mux.HandleFunc("GET /v1/articles/{article_id}", s.handleGetArticle)
	s.mux.HandleFunc("POST /v1/articles/{article_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/articles/{article_id}/votes/mine", s.handleMyVote)
	s.mux.HandleFunc("GET /v1/articles/{article_id}/tallies", s.handleTallies)
	s.mux.HandleFunc("GET /v1/articles/{article_id}/deadline", s.handleEvaluateLifecycle)
	s.mux.HandleFunc("POST /v1/articles/{article_id}/lifecycle/evaluate", s.handleEvaluateLifecycle)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegisterArticle(w http.ResponseWriter, r *http.Request) {
	authorID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if authorID == "" {
		writeVotingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req votinghttp.RegisterArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.voting.Handler.RegisterArticleHandler(r.Context(), authorID, req)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.GetArticleHandler(r.Context(), r.PathValue("article_id"))
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeVotingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req votinghttp.CastVoteRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeVotingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON without a passphrase")
		return
	}

	resp, err := s.voting.Handler.CastVoteHandler(r.Context(), r.PathValue("article_id"), userID, req)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMyVote(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeVotingError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	kind := r.URL.Query().Get("kind")
	resp, err := s.voting.Handler.MyVoteHandler(r.Context(), r.PathValue("article_id"), userID, kind)
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTallies(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.TalliesHandler(r.Context(), r.PathValue("article_id"))
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvaluateLifecycle(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.EvaluateLifecycleHandler(r.Context(), r.PathValue("article_id"))
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUrgentArticles(w http.ResponseWriter, r *http.Request) {
	resp, err := s.voting.Handler.UrgentArticlesHandler(r.Context())
	if err != nil {
		writeVotingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeVotingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, votingerrors.ErrInvalidVoteInput),
		errors.Is(err, votingerrors.ErrInvalidArticleInput):
		writeVotingError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, votingerrors.ErrArticleNotFound):
		writeVotingError(w, http.StatusNotFound, "article_not_found", err.Error())
	case errors.Is(err, votingerrors.ErrVoteNotFound):
		writeVotingError(w, http.StatusNotFound, "vote_not_found", err.Error())
	case errors.Is(err, votingerrors.ErrArticleExists):
		writeVotingError(w, http.StatusConflict, "article_exists", err.Error())
	case errors.Is(err, votingerrors.ErrPhaseClosed):
		writeVotingError(w, http.StatusConflict, "phase_closed", err.Error())
	case errors.Is(err, votingerrors.ErrVoteConflict):
		writeVotingError(w, http.StatusConflict, "vote_conflict", err.Error())
	case errors.Is(err, votingerrors.ErrNumberingConflict):
		writeVotingError(w, http.StatusConflict, "numbering_conflict", err.Error())
	case errors.Is(err, votingerrors.ErrUnverifiedPriorVote):
		writeVotingError(w, http.StatusUnprocessableEntity, "unverified_prior_vote", err.Error())
	case errors.Is(err, votingerrors.ErrStorageFailure):
		writeVotingError(w, http.StatusServiceUnavailable, "storage_failure", "storage temporarily unavailable")
	default:
		writeVotingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeVotingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
