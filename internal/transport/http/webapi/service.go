package webapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"glamai-server-go/internal/domain/auth"
	"glamai-server-go/internal/domain/history"
	"glamai-server-go/internal/platform/config"
	platformerrors "glamai-server-go/internal/platform/errors"
	"glamai-server-go/internal/platform/logging"
	httptransport "glamai-server-go/internal/transport/http"
)

// Service exposes account and history endpoints.
type Service struct {
	config   *config.Config
	logger   *logging.Logger
	backend  *auth.Backend
	sessions *auth.Store
	history  *history.Store
}

// NewService wires the account endpoints. The history store is
// optional and its endpoint is only registered when one is given.
func NewService(
	cfg *config.Config,
	logger *logging.Logger,
	backend *auth.Backend,
	sessions *auth.Store,
	historyStore *history.Store,
) (*Service, error) {
	if cfg == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "config is required")
	}
	if logger == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "logger is required")
	}
	if backend == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "auth backend is required")
	}
	if sessions == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "webapi.new", "session store is required")
	}

	return &Service{
		config:   cfg,
		logger:   logger,
		backend:  backend,
		sessions: sessions,
		history:  historyStore,
	}, nil
}

// Register mounts the public routes on api and the session-gated
// routes on secured.
func (s *Service) Register(ctx context.Context, api, secured *gin.RouterGroup) error {
	api.GET("/health", s.handleHealth)
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	if secured != nil {
		secured.POST("/auth/logout", s.handleLogout)
		secured.GET("/auth/me", s.handleMe)
		if s.history != nil {
			secured.GET("/history", s.handleHistory)
		}
	}

	s.logger.InfoTag("HTTP", "webapi routes registered")
	return nil
}

func (s *Service) handleHealth(c *gin.Context) {
	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"status": "ok"}, "")
}

func (s *Service) handleRegister(c *gin.Context) {
	var reg auth.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid registration payload", nil)
		return
	}

	user, err := s.backend.Register(c.Request.Context(), reg)
	if err != nil {
		httptransport.RespondFromError(c, err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, user, "account created")
}

func (s *Service) handleLogin(c *gin.Context) {
	var creds auth.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		httptransport.RespondError(c, http.StatusBadRequest, "invalid login payload", nil)
		return
	}

	result, err := s.backend.Login(c.Request.Context(), creds)
	if err != nil {
		httptransport.RespondFromError(c, err)
		return
	}

	s.sessions.Set(result.Token, result.Record)
	httptransport.RespondSuccess(c, http.StatusOK, result, "signed in")
}

func (s *Service) handleLogout(c *gin.Context) {
	s.sessions.Clear()
	httptransport.RespondSuccess(c, http.StatusOK, nil, "signed out")
}

func (s *Service) handleMe(c *gin.Context) {
	_, user := s.sessions.Current()
	if user == nil {
		httptransport.RespondError(c, http.StatusUnauthorized, "no active session", nil)
		return
	}
	httptransport.RespondSuccess(c, http.StatusOK, user, "")
}

func (s *Service) handleHistory(c *gin.Context) {
	userID := httptransport.UserID(c)
	if userID == "" {
		httptransport.RespondError(c, http.StatusUnauthorized, "no active session", nil)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	entries, err := s.history.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		httptransport.RespondFromError(c, err)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, entries, "")
}
