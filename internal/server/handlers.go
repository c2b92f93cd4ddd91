package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weks-labs/rewards-bot/internal/auth"
	"github.com/weks-labs/rewards-bot/internal/domain"
	apperrors "github.com/weks-labs/rewards-bot/internal/errors"
	"github.com/weks-labs/rewards-bot/internal/health"
)

// Error codes returned to the mini app.
const (
	errInvalidInitData = "INVALID_INITDATA"
	errNothingToClaim  = "NOTHING_TO_CLAIM"
	errRateLimited     = "RATE_LIMITED"
	errServer          = "SERVER_ERROR"
)

type claimRequest struct {
	InitData string `json:"initData"`
	Correct  int64  `json:"correct"`
}

type balanceRequest struct {
	InitData string `json:"initData"`
}

type claimResponse struct {
	OK bool `json:"ok"`
	*domain.ClaimResult
}

type balanceResponse struct {
	OK       bool   `json:"ok"`
	Name     string `json:"name"`
	Balance  int64  `json:"balance"`
	Today    int64  `json:"today"`
	DailyCap int64  `json:"dailyCap"`
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (s *Server) handleClaim(c *gin.Context) {
	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: errInvalidInitData})
		return
	}

	identity, ok := s.authenticate(c, req.InitData)
	if !ok {
		return
	}

	if !s.allow(c, identity.ID) {
		return
	}

	result, err := s.opts.Processor.ProcessClaim(c.Request.Context(), identity, req.Correct)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, claimResponse{OK: true, ClaimResult: result})
}

func (s *Server) handleBalance(c *gin.Context) {
	var req balanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: errInvalidInitData})
		return
	}

	identity, ok := s.authenticate(c, req.InitData)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	user, err := s.opts.Processor.EnsureUser(ctx, identity)
	if err != nil {
		s.writeError(c, err)
		return
	}

	balance, err := s.opts.Processor.Balance(ctx, identity.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	today, err := s.opts.Processor.TodayCount(ctx, identity.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, balanceResponse{
		OK:       true,
		Name:     user.Name,
		Balance:  balance,
		Today:    today,
		DailyCap: s.opts.Processor.DailyCap(),
	})
}

func (s *Server) handleHealthz(c *gin.Context) {
	results := s.opts.Health.Check(c.Request.Context())

	status := http.StatusOK
	if !health.Healthy(results) {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, results)
}

// authenticate verifies the signed init data and writes the 401 response on
// failure.
func (s *Server) authenticate(c *gin.Context, initData string) (*domain.Identity, bool) {
	identity, err := auth.Verify(initData, s.opts.BotToken)
	if err != nil {
		if errors.Is(err, auth.ErrMalformedInitData) || errors.Is(err, auth.ErrInvalidSignature) {
			c.JSON(http.StatusUnauthorized, errorResponse{Error: errInvalidInitData})
			return nil, false
		}

		s.writeError(c, err)
		return nil, false
	}

	return identity, true
}

// allow applies the per-user rate limit and writes the 429 response when the
// quota is spent.
func (s *Server) allow(c *gin.Context, userID string) bool {
	if !s.opts.RateLimit.Enabled || s.opts.Limiter == nil {
		return true
	}

	result, err := s.opts.Limiter.Check(c.Request.Context(), userID, s.opts.RateLimit.Limit, s.opts.RateLimit.Window)
	if err != nil {
		// A broken limiter must not take claims down with it.
		s.opts.Log.Warn("rate limiter unavailable, allowing request", "error", err)
		return true
	}

	if !result.Allowed {
		c.JSON(http.StatusTooManyRequests, errorResponse{Error: errRateLimited})
		return false
	}

	return true
}

func (s *Server) writeError(c *gin.Context, err error) {
	if s.opts.ErrHandler != nil {
		s.opts.ErrHandler.Handle(c.Request.Context(), err)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Code == apperrors.CodeNothingToClaim {
		c.JSON(http.StatusBadRequest, errorResponse{Error: errNothingToClaim})
		return
	}

	c.JSON(http.StatusInternalServerError, errorResponse{Error: errServer})
}
