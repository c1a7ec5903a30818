package handler

import (
	"context"
	"errors"

	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/apiserver/middleware"
	"github.com/amoylab/catalog/internal/auth"
	"github.com/amoylab/catalog/internal/catalog"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/dto"
	"github.com/amoylab/catalog/internal/i18n"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

// Auth serves registration, login and token rotation
type Auth struct {
	svc    *catalog.Service
	tokens *auth.Tokens
	logger *zap.Logger
}

// NewAuth creates a new authentication handler
func NewAuth(svc *catalog.Service, tokens *auth.Tokens, logger *zap.Logger) *Auth {
	return &Auth{
		svc:    svc,
		tokens: tokens,
		logger: logger.Named("handler.auth"),
	}
}

func (h *Auth) issue(ctx context.Context, user *database.User) (*dto.TokenResponse, error) {
	sub := auth.Subject{UserID: user.ID, Username: user.Username, BusinessID: user.BusinessID}
	if role, ok := user.RoleName(); ok {
		sub.Role = role.String()
	}
	pair, err := h.tokens.Issue(ctx, sub)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    auth.TokenTypeBearer,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}, nil
}

// HandleRegister creates a business and its first admin, and logs them in
func (h *Auth) HandleRegister(c *gin.Context) {
	var req dto.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	tokens, err := h.issue(c.Request.Context(), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Created(i18n.SuccessRegistered).
		WithPayload(dto.AuthResponse{TokenResponse: *tokens, User: toUserInfo(user)}).
		Send(c)
}

// HandleLogin handles user login
func (h *Auth) HandleLogin(c *gin.Context) {
	var req dto.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	user, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, cnst.ErrInvalidCredentials) {
			h.logger.Info("login failed", zap.String("username", req.Username), zap.String("client_ip", c.ClientIP()))
		}
		_ = c.Error(err)
		return
	}
	tokens, err := h.issue(c.Request.Context(), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessLogin).
		WithPayload(dto.AuthResponse{TokenResponse: *tokens, User: toUserInfo(user)}).
		Send(c)
}

// HandleRefresh exchanges a refresh token for a new token pair
func (h *Auth) HandleRefresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	userID, err := h.tokens.Redeem(c.Request.Context(), req.RefreshToken)
	if err != nil {
		_ = c.Error(err)
		return
	}
	user, err := h.svc.LoadUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	tokens, err := h.issue(c.Request.Context(), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessTokenRefreshed).WithPayload(tokens).Send(c)
}

// HandleLogout revokes a refresh token
func (h *Auth) HandleLogout(c *gin.Context) {
	var req dto.RefreshRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.tokens.Revoke(c.Request.Context(), req.RefreshToken); err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessLogout).Send(c)
}

// HandleMe returns the caller
func (h *Auth) HandleMe(c *gin.Context) {
	user := middleware.UserFrom(c)
	if user == nil {
		_ = c.Error(cnst.ErrAuthenticationRequired)
		return
	}
	i18n.Success(i18n.SuccessUserInfo).WithPayload(toUserInfo(user)).Send(c)
}

// HandleRoles lists the global roles
func (h *Auth) HandleRoles(c *gin.Context) {
	roles, err := h.svc.Roles(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]dto.RoleInfo, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleInfo(r))
	}
	i18n.Success(i18n.SuccessRoleList).WithPayload(out).Send(c)
}
