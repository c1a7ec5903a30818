package handler

import (
	"github.com/amoylab/catalog/internal/apiserver/middleware"
	"github.com/amoylab/catalog/internal/auth"
	"github.com/amoylab/catalog/internal/catalog"
	"github.com/amoylab/catalog/internal/common/dto"
	"github.com/amoylab/catalog/internal/i18n"

	"github.com/gin-gonic/gin"
)

// User manages the users and the name of the caller's business
type User struct {
	svc    *catalog.Service
	tokens *auth.Tokens
}

func NewUser(svc *catalog.Service, tokens *auth.Tokens) *User {
	return &User{svc: svc, tokens: tokens}
}

func (h *User) HandleList(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]dto.UserInfo, 0, len(users))
	for _, u := range users {
		out = append(out, toUserInfo(u))
	}
	i18n.Success(i18n.SuccessUserList).WithPayload(out).Send(c)
}

func (h *User) HandleCreate(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.svc.CreateUser(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Created(i18n.SuccessUserCreated).WithPayload(toUserInfo(u)).Send(c)
}

func (h *User) HandleGet(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.svc.GetUser(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessUserInfo).WithPayload(toUserInfo(u)).Send(c)
}

// HandleUpdate changes a user. Disabling a user also ends their sessions.
func (h *User) HandleUpdate(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req dto.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	u, err := h.svc.UpdateUser(c.Request.Context(), middleware.ActorFrom(c), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !u.IsActive {
		_ = h.tokens.RevokeUser(c.Request.Context(), u.ID)
	}
	i18n.Success(i18n.SuccessUserUpdated).WithPayload(toUserInfo(u)).Send(c)
}

func (h *User) HandleDelete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	_ = h.tokens.RevokeUser(c.Request.Context(), id)
	i18n.Success(i18n.SuccessUserDeleted).With("id", id).Send(c)
}

// HandleRenameBusiness renames the caller's business
func (h *User) HandleRenameBusiness(c *gin.Context) {
	var req dto.UpdateBusinessRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	b, err := h.svc.RenameBusiness(c.Request.Context(), middleware.ActorFrom(c), req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessBusinessUpdated).WithPayload(toBusinessInfo(b)).Send(c)
}
