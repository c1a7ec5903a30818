package handler

import (
	"github.com/amoylab/catalog/internal/apiserver/middleware"
	"github.com/amoylab/catalog/internal/catalog"
	"github.com/amoylab/catalog/internal/common/dto"
	"github.com/amoylab/catalog/internal/i18n"

	"github.com/gin-gonic/gin"
)

type Chat struct {
	svc *catalog.Service
}

func NewChat(svc *catalog.Service) *Chat {
	return &Chat{svc: svc}
}

// HandleRecord stores one exchange in the caller's history
func (h *Chat) HandleRecord(c *gin.Context) {
	var req dto.ChatRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	entry, err := h.svc.RecordChat(c.Request.Context(), middleware.ActorFrom(c), req.UserMessage, req.AIResponse)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Created(i18n.SuccessChatRecorded).WithPayload(toChatEntry(entry)).Send(c)
}

// HandleHistory returns the caller's exchanges, newest first
func (h *Chat) HandleHistory(c *gin.Context) {
	var q dto.PageQuery
	if err := bindQuery(c, &q); err != nil {
		_ = c.Error(err)
		return
	}
	page, err := h.svc.ChatHistory(c.Request.Context(), middleware.ActorFrom(c), q.Page, q.PageSize)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessChatHistory).WithPayload(toPage(page, toChatEntry)).Send(c)
}
