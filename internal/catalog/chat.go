package catalog

import (
	"context"
	"strings"

	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/errorx"
	"github.com/amoylab/catalog/internal/identity"
)

// RecordChat stores one exchange in the actor's history. The content is not interpreted.
func (s *Service) RecordChat(ctx context.Context, actor *identity.Actor, userMessage, aiResponse string) (entry *database.ChatHistory, err error) {
	sc := s.tracer.Start(ctx, "catalog.RecordChat").WithAttrs(actorAttrs(actor)...)
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	businessID, ok := actor.Tenant()
	if !ok {
		return nil, cnst.ErrForbidden
	}
	if strings.TrimSpace(userMessage) == "" {
		return nil, errorx.Required("user_message")
	}
	if strings.TrimSpace(aiResponse) == "" {
		return nil, errorx.Required("ai_response")
	}

	entry = &database.ChatHistory{
		UserID:      actor.UserID,
		BusinessID:  businessID,
		UserMessage: userMessage,
		AIResponse:  aiResponse,
		Timestamp:   s.now(),
	}
	if err := s.db.SaveChat(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ChatHistory returns the actor's own exchanges, newest first
func (s *Service) ChatHistory(ctx context.Context, actor *identity.Actor, page, pageSize int) (out *Page[*database.ChatHistory], err error) {
	sc := s.tracer.Start(ctx, "catalog.ChatHistory").WithAttrs(actorAttrs(actor)...)
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	page, pageSize = normalizePage(page, pageSize)
	items, total, err := s.db.ListChat(ctx, actor.UserID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*database.ChatHistory{}
	}
	return &Page[*database.ChatHistory]{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
