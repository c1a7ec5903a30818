package handler

import (
	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/catalog"
	"github.com/amoylab/catalog/internal/common/dto"
)

func toProductResponse(p *database.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Status:      p.Status.String(),
		BusinessID:  p.BusinessID,
		CreatedBy:   p.CreatedByID,
		ApprovedBy:  p.ApprovedByID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		ApprovedAt:  p.ApprovedAt,
	}
	if p.Business != nil {
		resp.BusinessName = p.Business.Name
	}
	return resp
}

func toUserInfo(u *database.User) dto.UserInfo {
	info := dto.UserInfo{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		BusinessID:      u.BusinessID,
		IsBusinessAdmin: u.IsBusinessAdmin,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
	}
	if u.Role != nil {
		role := u.Role.Name
		info.Role = &role
	}
	if u.Business != nil {
		info.BusinessName = u.Business.Name
	}
	return info
}

func toBusinessInfo(b *database.Business) dto.BusinessInfo {
	return dto.BusinessInfo{ID: b.ID, Name: b.Name, CreatedAt: b.CreatedAt}
}

func toRoleInfo(r *database.Role) dto.RoleInfo {
	perms := map[string]any{}
	for k, v := range r.Permissions {
		perms[k] = v
	}
	return dto.RoleInfo{ID: r.ID, Name: r.Name, Permissions: perms}
}

func toChatEntry(e *database.ChatHistory) dto.ChatEntry {
	return dto.ChatEntry{
		ID:          e.ID,
		UserMessage: e.UserMessage,
		AIResponse:  e.AIResponse,
		Timestamp:   e.Timestamp,
	}
}

// toPage converts one page of a listing with conv
func toPage[T, R any](p *catalog.Page[T], conv func(T) R) dto.Page[R] {
	out := dto.Page[R]{
		Count:    p.Total,
		Page:     p.Page,
		PageSize: p.PageSize,
		Results:  make([]R, 0, len(p.Items)),
	}
	for _, item := range p.Items {
		out.Results = append(out.Results, conv(item))
	}
	return out
}
