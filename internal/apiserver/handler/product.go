package handler

import (
	"github.com/amoylab/catalog/internal/apiserver/middleware"
	"github.com/amoylab/catalog/internal/catalog"
	"github.com/amoylab/catalog/internal/common/dto"
	"github.com/amoylab/catalog/internal/i18n"

	"github.com/gin-gonic/gin"
)

type Product struct {
	svc *catalog.Service
}

func NewProduct(svc *catalog.Service) *Product {
	return &Product{svc: svc}
}

// HandleListPublic lists approved products of every business
func (h *Product) HandleListPublic(c *gin.Context) {
	var q dto.ProductQuery
	if err := bindQuery(c, &q); err != nil {
		_ = c.Error(err)
		return
	}
	page, err := h.svc.ListPublic(c.Request.Context(), middleware.ActorFrom(c), &q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessProductList).WithPayload(toPage(page, toProductResponse)).Send(c)
}

// HandleListInternal lists the products of the caller's business
func (h *Product) HandleListInternal(c *gin.Context) {
	var q dto.ProductQuery
	if err := bindQuery(c, &q); err != nil {
		_ = c.Error(err)
		return
	}
	page, err := h.svc.ListInternal(c.Request.Context(), middleware.ActorFrom(c), &q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessProductList).WithPayload(toPage(page, toProductResponse)).Send(c)
}

func (h *Product) HandleCreate(c *gin.Context) {
	var req dto.ProductRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.ActorFrom(c), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Created(i18n.SuccessProductCreated).WithPayload(toProductResponse(p)).Send(c)
}

func (h *Product) HandleRetrieve(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	p, err := h.svc.Retrieve(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessProductInfo).WithPayload(toProductResponse(p)).Send(c)
}

// HandleUpdate replaces the editable fields of a product
func (h *Product) HandleUpdate(c *gin.Context) {
	h.update(c, false)
}

// HandlePatch changes only the fields present in the body
func (h *Product) HandlePatch(c *gin.Context) {
	h.update(c, true)
}

func (h *Product) update(c *gin.Context, partial bool) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req dto.ProductRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	p, err := h.svc.Update(c.Request.Context(), middleware.ActorFrom(c), id, &req, partial)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessProductUpdated).WithPayload(toProductResponse(p)).Send(c)
}

func (h *Product) HandleDelete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessProductDeleted).With("id", id).Send(c)
}

// HandleApprove approves a product; the body must be {"approved": true}
func (h *Product) HandleApprove(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req dto.ApproveRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}
	p, err := h.svc.Approve(c.Request.Context(), middleware.ActorFrom(c), id, req.Approved)
	if err != nil {
		_ = c.Error(err)
		return
	}
	i18n.Success(i18n.SuccessProductApproved).WithPayload(toProductResponse(p)).Send(c)
}
