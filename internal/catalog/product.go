package catalog

import (
	"context"
	"errors"

	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/authz"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/dto"
	"github.com/amoylab/catalog/internal/common/errorx"
	"github.com/amoylab/catalog/internal/identity"
	"github.com/amoylab/catalog/internal/lifecycle"
	"github.com/amoylab/catalog/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const resourceProduct = "product"

// loadProduct fetches a product and builds its authorization target
func (s *Service) loadProduct(ctx context.Context, id uint) (*database.Product, *authz.Target, error) {
	p, err := s.db.GetProductByID(ctx, id)
	if err != nil {
		return nil, nil, errorx.WithResource(resourceProduct, err)
	}
	return p, authz.ProductTarget(p.BusinessID, p.Status), nil
}

// Create adds a product to the actor's business. Ownership and creator are
// always taken from the actor.
func (s *Service) Create(ctx context.Context, actor *identity.Actor, in *dto.ProductRequest) (p *database.Product, err error) {
	sc := s.tracer.Start(ctx, "catalog.Create").WithAttrs(actorAttrs(actor)...)
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if err := s.authorize(actor, cnst.ActionCreate, nil); err != nil {
		return nil, err
	}
	businessID, _ := actor.Tenant()
	if in == nil {
		in = &dto.ProductRequest{}
	}

	requested := ""
	if in.Status != nil {
		requested = *in.Status
	}
	status, err := lifecycle.ValidateInitialStatus(requested)
	if err != nil {
		return nil, err
	}

	creator := actor.UserID
	p = &database.Product{
		Status:      status,
		BusinessID:  businessID,
		CreatedByID: &creator,
	}
	if err := applyFields(p, in, false); err != nil {
		return nil, err
	}

	if err := s.db.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("product created",
		zap.Uint("product_id", p.ID),
		zap.Uint("business_id", p.BusinessID),
		zap.Stringer("actor", actor),
		zap.String("status", p.Status.String()))
	return s.reload(ctx, p.ID)
}

// ListPublic lists approved products of every business. actor may be nil.
func (s *Service) ListPublic(ctx context.Context, actor *identity.Actor, in *dto.ProductQuery) (page *Page[*database.Product], err error) {
	sc := s.tracer.Start(ctx, "catalog.ListPublic").WithAttrs(actorAttrs(actor)...)
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if err := s.authorize(actor, cnst.ActionList, nil); err != nil {
		return nil, err
	}
	q, pageNum, pageSize, err := buildQuery(in)
	if err != nil {
		return nil, err
	}
	if q.Status != nil && *q.Status != lifecycle.StatusApproved {
		return &Page[*database.Product]{Items: []*database.Product{}, Page: pageNum, PageSize: pageSize}, nil
	}
	approved := lifecycle.StatusApproved
	q.Status = &approved
	return s.list(ctx, q, pageNum, pageSize)
}

// ListInternal lists every product of the actor's business, whatever its status
func (s *Service) ListInternal(ctx context.Context, actor *identity.Actor, in *dto.ProductQuery) (page *Page[*database.Product], err error) {
	sc := s.tracer.Start(ctx, "catalog.ListInternal").WithAttrs(actorAttrs(actor)...)
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	if err := s.authorize(actor, cnst.ActionList, nil); err != nil {
		return nil, err
	}
	q, pageNum, pageSize, err := buildQuery(in)
	if err != nil {
		return nil, err
	}
	businessID, ok := actor.Tenant()
	if !ok {
		return &Page[*database.Product]{Items: []*database.Product{}, Page: pageNum, PageSize: pageSize}, nil
	}
	q.BusinessID = &businessID
	return s.list(ctx, q, pageNum, pageSize)
}

func (s *Service) list(ctx context.Context, q database.ProductQuery, pageNum, pageSize int) (*Page[*database.Product], error) {
	items, total, err := s.db.ListProducts(ctx, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*database.Product{}
	}
	return &Page[*database.Product]{Items: items, Total: total, Page: pageNum, PageSize: pageSize}, nil
}

// Retrieve returns a product the actor may see. Products of another business
// that are not approved are reported as not found.
func (s *Service) Retrieve(ctx context.Context, actor *identity.Actor, id uint) (p *database.Product, err error) {
	sc := s.tracer.Start(ctx, "catalog.Retrieve").WithAttrs(actorAttrs(actor)...)
	sc.WithAttrs(attribute.Int64("product.id", int64(id)))
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	p, target, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, cnst.ActionRetrieve, target); err != nil {
		return nil, errorx.WithResource(resourceProduct, err)
	}
	return p, nil
}

// Update edits a product of the actor's business. A full update (partial false)
// needs name, description and price. Status edits go through the lifecycle and
// the write only succeeds if nobody changed the status in between.
func (s *Service) Update(ctx context.Context, actor *identity.Actor, id uint, in *dto.ProductRequest, partial bool) (p *database.Product, err error) {
	sc := s.tracer.Start(ctx, "catalog.Update").WithAttrs(actorAttrs(actor)...)
	sc.WithAttrs(attribute.Int64("product.id", int64(id)), attribute.Bool("partial", partial))
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	p, target, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, cnst.ActionUpdate, target); err != nil {
		return nil, err
	}
	if in == nil {
		in = &dto.ProductRequest{}
	}

	expected := p.Status
	if err := applyFields(p, in, partial); err != nil {
		return nil, err
	}
	if in.Status != nil {
		next, err := lifecycle.ApplyStatus(p.State(), *in.Status)
		if err != nil {
			return nil, err
		}
		p.SetState(next)
	}
	if err := lifecycle.CheckInvariant(p.State()); err != nil {
		return nil, err
	}

	if err := s.db.UpdateProduct(ctx, p, expected); err != nil {
		return nil, errorx.WithResource(resourceProduct, err)
	}
	s.logger.Info("product updated",
		zap.Uint("product_id", p.ID),
		zap.Stringer("actor", actor),
		zap.String("from", expected.String()),
		zap.String("to", p.Status.String()))
	return s.reload(ctx, p.ID)
}

// Delete removes a product of the actor's business
func (s *Service) Delete(ctx context.Context, actor *identity.Actor, id uint) (err error) {
	sc := s.tracer.Start(ctx, "catalog.Delete").WithAttrs(actorAttrs(actor)...)
	sc.WithAttrs(attribute.Int64("product.id", int64(id)))
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if !actor.Authenticated() {
		return cnst.ErrAuthenticationRequired
	}
	_, target, err := s.loadProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, cnst.ActionDelete, target); err != nil {
		return err
	}
	if err := s.db.DeleteProduct(ctx, id); err != nil {
		return errorx.WithResource(resourceProduct, err)
	}
	s.logger.Info("product deleted", zap.Uint("product_id", id), zap.Stringer("actor", actor))
	return nil
}

// Approve moves a product of the actor's business to approved. approved must
// be present and true; there is no reject transition. Of several concurrent
// approvals exactly one succeeds, the others get cnst.ErrAlreadyApproved.
func (s *Service) Approve(ctx context.Context, actor *identity.Actor, id uint, approved *bool) (p *database.Product, err error) {
	sc := s.tracer.Start(ctx, "catalog.Approve").WithAttrs(actorAttrs(actor)...)
	sc.WithAttrs(attribute.Int64("product.id", int64(id)))
	defer func() {
		s.approval(approvalOutcome(err))
		sc.Fail(err)
		sc.End()
	}()
	ctx = sc.Ctx

	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	p, target, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, cnst.ActionApprove, target); err != nil {
		return nil, err
	}
	if approved == nil {
		return nil, errorx.Required("approved")
	}
	if !*approved {
		return nil, errorx.NewFieldError("approved", "must be true", false)
	}

	next, err := lifecycle.Approve(p.State(), actor.UserID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.db.ApproveProduct(ctx, p.ID, p.BusinessID, *next.ApprovedBy, *next.ApprovedAt); err != nil {
		return nil, errorx.WithResource(resourceProduct, err)
	}
	s.logger.Info("product approved",
		zap.Uint("product_id", p.ID),
		zap.Uint("business_id", p.BusinessID),
		zap.Stringer("actor", actor))
	return s.reload(ctx, p.ID)
}

func approvalOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.ApprovalApproved
	case errors.Is(err, cnst.ErrAlreadyApproved), errors.Is(err, cnst.ErrConcurrentUpdate):
		return metrics.ApprovalConflict
	case errors.Is(err, cnst.ErrForbidden), errors.Is(err, cnst.ErrAuthenticationRequired):
		return metrics.ApprovalDenied
	default:
		return metrics.ApprovalError
	}
}

func (s *Service) reload(ctx context.Context, id uint) (*database.Product, error) {
	p, err := s.db.GetProductByID(ctx, id)
	if err != nil {
		return nil, errorx.WithResource(resourceProduct, err)
	}
	return p, nil
}
