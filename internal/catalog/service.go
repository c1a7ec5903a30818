// Package catalog orchestrates every catalog operation: it loads the target,
// asks the authorization engine, runs the lifecycle transition and persists
// the result. Every call takes the acting user explicitly.
package catalog

import (
	"time"

	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/authz"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/identity"
	"github.com/amoylab/catalog/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tracerName = "catalog"

// Observer receives authorization and approval outcomes. *metrics.Metrics implements it.
type Observer interface {
	Decision(action string, allowed bool, reason string)
	Approval(outcome string)
}

// Service is the catalog core
type Service struct {
	db         database.Database
	policy     *authz.Policy
	logger     *zap.Logger
	observer   Observer
	tracer     *trace.Builder
	now        func() time.Time
	bcryptCost int
}

// Option configures a Service
type Option func(*Service)

// WithObserver reports decisions and approvals to o
func WithObserver(o Observer) Option {
	return func(s *Service) {
		s.observer = o
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithBcryptCost sets the password hashing cost
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// NewService creates a catalog service. A nil policy means authz.DefaultPolicy.
func NewService(db database.Database, policy *authz.Policy, logger *zap.Logger, opts ...Option) *Service {
	if policy == nil {
		policy = authz.DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		db:         db,
		policy:     policy,
		logger:     logger.Named("catalog"),
		tracer:     trace.Tracer(tracerName),
		now:        time.Now,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the role table the service decides with
func (s *Service) Policy() *authz.Policy {
	return s.policy
}

// authorize runs the authorization engine and reports the decision
func (s *Service) authorize(actor *identity.Actor, action cnst.ActionType, target *authz.Target) error {
	d := authz.Decide(s.policy, actor, action, target)
	if s.observer != nil {
		s.observer.Decision(action.String(), d.Allowed, string(d.Reason))
	}
	if !d.Allowed {
		s.logger.Debug("authorization denied",
			zap.Stringer("actor", actor),
			zap.String("action", action.String()),
			zap.String("reason", string(d.Reason)))
	}
	return d.Err()
}

func (s *Service) approval(outcome string) {
	if s.observer != nil {
		s.observer.Approval(outcome)
	}
}

func actorAttrs(actor *identity.Actor) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.Bool("actor.authenticated", actor.Authenticated())}
	if actor.Authenticated() {
		attrs = append(attrs, attribute.Int64("actor.user_id", int64(actor.UserID)))
	}
	if tenant, ok := actor.Tenant(); ok {
		attrs = append(attrs, attribute.Int64("actor.business_id", int64(tenant)))
	}
	return attrs
}

// Page is one page of a listing
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// Pagination defaults
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// normalizePage applies the pagination defaults and bounds
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}
