package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/authz"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/config"
	"github.com/amoylab/catalog/internal/common/dto"
	"github.com/amoylab/catalog/internal/identity"
	"github.com/amoylab/catalog/internal/lifecycle"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

type recorder struct {
	mu        sync.Mutex
	decisions []string
	approvals []string
}

func (r *recorder) Decision(action string, allowed bool, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions = append(r.decisions, action+":"+reason)
}

func (r *recorder) Approval(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approvals = append(r.approvals, outcome)
}

type fixture struct {
	svc *Service
	db  database.Database
	obs *recorder
	t   *testing.T
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewSQLite(&config.DatabaseConfig{Type: cnst.DatabaseSQLite, DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.InitDefaultRoles(context.Background(), db, authz.DefaultPolicy()))

	obs := &recorder{}
	svc := NewService(db, authz.DefaultPolicy(), zaptest.NewLogger(t),
		WithObserver(obs),
		WithBcryptCost(bcrypt.MinCost))
	return &fixture{svc: svc, db: db, obs: obs, t: t}
}

func (f *fixture) business(name string) *database.Business {
	f.t.Helper()
	b, err := database.EnsureBusiness(context.Background(), f.db, name)
	require.NoError(f.t, err)
	return b
}

// user stores a user and returns the actor it authenticates as
func (f *fixture) user(b *database.Business, username string, role identity.RoleName, businessAdmin bool) *identity.Actor {
	f.t.Helper()
	ctx := context.Background()
	r, err := f.db.GetRoleByName(ctx, role.String())
	require.NoError(f.t, err)
	u := &database.User{
		Username:        username,
		Email:           username + "@example.test",
		Password:        "x",
		BusinessID:      &b.ID,
		RoleID:          &r.ID,
		IsBusinessAdmin: businessAdmin,
		IsActive:        true,
	}
	require.NoError(f.t, f.db.CreateUser(ctx, u))
	stored, err := f.db.GetUserByID(ctx, u.ID)
	require.NoError(f.t, err)
	return stored.Actor()
}

func (f *fixture) product(actor *identity.Actor, name, price, status string) *database.Product {
	f.t.Helper()
	p, err := f.svc.Create(context.Background(), actor, productInput(name, price, status))
	require.NoError(f.t, err)
	return p
}

func productInput(name, price, status string) *dto.ProductRequest {
	description := name + " description"
	d := decimal.RequireFromString(price)
	in := &dto.ProductRequest{Name: &name, Description: &description, Price: &d}
	if status != "" {
		in.Status = &status
	}
	return in
}

func ptr[T any](v T) *T { return &v }

func TestCreate_ForcesOwnershipAndDefaultsToDraft(t *testing.T) {
	f := newFixture(t)
	acme := f.business("Acme")
	editor := f.user(acme, "ed", identity.RoleEditor, false)

	p := f.product(editor, "Widget", "10.00", "")
	assert.Equal(t, lifecycle.StatusDraft, p.Status)
	assert.Equal(t, acme.ID, p.BusinessID)
	require.NotNil(t, p.CreatedByID)
	assert.Equal(t, editor.UserID, *p.CreatedByID)
	assert.Equal(t, "10.00", p.Price.StringFixed(2))
	require.NotNil(t, p.Business)
	assert.Equal(t, "Acme", p.Business.Name)

	pending := f.product(editor, "Gadget", "5", "pending_approval")
	assert.Equal(t, lifecycle.StatusPendingApproval, pending.Status)
}

func TestCreate_RejectsTerminalStatuses(t *testing.T) {
	f := newFixture(t)
	acme := f.business("Acme")
	admin := f.user(acme, "root", identity.RoleAdmin, true)
	ctx := context.Background()

	for _, status := range []string{"approved", "rejected", "bogus"} {
		_, err := f.svc.Create(ctx, admin, productInput("Widget", "1", status))
		var statusErr *lifecycle.InvalidStatusError
		require.ErrorAs(t, err, &statusErr, status)
		assert.Equal(t, "status", statusErr.Field)
		assert.ErrorIs(t, err, cnst.ErrInvalidStatus)
	}

	page, err := f.svc.ListInternal(ctx, admin, nil)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	acme := f.business("Acme")
	admin := f.user(acme, "root", identity.RoleAdmin, true)
	ctx := context.Background()

	cases := map[string]*dto.ProductRequest{
		"negative":       productInput("Widget", "-1", ""),
		"three decimals": productInput("Widget", "1.005", ""),
		"too large":      productInput("Widget", "100000000", ""),
		"blank name":     productInput("   ", "1", ""),
		"missing price":  {Name: ptr("Widget"), Description: ptr("d")},
	}
	for name, in := range cases {
		_, err := f.svc.Create(ctx, admin, in)
		assert.ErrorIs(t, err, cnst.ErrInvalidInput, name)
	}

	p := f.product(admin, "Widget", "99999999.99", "")
	assert.Equal(t, "99999999.99", p.Price.StringFixed(2))
}

func TestCreate_Denials(t *testing.T) {
	f := newFixture(t)
	acme := f.business("Acme")
	viewer := f.user(acme, "vi", identity.RoleViewer, false)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, nil, productInput("Widget", "1", ""))
	assert.ErrorIs(t, err, cnst.ErrAuthenticationRequired)

	_, err = f.svc.Create(ctx, viewer, productInput("Widget", "1", ""))
	assert.ErrorIs(t, err, cnst.ErrForbidden)

	role := identity.RoleAdmin
	homeless := identity.NewActor(999, "ghost", nil, &role, false)
	_, err = f.svc.Create(ctx, homeless, productInput("Widget", "1", ""))
	assert.ErrorIs(t, err, cnst.ErrForbidden)
}

func TestListPublic_OnlyApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.business("Acme")
	globex := f.business("Globex")
	acmeAdmin := f.user(acme, "a1", identity.RoleAdmin, true)
	globexAdmin := f.user(globex, "g1", identity.RoleAdmin, true)

	draft := f.product(acmeAdmin, "Draft", "1", "")
	pub := f.product(acmeAdmin, "Public", "2", "pending_approval")
	_, err := f.svc.Approve(ctx, acmeAdmin, pub.ID, ptr(true))
	require.NoError(t, err)
	other := f.product(globexAdmin, "Other", "3", "")
	_, err = f.svc.Approve(ctx, globexAdmin, other.ID, ptr(true))
	require.NoError(t, err)

	page, err := f.svc.ListPublic(ctx, nil, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	for _, p := range page.Items {
		assert.Equal(t, lifecycle.StatusApproved, p.Status)
		assert.NotEqual(t, draft.ID, p.ID)
	}

	assert.Contains(t, f.obs.decisions, "list:allowed")

	// signed-in callers see the same public catalog
	f.obs.decisions = nil
	page, err = f.svc.ListPublic(ctx, globexAdmin, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, []string{"list:allowed"}, f.obs.decisions)

	page, err = f.svc.ListPublic(ctx, nil, &dto.ProductQuery{Status: "draft"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = f.svc.ListPublic(ctx, nil, &dto.ProductQuery{Business: "glob"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Other", page.Items[0].Name)

	_, err = f.svc.ListPublic(ctx, nil, &dto.ProductQuery{Status: "nope"})
	assert.ErrorIs(t, err, cnst.ErrInvalidStatus)
	_, err = f.svc.ListPublic(ctx, nil, &dto.ProductQuery{MinPrice: "cheap"})
	assert.ErrorIs(t, err, cnst.ErrInvalidInput)
}

func TestListInternal_TenantScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.business("Acme")
	globex := f.business("Globex")
	acmeViewer := f.user(acme, "av", identity.RoleViewer, false)
	acmeAdmin := f.user(acme, "aa", identity.RoleAdmin, true)
	globexAdmin := f.user(globex, "ga", identity.RoleAdmin, true)

	f.product(acmeAdmin, "A1", "1", "")
	f.product(acmeAdmin, "A2", "2", "pending_approval")
	f.product(globexAdmin, "G1", "3", "")

	page, err := f.svc.ListInternal(ctx, acmeViewer, &dto.ProductQuery{Ordering: "-price", PageSize: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Equal(t, 1, page.PageSize)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A2", page.Items[0].Name)

	page, err = f.svc.ListInternal(ctx, acmeViewer, &dto.ProductQuery{Status: "draft"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A1", page.Items[0].Name)

	_, err = f.svc.ListInternal(ctx, nil, nil)
	assert.ErrorIs(t, err, cnst.ErrAuthenticationRequired)

	homeless := identity.NewActor(999, "ghost", nil, nil, false)
	page, err = f.svc.ListInternal(ctx, homeless, nil)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestNormalizePage(t *testing.T) {
	page, size := normalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)
	_, size = normalizePage(3, 1000)
	assert.Equal(t, MaxPageSize, size)
}

func TestParseOrdering(t *testing.T) {
	col, desc := parseOrdering("-price")
	assert.Equal(t, database.OrderPrice, col)
	assert.True(t, desc)
	col, desc = parseOrdering("name")
	assert.Equal(t, database.OrderName, col)
	assert.False(t, desc)
	col, desc = parseOrdering("password")
	assert.Equal(t, database.OrderCreatedAt, col)
	assert.True(t, desc)
}

func TestRetrieve_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.business("Acme")
	globex := f.business("Globex")
	acmeAdmin := f.user(acme, "aa", identity.RoleAdmin, true)
	acmeViewer := f.user(acme, "av", identity.RoleViewer, false)
	globexAdmin := f.user(globex, "ga", identity.RoleAdmin, true)

	draft := f.product(acmeAdmin, "Draft", "1", "")
	approved := f.product(acmeAdmin, "Approved", "1", "pending_approval")
	_, err := f.svc.Approve(ctx, acmeAdmin, approved.ID, ptr(true))
	require.NoError(t, err)

	_, err = f.svc.Retrieve(ctx, acmeViewer, draft.ID)
	assert.NoError(t, err)

	for name, actor := range map[string]*identity.Actor{"anonymous": nil, "other tenant": globexAdmin} {
		_, err = f.svc.Retrieve(ctx, actor, draft.ID)
		assert.ErrorIs(t, err, cnst.ErrNotFound, name)
		got, err := f.svc.Retrieve(ctx, actor, approved.ID)
		require.NoError(t, err, name)
		assert.Equal(t, approved.ID, got.ID)
	}

	_, err = f.svc.Retrieve(ctx, acmeAdmin, 9999)
	assert.ErrorIs(t, err, cnst.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.business("Acme")
	globex := f.business("Globex")
	editor := f.user(acme, "ed", identity.RoleEditor, false)
	approver := f.user(acme, "ap", identity.RoleApprover, false)
	viewer := f.user(acme, "vi", identity.RoleViewer, false)
	globexAdmin := f.user(globex, "ga", identity.RoleAdmin, true)

	p := f.product(editor, "Widget", "10", "")

	t.Run("partial", func(t *testing.T) {
		got, err := f.svc.Update(ctx, editor, p.ID, &dto.ProductRequest{Price: ptr(decimal.RequireFromString("12.5"))}, true)
		require.NoError(t, err)
		assert.Equal(t, "Widget", got.Name)
		assert.Equal(t, "12.50", got.Price.StringFixed(2))
	})

	t.Run("full update needs every field", func(t *testing.T) {
		_, err := f.svc.Update(ctx, editor, p.ID, &dto.ProductRequest{Name: ptr("x")}, false)
		assert.ErrorIs(t, err, cnst.ErrInvalidInput)
	})

	t.Run("status cannot jump to approved", func(t *testing.T) {
		_, err := f.svc.Update(ctx, editor, p.ID, &dto.ProductRequest{Status: ptr("approved")}, true)
		assert.ErrorIs(t, err, cnst.ErrInvalidStatus)
	})

	t.Run("denials leave the product untouched", func(t *testing.T) {
		_, err := f.svc.Update(ctx, viewer, p.ID, &dto.ProductRequest{Name: ptr("hacked")}, true)
		assert.ErrorIs(t, err, cnst.ErrForbidden)
		_, err = f.svc.Update(ctx, globexAdmin, p.ID, &dto.ProductRequest{Name: ptr("hacked")}, true)
		assert.ErrorIs(t, err, cnst.ErrForbidden)
		_, err = f.svc.Update(ctx, nil, p.ID, &dto.ProductRequest{Name: ptr("hacked")}, true)
		assert.ErrorIs(t, err, cnst.ErrAuthenticationRequired)

		got, err := f.db.GetProductByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Widget", got.Name)
	})

	t.Run("leaving approved clears approval", func(t *testing.T) {
		_, err := f.svc.Approve(ctx, approver, p.ID, ptr(true))
		require.NoError(t, err)
		got, err := f.svc.Update(ctx, editor, p.ID, &dto.ProductRequest{Status: ptr("rejected")}, true)
		require.NoError(t, err)
		assert.Equal(t, lifecycle.StatusRejected, got.Status)
		assert.Nil(t, got.ApprovedByID)
		assert.Nil(t, got.ApprovedAt)
	})
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acme := f.business("Acme")
	admin := f.user(acme, "aa", identity.RoleAdmin, true)
	editor := f.user(acme, "ed", identity.RoleEditor, false)
	p := f.product(editor, "Widget", "10", "")

	assert.ErrorIs(t, f.svc.Delete(ctx, editor, p.ID), cnst.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, admin, p.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, admin, p.ID), cnst.ErrNotFound)
}

// Business A admin creates a draft; business B admin cannot approve it.
func TestScenarioA_CrossTenantApproveForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	adminA := f.user(f.business("A"), "adminA", identity.RoleAdmin, true)
	adminB := f.user(f.business("B"), "adminB", identity.RoleAdmin, true)

	p := f.product(adminA, "Widget", "10.00", "draft")
	_, err := f.svc.Approve(ctx, adminB, p.ID, ptr(true))
	assert.ErrorIs(t, err, cnst.ErrForbidden)

	got, err := f.db.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusDraft, got.Status)
	assert.Nil(t, got.ApprovedByID)
	assert.Contains(t, f.obs.approvals, "denied")
	assert.Contains(t, f.obs.decisions, "approve:tenant_mismatch")
}

// Business A approver approves a pending product of business A.
func TestScenarioB_ApproverApproves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }
	a := f.business("A")
	editor := f.user(a, "ed", identity.RoleEditor, false)
	approver := f.user(a, "ap", identity.RoleApprover, false)

	p := f.product(editor, "Widget", "10", "pending_approval")
	got, err := f.svc.Approve(ctx, approver, p.ID, ptr(true))
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusApproved, got.Status)
	require.NotNil(t, got.ApprovedByID)
	assert.Equal(t, approver.UserID, *got.ApprovedByID)
	require.NotNil(t, got.ApprovedAt)
	assert.True(t, got.ApprovedAt.Equal(now))

	_, err = f.svc.Approve(ctx, approver, p.ID, ptr(true))
	assert.ErrorIs(t, err, cnst.ErrAlreadyApproved)
	assert.Equal(t, []string{"approved", "conflict"}, f.obs.approvals)
}

// Two approvers of business A approve concurrently: one wins, one conflicts.
func TestScenarioC_ConcurrentApprovals(t *testing.T) {
	f := newFixture(t)
	a := f.business("A")
	editor := f.user(a, "ed", identity.RoleEditor, false)
	approvers := []*identity.Actor{
		f.user(a, "ap1", identity.RoleApprover, false),
		f.user(a, "ap2", identity.RoleApprover, false),
	}
	p := f.product(editor, "Widget", "10", "pending_approval")

	errs := make([]error, len(approvers))
	var wg sync.WaitGroup
	for i, actor := range approvers {
		wg.Add(1)
		go func(i int, actor *identity.Actor) {
			defer wg.Done()
			_, errs[i] = f.svc.Approve(context.Background(), actor, p.ID, ptr(true))
		}(i, actor)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, cnst.ErrAlreadyApproved):
			conflict++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflict)

	got, err := f.db.GetProductByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NoError(t, lifecycle.CheckInvariant(got.State()))
}

func TestApprove_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.business("A")
	approver := f.user(a, "ap", identity.RoleApprover, false)
	viewer := f.user(a, "vi", identity.RoleViewer, false)
	p := f.product(approver, "Widget", "10", "")

	_, err := f.svc.Approve(ctx, approver, p.ID, nil)
	assert.ErrorIs(t, err, cnst.ErrInvalidInput)
	_, err = f.svc.Approve(ctx, approver, p.ID, ptr(false))
	assert.ErrorIs(t, err, cnst.ErrInvalidInput)
	_, err = f.svc.Approve(ctx, viewer, p.ID, ptr(true))
	assert.ErrorIs(t, err, cnst.ErrForbidden)
	_, err = f.svc.Approve(ctx, nil, p.ID, ptr(true))
	assert.ErrorIs(t, err, cnst.ErrAuthenticationRequired)

	got, err := f.db.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusDraft, got.Status)
}

func TestViewer_ReadOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.business("A")
	admin := f.user(a, "aa", identity.RoleAdmin, true)
	viewer := f.user(a, "vi", identity.RoleViewer, false)
	p := f.product(admin, "Widget", "10", "")

	_, err := f.svc.Retrieve(ctx, viewer, p.ID)
	assert.NoError(t, err)
	_, err = f.svc.ListInternal(ctx, viewer, nil)
	assert.NoError(t, err)

	_, err = f.svc.Create(ctx, viewer, productInput("x", "1", ""))
	assert.ErrorIs(t, err, cnst.ErrForbidden)
	_, err = f.svc.Update(ctx, viewer, p.ID, &dto.ProductRequest{Name: ptr("x")}, true)
	assert.ErrorIs(t, err, cnst.ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, viewer, p.ID), cnst.ErrForbidden)
	_, err = f.svc.Approve(ctx, viewer, p.ID, ptr(true))
	assert.ErrorIs(t, err, cnst.ErrForbidden)
}

func TestChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.business("A")
	u1 := f.user(a, "u1", identity.RoleViewer, false)
	u2 := f.user(a, "u2", identity.RoleViewer, false)

	base := time.Now()
	for i, msg := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Second)
		f.svc.now = func() time.Time { return at }
		_, err := f.svc.RecordChat(ctx, u1, msg, "ok")
		require.NoError(t, err)
	}
	_, err := f.svc.RecordChat(ctx, u2, "mine", "ok")
	require.NoError(t, err)

	page, err := f.svc.ChatHistory(ctx, u1, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "third", page.Items[0].UserMessage)

	_, err = f.svc.RecordChat(ctx, u1, " ", "ok")
	assert.ErrorIs(t, err, cnst.ErrInvalidInput)
	_, err = f.svc.RecordChat(ctx, nil, "hi", "ok")
	assert.ErrorIs(t, err, cnst.ErrAuthenticationRequired)
	_, err = f.svc.ChatHistory(ctx, nil, 1, 10)
	assert.ErrorIs(t, err, cnst.ErrAuthenticationRequired)
}
