package catalog

import (
	"context"
	"testing"

	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/dto"
	"github.com/amoylab/catalog/internal/common/errorx"
	"github.com/amoylab/catalog/internal/identity"
	"github.com/amoylab/catalog/internal/lifecycle"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, f *fixture, username, business string) *identity.Actor {
	t.Helper()
	u, err := f.svc.Register(context.Background(), &dto.RegisterRequest{
		Username:     username,
		Email:        username + "@example.test",
		Password:     "secret-password",
		BusinessName: business,
	})
	require.NoError(t, err)
	return u.Actor()
}

func TestRegister_CreatesBusinessAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, &dto.RegisterRequest{
		Username:     "alice",
		Email:        "alice@acme.test",
		Password:     "secret-password",
		BusinessName: "Acme",
	})
	require.NoError(t, err)
	assert.True(t, u.IsBusinessAdmin)
	assert.True(t, u.IsActive)
	require.NotNil(t, u.Role)
	assert.Equal(t, "admin", u.Role.Name)
	require.NotNil(t, u.Business)
	assert.Equal(t, "Acme", u.Business.Name)
	assert.NotEqual(t, "secret-password", u.Password)

	_, err = f.svc.Register(ctx, &dto.RegisterRequest{
		Username: "mallory", Email: "m@acme.test", Password: "secret-password", BusinessName: "Acme",
	})
	var fe *errorx.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "business_name", fe.Field)
	assert.ErrorIs(t, err, cnst.ErrConflict)

	_, err = f.svc.Register(ctx, &dto.RegisterRequest{
		Username: "alice", Email: "a@globex.test", Password: "secret-password", BusinessName: "Globex",
	})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "username", fe.Field)
	_, err = f.db.GetBusinessByName(ctx, "Globex")
	assert.ErrorIs(t, err, cnst.ErrNotFound)

	_, err = f.svc.Register(ctx, &dto.RegisterRequest{
		Username: "bob", Email: "b@x.test", Password: "short", BusinessName: "X",
	})
	assert.ErrorIs(t, err, cnst.ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := register(t, f, "alice", "Acme")

	u, err := f.svc.Authenticate(ctx, "alice", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, admin.UserID, u.ID)

	_, err = f.svc.Authenticate(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, cnst.ErrInvalidCredentials)
	_, err = f.svc.Authenticate(ctx, "nobody", "secret-password")
	assert.ErrorIs(t, err, cnst.ErrInvalidCredentials)

	bob, err := f.svc.CreateUser(ctx, admin, &dto.CreateUserRequest{Username: "bob", Email: "bob@acme.test", Password: "secret-password"})
	require.NoError(t, err)
	_, err = f.svc.UpdateUser(ctx, admin, bob.ID, &dto.UpdateUserRequest{IsActive: ptr(false)})
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, "bob", "secret-password")
	assert.ErrorIs(t, err, cnst.ErrUserDisabled)
	_, err = f.svc.LoadUser(ctx, bob.ID)
	assert.ErrorIs(t, err, cnst.ErrUserDisabled)
	_, err = f.svc.LoadUser(ctx, 9999)
	assert.ErrorIs(t, err, cnst.ErrInvalidToken)
}

func TestUserManagement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := register(t, f, "alice", "Acme")
	other := register(t, f, "gary", "Globex")

	bob, err := f.svc.CreateUser(ctx, admin, &dto.CreateUserRequest{Username: "bob", Email: "bob@acme.test", Password: "secret-password"})
	require.NoError(t, err)
	require.NotNil(t, bob.Role)
	assert.Equal(t, "viewer", bob.Role.Name)
	tenant, _ := admin.Tenant()
	require.NotNil(t, bob.BusinessID)
	assert.Equal(t, tenant, *bob.BusinessID)

	_, err = f.svc.CreateUser(ctx, admin, &dto.CreateUserRequest{Username: "bob2", Email: "bob@acme.test", Password: "secret-password"})
	var fe *errorx.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "email", fe.Field)

	// the same email may exist in another business
	_, err = f.svc.CreateUser(ctx, other, &dto.CreateUserRequest{Username: "bob3", Email: "bob@acme.test", Password: "secret-password"})
	require.NoError(t, err)

	users, err := f.svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	// bob is a viewer and not a business admin
	bobActor := bob.Actor()
	_, err = f.svc.ListUsers(ctx, bobActor)
	assert.ErrorIs(t, err, cnst.ErrForbidden)
	self, err := f.svc.GetUser(ctx, bobActor, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", self.Username)

	_, err = f.svc.GetUser(ctx, other, bob.ID)
	assert.ErrorIs(t, err, cnst.ErrNotFound)
	_, err = f.svc.UpdateUser(ctx, other, bob.ID, &dto.UpdateUserRequest{Role: ptr("admin")})
	assert.ErrorIs(t, err, cnst.ErrNotFound)

	updated, err := f.svc.UpdateUser(ctx, admin, bob.ID, &dto.UpdateUserRequest{Role: ptr("editor")})
	require.NoError(t, err)
	assert.Equal(t, "editor", updated.Role.Name)

	_, err = f.svc.UpdateUser(ctx, admin, admin.UserID, &dto.UpdateUserRequest{IsBusinessAdmin: ptr(false)})
	assert.ErrorIs(t, err, cnst.ErrInvalidInput)
	_, err = f.svc.UpdateUser(ctx, admin, bob.ID, &dto.UpdateUserRequest{Role: ptr("root")})
	assert.ErrorIs(t, err, cnst.ErrInvalidInput)
}

func TestDeleteUser_KeepsProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := register(t, f, "alice", "Acme")
	ed, err := f.svc.CreateUser(ctx, admin, &dto.CreateUserRequest{Username: "ed", Email: "ed@acme.test", Password: "secret-password", Role: "editor"})
	require.NoError(t, err)
	editor := ed.Actor()

	p := f.product(editor, "Widget", "10", "")
	_, err = f.svc.RecordChat(ctx, editor, "hi", "hello")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteUser(ctx, editor, admin.UserID), cnst.ErrForbidden)
	assert.ErrorIs(t, f.svc.DeleteUser(ctx, admin, admin.UserID), cnst.ErrInvalidInput)
	require.NoError(t, f.svc.DeleteUser(ctx, admin, ed.ID))

	got, err := f.db.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CreatedByID)
	assert.Equal(t, lifecycle.StatusDraft, got.Status)

	_, total, err := f.db.ListChat(ctx, ed.ID, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDeleteUser_ApproverIsRefused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := register(t, f, "alice", "Acme")
	ap, err := f.svc.CreateUser(ctx, admin, &dto.CreateUserRequest{Username: "anna", Email: "anna@acme.test", Password: "secret-password", Role: "approver"})
	require.NoError(t, err)

	p := f.product(admin, "Widget", "10", "pending_approval")
	_, err = f.svc.Approve(ctx, ap.Actor(), p.ID, ptr(true))
	require.NoError(t, err)

	err = f.svc.DeleteUser(ctx, admin, ap.ID)
	assert.ErrorIs(t, err, cnst.ErrConflict)
	var fe *errorx.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "id", fe.Field)

	got, err := f.db.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, lifecycle.CheckInvariant(got.State()))
	require.NotNil(t, got.ApprovedByID)
	assert.Equal(t, ap.ID, *got.ApprovedByID)

	// the approved product stays editable
	updated, err := f.svc.Update(ctx, admin, p.ID, &dto.ProductRequest{Price: ptr(decimal.RequireFromString("12.50"))}, true)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StatusApproved, updated.Status)
	assert.Equal(t, "12.50", updated.Price.StringFixed(2))

	// deactivation is the way out
	off, err := f.svc.UpdateUser(ctx, admin, ap.ID, &dto.UpdateUserRequest{IsActive: ptr(false)})
	require.NoError(t, err)
	assert.False(t, off.IsActive)
}

func TestRenameBusiness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := register(t, f, "alice", "Acme")
	register(t, f, "gary", "Globex")
	ed, err := f.svc.CreateUser(ctx, admin, &dto.CreateUserRequest{Username: "ed", Email: "ed@acme.test", Password: "secret-password", Role: "admin"})
	require.NoError(t, err)

	b, err := f.svc.RenameBusiness(ctx, admin, "Acme Corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", b.Name)

	_, err = f.svc.RenameBusiness(ctx, admin, "Globex")
	assert.ErrorIs(t, err, cnst.ErrConflict)

	// admin role without the business admin flag
	_, err = f.svc.RenameBusiness(ctx, ed.Actor(), "Mine")
	assert.ErrorIs(t, err, cnst.ErrForbidden)
}

func TestRoles(t *testing.T) {
	f := newFixture(t)
	admin := register(t, f, "alice", "Acme")

	roles, err := f.svc.Roles(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, roles, len(identity.Roles))

	_, err = f.svc.Roles(context.Background(), nil)
	assert.ErrorIs(t, err, cnst.ErrAuthenticationRequired)
}
