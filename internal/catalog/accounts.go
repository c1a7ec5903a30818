package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/amoylab/catalog/internal/apiserver/database"
	"github.com/amoylab/catalog/internal/authz"
	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/common/dto"
	"github.com/amoylab/catalog/internal/common/errorx"
	"github.com/amoylab/catalog/internal/identity"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	resourceUser     = "user"
	resourceBusiness = "business"
	resourceRole     = "role"

	minPasswordLength = 8
)

// Register creates a business together with its first user, who administers it.
// An existing business name is a conflict: nobody can join a tenant by registering.
func (s *Service) Register(ctx context.Context, in *dto.RegisterRequest) (user *database.User, err error) {
	sc := s.tracer.Start(ctx, "catalog.Register")
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	username := strings.TrimSpace(in.Username)
	businessName := strings.TrimSpace(in.BusinessName)
	email := strings.TrimSpace(in.Email)
	switch {
	case username == "":
		return nil, errorx.Required("username")
	case email == "":
		return nil, errorx.Required("email")
	case businessName == "":
		return nil, errorx.Required("business_name")
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var userID uint
	err = s.db.Transaction(ctx, func(ctx context.Context) error {
		if _, err := s.db.GetBusinessByName(ctx, businessName); err == nil {
			return errorx.Duplicate("business_name", businessName)
		} else if !errors.Is(err, cnst.ErrNotFound) {
			return err
		}
		if err := s.ensureUsernameFree(ctx, username); err != nil {
			return err
		}
		role, err := s.role(ctx, identity.RoleAdmin)
		if err != nil {
			return err
		}

		business := &database.Business{Name: businessName}
		if err := s.db.CreateBusiness(ctx, business); err != nil {
			return duplicateAs(err, "business_name", businessName)
		}
		u := &database.User{
			Username:        username,
			Email:           email,
			Password:        hash,
			BusinessID:      &business.ID,
			RoleID:          &role.ID,
			IsBusinessAdmin: true,
			IsActive:        true,
		}
		if err := s.db.CreateUser(ctx, u); err != nil {
			return duplicateAs(err, "username", username)
		}
		userID = u.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("business registered", zap.String("business", businessName), zap.Uint("user_id", userID))
	return s.db.GetUserByID(ctx, userID)
}

// Authenticate checks a username and password
func (s *Service) Authenticate(ctx context.Context, username, password string) (*database.User, error) {
	u, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, cnst.ErrNotFound) {
			return nil, cnst.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, cnst.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, cnst.ErrUserDisabled
	}
	return u, nil
}

// LoadUser returns the current state of an authenticated user. Tokens of users
// that were removed are no longer valid; disabled users are refused.
func (s *Service) LoadUser(ctx context.Context, userID uint) (*database.User, error) {
	u, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, cnst.ErrNotFound) {
			return nil, cnst.ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, cnst.ErrUserDisabled
	}
	return u, nil
}

// Roles lists the global roles
func (s *Service) Roles(ctx context.Context, actor *identity.Actor) ([]*database.Role, error) {
	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	return s.db.ListRoles(ctx)
}

// RenameBusiness renames the actor's business. Only its business admins may.
func (s *Service) RenameBusiness(ctx context.Context, actor *identity.Actor, name string) (b *database.Business, err error) {
	sc := s.tracer.Start(ctx, "catalog.RenameBusiness").WithAttrs(actorAttrs(actor)...)
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	businessID, ok := actor.Tenant()
	if !ok {
		return nil, cnst.ErrForbidden
	}
	if err := s.authorize(actor, cnst.ActionManageUsers, authz.UserTarget(&businessID)); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errorx.Required("name")
	}
	if existing, err := s.db.GetBusinessByName(ctx, name); err == nil && existing.ID != businessID {
		return nil, errorx.Duplicate("name", name)
	}
	if err := s.db.UpdateBusinessName(ctx, businessID, name); err != nil {
		return nil, errorx.WithResource(resourceBusiness, duplicateAs(err, "name", name))
	}
	return s.db.GetBusinessByID(ctx, businessID)
}

// ListUsers lists the users of the actor's business
func (s *Service) ListUsers(ctx context.Context, actor *identity.Actor) ([]*database.User, error) {
	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	businessID, ok := actor.Tenant()
	if !ok {
		return nil, cnst.ErrForbidden
	}
	if err := s.authorize(actor, cnst.ActionManageUsers, authz.UserTarget(&businessID)); err != nil {
		return nil, err
	}
	return s.db.ListUsersByBusiness(ctx, businessID)
}

// GetUser returns a user of the actor's business. Anyone may read themselves.
func (s *Service) GetUser(ctx context.Context, actor *identity.Actor, id uint) (*database.User, error) {
	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	u, err := s.loadUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if u.ID == actor.UserID {
		return u, nil
	}
	if err := s.authorize(actor, cnst.ActionManageUsers, authz.UserTarget(u.BusinessID)); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser adds a user to the actor's business. The role defaults to viewer.
func (s *Service) CreateUser(ctx context.Context, actor *identity.Actor, in *dto.CreateUserRequest) (user *database.User, err error) {
	sc := s.tracer.Start(ctx, "catalog.CreateUser").WithAttrs(actorAttrs(actor)...)
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	businessID, ok := actor.Tenant()
	if !ok {
		return nil, cnst.ErrForbidden
	}
	if err := s.authorize(actor, cnst.ActionManageUsers, authz.UserTarget(&businessID)); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" {
		return nil, errorx.Required("username")
	}
	if email == "" {
		return nil, errorx.Required("email")
	}
	roleName := identity.RoleViewer
	if in.Role != "" {
		if roleName, err = identity.ParseRole(in.Role); err != nil {
			return nil, errorx.NewFieldError("role", "unknown role", in.Role)
		}
	}
	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var userID uint
	err = s.db.Transaction(ctx, func(ctx context.Context) error {
		if err := s.ensureUsernameFree(ctx, username); err != nil {
			return err
		}
		role, err := s.role(ctx, roleName)
		if err != nil {
			return err
		}
		u := &database.User{
			Username:        username,
			Email:           email,
			Password:        hash,
			BusinessID:      &businessID,
			RoleID:          &role.ID,
			IsBusinessAdmin: in.IsBusinessAdmin,
			IsActive:        true,
		}
		if err := s.db.CreateUser(ctx, u); err != nil {
			return duplicateAs(err, "email", email)
		}
		userID = u.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created",
		zap.Uint("user_id", userID),
		zap.Uint("business_id", businessID),
		zap.String("role", roleName.String()),
		zap.Stringer("actor", actor))
	return s.db.GetUserByID(ctx, userID)
}

// UpdateUser changes a user of the actor's business. An admin cannot disable
// themselves or drop their own business admin flag.
func (s *Service) UpdateUser(ctx context.Context, actor *identity.Actor, id uint, in *dto.UpdateUserRequest) (user *database.User, err error) {
	sc := s.tracer.Start(ctx, "catalog.UpdateUser").WithAttrs(actorAttrs(actor)...)
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if !actor.Authenticated() {
		return nil, cnst.ErrAuthenticationRequired
	}
	u, err := s.loadUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, cnst.ActionManageUsers, authz.UserTarget(u.BusinessID)); err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, errorx.Required("email")
		}
		u.Email = email
	}
	if in.Password != nil {
		hash, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	if in.Role != nil {
		name, err := identity.ParseRole(*in.Role)
		if err != nil {
			return nil, errorx.NewFieldError("role", "unknown role", *in.Role)
		}
		role, err := s.role(ctx, name)
		if err != nil {
			return nil, err
		}
		u.RoleID = &role.ID
	}
	if in.IsBusinessAdmin != nil {
		if u.ID == actor.UserID && !*in.IsBusinessAdmin {
			return nil, errorx.NewFieldError("is_business_admin", "cannot be revoked from yourself", false)
		}
		u.IsBusinessAdmin = *in.IsBusinessAdmin
	}
	if in.IsActive != nil {
		if u.ID == actor.UserID && !*in.IsActive {
			return nil, errorx.NewFieldError("is_active", "cannot be revoked from yourself", false)
		}
		u.IsActive = *in.IsActive
	}

	if err := s.db.UpdateUser(ctx, u); err != nil {
		return nil, errorx.WithResource(resourceUser, duplicateAs(err, "email", u.Email))
	}
	s.logger.Info("user updated", zap.Uint("user_id", u.ID), zap.Stringer("actor", actor))
	return s.db.GetUserByID(ctx, u.ID)
}

// DeleteUser removes a user of the actor's business along with their chat
// history. Their products stay with the creator cleared. A user who approved
// products cannot be deleted; set is_active to false instead.
func (s *Service) DeleteUser(ctx context.Context, actor *identity.Actor, id uint) (err error) {
	sc := s.tracer.Start(ctx, "catalog.DeleteUser").WithAttrs(actorAttrs(actor)...)
	defer func() { sc.Fail(err); sc.End() }()
	ctx = sc.Ctx

	if !actor.Authenticated() {
		return cnst.ErrAuthenticationRequired
	}
	u, err := s.loadUser(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.authorize(actor, cnst.ActionManageUsers, authz.UserTarget(u.BusinessID)); err != nil {
		return err
	}
	if u.ID == actor.UserID {
		return errorx.NewFieldError("id", "cannot delete yourself", id)
	}
	if err := s.db.DeleteUser(ctx, u.ID); err != nil {
		if errors.Is(err, cnst.ErrUserHasApprovals) {
			return &errorx.FieldError{Field: "id", Reason: "user has approved products; set is_active to false instead", Value: id, Err: err}
		}
		return errorx.WithResource(resourceUser, err)
	}
	s.logger.Info("user deleted", zap.Uint("user_id", u.ID), zap.Stringer("actor", actor))
	return nil
}

// loadUser fetches a user; users of other businesses are reported as not found
func (s *Service) loadUser(ctx context.Context, actor *identity.Actor, id uint) (*database.User, error) {
	u, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		return nil, errorx.WithResource(resourceUser, err)
	}
	if u.ID != actor.UserID && !actor.SameTenant(u.BusinessID) {
		return nil, errorx.WithResource(resourceUser, cnst.ErrNotFound)
	}
	return u, nil
}

// role returns the stored role, seeding the role table if it is missing
func (s *Service) role(ctx context.Context, name identity.RoleName) (*database.Role, error) {
	role, err := s.db.GetRoleByName(ctx, name.String())
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, cnst.ErrNotFound) {
		return nil, err
	}
	if err := database.InitDefaultRoles(ctx, s.db, s.policy); err != nil {
		return nil, err
	}
	role, err = s.db.GetRoleByName(ctx, name.String())
	return role, errorx.WithResource(resourceRole, err)
}

func (s *Service) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.db.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return errorx.Duplicate("username", username)
	case errors.Is(err, cnst.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *Service) hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", errorx.NewFieldError("password", "must be at least 8 characters", nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", errorx.NewFieldError("password", "must be at most 72 bytes", nil)
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// duplicateAs turns a store conflict into a conflict on field
func duplicateAs(err error, field string, value any) error {
	if errors.Is(err, cnst.ErrConflict) {
		return errorx.Duplicate(field, value)
	}
	return err
}
