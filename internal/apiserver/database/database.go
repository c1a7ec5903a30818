package database

import (
	"context"
	"time"

	"github.com/amoylab/catalog/internal/lifecycle"
)

// Database defines the methods for database operations.
// Lookups that find nothing return cnst.ErrNotFound; unique violations return cnst.ErrConflict.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Transaction runs fn in a transaction carried by the context passed to it.
	// Nested calls join the outer transaction.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// CreateBusiness creates a new business.
	CreateBusiness(ctx context.Context, business *Business) error

	// GetBusinessByID gets a business by ID.
	GetBusinessByID(ctx context.Context, id uint) (*Business, error)

	// GetBusinessByName gets a business by its exact name.
	GetBusinessByName(ctx context.Context, name string) (*Business, error)

	// UpdateBusinessName renames a business.
	UpdateBusinessName(ctx context.Context, id uint, name string) error

	// UpsertRole creates the role or refreshes its permissions.
	UpsertRole(ctx context.Context, role *Role) error

	// GetRoleByName gets a role by name.
	GetRoleByName(ctx context.Context, name string) (*Role, error)

	// ListRoles lists every role ordered by ID.
	ListRoles(ctx context.Context) ([]*Role, error)

	// CreateUser creates a new user.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByID gets a user with role and business loaded.
	GetUserByID(ctx context.Context, id uint) (*User, error)

	// GetUserByUsername gets a user with role and business loaded.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// ListUsersByBusiness lists the users of a business ordered by ID.
	ListUsersByBusiness(ctx context.Context, businessID uint) ([]*User, error)

	// UpdateUser saves the mutable fields of a user.
	UpdateUser(ctx context.Context, user *User) error

	// DeleteUser removes a user and their chat history, and clears created_by on
	// their products. It fails with cnst.ErrUserHasApprovals if the user approved any product.
	DeleteUser(ctx context.Context, id uint) error

	// CreateProduct creates a new product.
	CreateProduct(ctx context.Context, product *Product) error

	// GetProductByID gets a product with its business loaded.
	GetProductByID(ctx context.Context, id uint) (*Product, error)

	// ListProducts returns one page of products matching q and the total match count.
	ListProducts(ctx context.Context, q ProductQuery) ([]*Product, int64, error)

	// UpdateProduct saves a product only if its stored status still equals expected.
	// It returns cnst.ErrConcurrentUpdate otherwise.
	UpdateProduct(ctx context.Context, product *Product, expected lifecycle.Status) error

	// ApproveProduct atomically moves a non-approved product of the business to approved.
	// It returns cnst.ErrAlreadyApproved when the product is already approved.
	ApproveProduct(ctx context.Context, id, businessID, approverID uint, at time.Time) error

	// DeleteProduct removes a product.
	DeleteProduct(ctx context.Context, id uint) error

	// SaveChat saves a chat history entry.
	SaveChat(ctx context.Context, entry *ChatHistory) error

	// ListChat returns one page of a user's chat history, newest first, and the total count.
	ListChat(ctx context.Context, userID uint, offset, limit int) ([]*ChatHistory, int64, error)
}
