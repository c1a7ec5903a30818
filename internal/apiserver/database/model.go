package database

import (
	"time"

	"github.com/amoylab/catalog/internal/identity"
	"github.com/amoylab/catalog/internal/lifecycle"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Business is a tenant. It owns users and products.
type Business struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(255);uniqueIndex;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Role is global reference data. Permissions is informational; the policy decides.
type Role struct {
	ID          uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string            `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	Permissions datatypes.JSONMap `json:"permissions"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// User belongs to one business. BusinessID is nil only while bootstrapping.
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Username        string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email           string    `json:"email" gorm:"type:varchar(254);not null;uniqueIndex:idx_users_email_business"`
	Password        string    `json:"-" gorm:"not null"`
	BusinessID      *uint     `json:"businessId" gorm:"uniqueIndex:idx_users_email_business"`
	Business        *Business `json:"business,omitempty"`
	RoleID          *uint     `json:"roleId"`
	Role            *Role     `json:"role,omitempty"`
	IsBusinessAdmin bool      `json:"isBusinessAdmin" gorm:"not null;default:false"`
	IsActive        bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// RoleName returns the user's role if it is one of the known roles
func (u *User) RoleName() (identity.RoleName, bool) {
	if u.Role == nil {
		return "", false
	}
	r := identity.RoleName(u.Role.Name)
	return r, r.Valid()
}

// Actor builds the authorization identity of the user. Role must be loaded.
func (u *User) Actor() *identity.Actor {
	var role *identity.RoleName
	if r, ok := u.RoleName(); ok {
		role = &r
	}
	return identity.NewActor(u.ID, u.Username, u.BusinessID, role, u.IsBusinessAdmin)
}

// Product is owned by the business it was created in, for life
type Product struct {
	ID           uint             `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string           `json:"name" gorm:"type:varchar(255);not null"`
	Description  string           `json:"description" gorm:"type:text;not null"`
	Price        decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	Status       lifecycle.Status `json:"status" gorm:"type:varchar(20);not null;index"`
	BusinessID   uint             `json:"businessId" gorm:"not null;index"`
	Business     *Business        `json:"business,omitempty"`
	CreatedByID  *uint            `json:"createdById" gorm:"index"`
	ApprovedByID *uint            `json:"approvedById"`
	CreatedAt    time.Time        `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time        `json:"updatedAt"`
	ApprovedAt   *time.Time       `json:"approvedAt"`
}

// State returns the lifecycle view of the product
func (p *Product) State() lifecycle.State {
	return lifecycle.State{Status: p.Status, ApprovedBy: p.ApprovedByID, ApprovedAt: p.ApprovedAt}
}

// SetState copies a lifecycle state onto the product
func (p *Product) SetState(s lifecycle.State) {
	p.Status = s.Status
	p.ApprovedByID = s.ApprovedBy
	p.ApprovedAt = s.ApprovedAt
}

// ChatHistory is an opaque log entry removed together with its user
type ChatHistory struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID      uint      `json:"userId" gorm:"not null;index"`
	BusinessID  uint      `json:"businessId" gorm:"not null;index"`
	UserMessage string    `json:"userMessage" gorm:"type:text;not null"`
	AIResponse  string    `json:"aiResponse" gorm:"column:ai_response;type:text;not null"`
	Timestamp   time.Time `json:"timestamp" gorm:"not null;index"`
}

// models lists every table in migration order
func models() []any {
	return []any{&Business{}, &Role{}, &User{}, &Product{}, &ChatHistory{}}
}

// Orderable product columns
const (
	OrderCreatedAt = "created_at"
	OrderPrice     = "price"
	OrderName      = "name"
)

// ProductQuery narrows a product listing. Nil or empty fields do not filter.
type ProductQuery struct {
	BusinessID   *uint
	Status       *lifecycle.Status
	BusinessName string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	OrderBy      string
	Desc         bool
	Offset       int
	Limit        int
}
