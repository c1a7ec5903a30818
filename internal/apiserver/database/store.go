package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amoylab/catalog/internal/common/cnst"
	"github.com/amoylab/catalog/internal/lifecycle"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// store is the gorm implementation shared by every driver
type store struct {
	db *gorm.DB
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := gormDB.AutoMigrate(models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return gormDB, nil
}

// translateError maps driver errors onto the catalog sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return cnst.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isDuplicateKey(err):
		return fmt.Errorf("%w: %v", cnst.ErrConflict, err)
	}
	return err
}

func isDuplicateKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// Close closes the database connection
func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if TransactionFromContext(ctx) != nil {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func (s *store) CreateBusiness(ctx context.Context, business *Business) error {
	return translateError(getDBFromContext(ctx, s.db).Create(business).Error)
}

func (s *store) GetBusinessByID(ctx context.Context, id uint) (*Business, error) {
	var business Business
	if err := getDBFromContext(ctx, s.db).First(&business, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &business, nil
}

func (s *store) GetBusinessByName(ctx context.Context, name string) (*Business, error) {
	var business Business
	if err := getDBFromContext(ctx, s.db).Where("name = ?", name).First(&business).Error; err != nil {
		return nil, translateError(err)
	}
	return &business, nil
}

func (s *store) UpdateBusinessName(ctx context.Context, id uint, name string) error {
	result := getDBFromContext(ctx, s.db).
		Model(&Business{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "updated_at": time.Now()})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

func (s *store) UpsertRole(ctx context.Context, role *Role) error {
	err := getDBFromContext(ctx, s.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"permissions", "updated_at"}),
		}).
		Create(role).Error
	if err != nil {
		return translateError(err)
	}
	// mysql does not report the id of an updated row
	stored, err := s.GetRoleByName(ctx, role.Name)
	if err != nil {
		return err
	}
	role.ID = stored.ID
	return nil
}

func (s *store) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	if err := getDBFromContext(ctx, s.db).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, translateError(err)
	}
	return &role, nil
}

func (s *store) ListRoles(ctx context.Context) ([]*Role, error) {
	var roles []*Role
	err := getDBFromContext(ctx, s.db).Order("id asc").Find(&roles).Error
	return roles, translateError(err)
}

func (s *store) CreateUser(ctx context.Context, user *User) error {
	return translateError(getDBFromContext(ctx, s.db).Omit(clause.Associations).Create(user).Error)
}

func (s *store) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	err := getDBFromContext(ctx, s.db).
		Preload("Role").
		Preload("Business").
		First(&user, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *store) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := getDBFromContext(ctx, s.db).
		Preload("Role").
		Preload("Business").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *store) ListUsersByBusiness(ctx context.Context, businessID uint) ([]*User, error) {
	var users []*User
	err := getDBFromContext(ctx, s.db).
		Preload("Role").
		Where("business_id = ?", businessID).
		Order("id asc").
		Find(&users).Error
	return users, translateError(err)
}

func (s *store) UpdateUser(ctx context.Context, user *User) error {
	result := getDBFromContext(ctx, s.db).
		Model(&User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":             user.Email,
			"password":          user.Password,
			"role_id":           user.RoleID,
			"is_business_admin": user.IsBusinessAdmin,
			"is_active":         user.IsActive,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

func (s *store) DeleteUser(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(ctx context.Context) error {
		db := getDBFromContext(ctx, s.db)
		// approved_by is only ever set on approved products and must stay set
		var approvals int64
		if err := db.Model(&Product{}).Where("approved_by_id = ?", id).Count(&approvals).Error; err != nil {
			return translateError(err)
		}
		if approvals > 0 {
			return cnst.ErrUserHasApprovals
		}
		if err := db.Model(&Product{}).Where("created_by_id = ?", id).Update("created_by_id", nil).Error; err != nil {
			return translateError(err)
		}
		if err := db.Where("user_id = ?", id).Delete(&ChatHistory{}).Error; err != nil {
			return translateError(err)
		}
		result := db.Delete(&User{}, id)
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected == 0 {
			return cnst.ErrNotFound
		}
		return nil
	})
}

func (s *store) CreateProduct(ctx context.Context, product *Product) error {
	return translateError(getDBFromContext(ctx, s.db).Omit(clause.Associations).Create(product).Error)
}

func (s *store) GetProductByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := getDBFromContext(ctx, s.db).Preload("Business").First(&product, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

var productOrderColumns = map[string]string{
	OrderCreatedAt: "products.created_at",
	OrderPrice:     "products.price",
	OrderName:      "products.name",
}

func (s *store) ListProducts(ctx context.Context, q ProductQuery) ([]*Product, int64, error) {
	db := getDBFromContext(ctx, s.db).Model(&Product{})
	if q.BusinessID != nil {
		db = db.Where("products.business_id = ?", *q.BusinessID)
	}
	if q.Status != nil {
		db = db.Where("products.status = ?", string(*q.Status))
	}
	if q.BusinessName != "" {
		db = db.Joins("JOIN businesses ON businesses.id = products.business_id").
			Where("LOWER(businesses.name) LIKE ? ESCAPE '!'", likePattern(q.BusinessName))
	}
	if q.MinPrice != nil {
		db = db.Where("products.price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("products.price <= ?", *q.MaxPrice)
	}
	if q.Search != "" {
		pattern := likePattern(q.Search)
		db = db.Where("(LOWER(products.name) LIKE ? ESCAPE '!' OR LOWER(products.description) LIKE ? ESCAPE '!')", pattern, pattern)
	}

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	column, ok := productOrderColumns[q.OrderBy]
	if !ok {
		column = productOrderColumns[OrderCreatedAt]
	}
	db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: column, Raw: true}, Desc: q.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "products.id", Raw: true}, Desc: q.Desc})
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	var products []*Product
	if err := db.Select("products.*").Preload("Business").Find(&products).Error; err != nil {
		return nil, 0, translateError(err)
	}
	return products, total, nil
}

// '!' is the LIKE escape character; a backslash would need quoting on mysql.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a case-insensitive substring pattern; wildcards in s match literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

func (s *store) UpdateProduct(ctx context.Context, product *Product, expected lifecycle.Status) error {
	product.UpdatedAt = time.Now()
	result := getDBFromContext(ctx, s.db).
		Model(&Product{}).
		Where("id = ? AND status = ?", product.ID, string(expected)).
		Updates(map[string]any{
			"name":           product.Name,
			"description":    product.Description,
			"price":          product.Price,
			"status":         string(product.Status),
			"approved_by_id": product.ApprovedByID,
			"approved_at":    product.ApprovedAt,
			"updated_at":     product.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := s.GetProductByID(ctx, product.ID); err != nil {
			return err
		}
		return cnst.ErrConcurrentUpdate
	}
	return nil
}

func (s *store) ApproveProduct(ctx context.Context, id, businessID, approverID uint, at time.Time) error {
	result := getDBFromContext(ctx, s.db).
		Model(&Product{}).
		Where("id = ? AND business_id = ? AND status <> ?", id, businessID, string(lifecycle.StatusApproved)).
		Updates(map[string]any{
			"status":         string(lifecycle.StatusApproved),
			"approved_by_id": approverID,
			"approved_at":    at,
			"updated_at":     at,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}
	var product Product
	err := getDBFromContext(ctx, s.db).
		Where("id = ? AND business_id = ?", id, businessID).
		First(&product).Error
	if err != nil {
		return translateError(err)
	}
	if product.Status == lifecycle.StatusApproved {
		return cnst.ErrAlreadyApproved
	}
	return cnst.ErrConcurrentUpdate
}

func (s *store) DeleteProduct(ctx context.Context, id uint) error {
	result := getDBFromContext(ctx, s.db).Delete(&Product{}, id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return cnst.ErrNotFound
	}
	return nil
}

func (s *store) SaveChat(ctx context.Context, entry *ChatHistory) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	return translateError(getDBFromContext(ctx, s.db).Create(entry).Error)
}

func (s *store) ListChat(ctx context.Context, userID uint, offset, limit int) ([]*ChatHistory, int64, error) {
	db := getDBFromContext(ctx, s.db).Model(&ChatHistory{}).Where("user_id = ?", userID)

	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var entries []*ChatHistory
	err := db.Order("timestamp desc").Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	return entries, total, translateError(err)
}
