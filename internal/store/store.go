package store

import (
	"context"

	"github.com/01moynul/tenantdesk-golang/internal/logger"
	"github.com/01moynul/tenantdesk-golang/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Store is the single-record write path and the handful of lookups the auth and webhook
// flows need. Each insert is its own transaction.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: logger.OrNop(log)}
}

// DB exposes the underlying handle for callers that compose their own queries.
func (s *Store) DB() *gorm.DB { return s.db }

// insertRow creates row and reads it back by keys inside one transaction, so defaults applied
// by the database are visible in the returned value.
func insertRow[T any](ctx context.Context, s *Store, entity string, row *T, keys map[string]any) (*T, error) {
	var fresh T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return tx.Where(keys).Take(&fresh).Error
	})
	if err != nil {
		err = TranslateError(entity, err)
		s.log.Debug("Insert failed", zap.String("entity", entity), zap.Any("key", keys), zap.Error(err))
		return nil, err
	}
	s.log.Debug("Inserted row", zap.String("entity", entity), zap.Any("key", keys))
	return &fresh, nil
}

// --- Lookups ---

func (s *Store) ShopByID(ctx context.Context, id int64) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&shop).Error; err != nil {
		return nil, TranslateError("shop", err)
	}
	return &shop, nil
}

// ShopByDomain resolves a tenant from its storefront domain (webhooks carry only that).
func (s *Store) ShopByDomain(ctx context.Context, domain string) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.WithContext(ctx).Where("domain = ?", domain).Take(&shop).Error; err != nil {
		return nil, TranslateError("shop", err)
	}
	return &shop, nil
}

// TenantUsersByEmail returns every principal using email, one per shop, ordered by shop.
func (s *Store) TenantUsersByEmail(ctx context.Context, email string) ([]models.TenantUser, error) {
	var users []models.TenantUser
	err := s.db.WithContext(ctx).
		Where("email = ?", email).
		Order("shop_id ASC").
		Find(&users).Error
	if err != nil {
		return nil, TranslateError("tenant_users", err)
	}
	return users, nil
}

func (s *Store) TenantUser(ctx context.Context, id int64) (*models.TenantUser, error) {
	var user models.TenantUser
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		return nil, TranslateError("tenant_users", err)
	}
	return &user, nil
}
