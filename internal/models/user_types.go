package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Roles a TenantUser can hold.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// TenantUser is the model for the 'tenant_users' table.
// The same email may exist once per shop, each row being a different principal.
type TenantUser struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ShopID    int64     `json:"shop_id" gorm:"not null;uniqueIndex:uq_tenant_email_shop,priority:2;index"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:uq_tenant_email_shop,priority:1"`
	PassHash  string    `json:"-" gorm:"column:pass_hash;type:varchar(255);not null"`
	Role      string    `json:"role" gorm:"type:varchar(50);not null"`
	PicURL    *string   `json:"pic_url,omitempty" gorm:"column:pic_url;type:varchar(500)"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;autoCreateTime:false"`
}

func (TenantUser) TableName() string { return "tenant_users" }

var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword returns the bcrypt hash stored in TenantUser.PassHash.
func HashPassword(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
