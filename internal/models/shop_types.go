package models

// Shop is the model for the 'shop' table.
// It is the tenant registry: every other table carries a shop_id pointing here.
type Shop struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name   string `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:uq_shop_name"`
	Domain string `json:"domain" gorm:"type:varchar(255);not null;uniqueIndex:uq_shop_domain"`
	Owner  string `json:"owner" gorm:"type:varchar(255);not null"`
	Email  string `json:"email" gorm:"type:varchar(255);not null"`
}

func (Shop) TableName() string { return "shop" }
