package models

import "time"

// Customer is the model for the 'customer' table.
// (id, shop_id) is the primary key: an upstream numeric id may repeat across shops.
type Customer struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ShopID    int64     `json:"shop_id" gorm:"primaryKey;autoIncrement:false;uniqueIndex:uq_customer_email_shop,priority:2"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
	FirstName string    `json:"first_name" gorm:"type:varchar(255);not null"`
	LastName  *string   `json:"last_name,omitempty" gorm:"type:varchar(255)"`
	Email     *string   `json:"email,omitempty" gorm:"type:varchar(255);uniqueIndex:uq_customer_email_shop,priority:1"`
	Phone     *string   `json:"phone,omitempty" gorm:"type:varchar(20);index:idx_customer_phone"`
	Tags      *string   `json:"tags,omitempty" gorm:"type:text"`
}

func (Customer) TableName() string { return "customer" }

// Address is the model for the 'address' table.
// Default is advisory: nothing stops two rows of one customer being marked default.
type Address struct {
	ID         int64   `json:"id" gorm:"primaryKey;autoIncrement:false;uniqueIndex:uq_address_id_shop,priority:1"`
	ShopID     int64   `json:"shop_id" gorm:"primaryKey;autoIncrement:false;uniqueIndex:uq_address_id_shop,priority:2;index:idx_address_shop"`
	CustomerID int64   `json:"customer_id" gorm:"not null;index:idx_address_customer"`
	Company    *string `json:"company,omitempty" gorm:"type:varchar(255)"`
	Address1   string  `json:"address1" gorm:"column:address1;type:varchar(255);not null"`
	Address2   *string `json:"address2,omitempty" gorm:"column:address2;type:varchar(255)"`
	City       string  `json:"city" gorm:"type:varchar(100);not null;index:idx_address_city"`
	State      *string `json:"state,omitempty" gorm:"type:varchar(100)"`
	Country    string  `json:"country" gorm:"type:varchar(100);not null"`
	ZipCode    string  `json:"zip_code" gorm:"type:varchar(20);not null"`
	Default    bool    `json:"default" gorm:"column:default;not null;default:false"`
}

func (Address) TableName() string { return "address" }
