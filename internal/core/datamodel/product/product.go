package product

import "time"

type Product struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Slug        string    `gorm:"column:slug;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	Currency    string    `gorm:"column:currency;not null;default:'USD'"`
	StockCount  int       `gorm:"column:stock_count;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
