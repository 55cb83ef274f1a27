package models

import (
	"time"

	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/channel"
	"github.com/Md-Tanvir-Ahamed-Shanto/brandsdiscount-backend-sub000/internal/domain/inventory"
)

// StockItemModel is the persistence model for the StockItem domain entity.
// One row per SKU; the listing flags mirror which channels currently carry
// the SKU so propagation can skip unlisted channels without a remote call.
type StockItemModel struct {
	SKU             string    `gorm:"type:varchar(64);primary_key"`
	StockQuantity   int64     `gorm:"not null;default:0"`
	ListedEbayOne   bool      `gorm:"not null;default:false"`
	ListedEbayTwo   bool      `gorm:"not null;default:false"`
	ListedEbayThree bool      `gorm:"not null;default:false"`
	ListedWalmart   bool      `gorm:"not null;default:false"`
	ListedSears     bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockItemModel) TableName() string {
	return "stock_items"
}

// ToDomain converts the persistence model to a domain StockItem entity.
func (m *StockItemModel) ToDomain() *inventory.StockItem {
	return &inventory.StockItem{
		SKU:           m.SKU,
		StockQuantity: m.StockQuantity,
		Listings: map[channel.Code]bool{
			channel.CodeEbayOne:   m.ListedEbayOne,
			channel.CodeEbayTwo:   m.ListedEbayTwo,
			channel.CodeEbayThree: m.ListedEbayThree,
			channel.CodeWalmart:   m.ListedWalmart,
			channel.CodeSears:     m.ListedSears,
		},
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain StockItem entity.
func (m *StockItemModel) FromDomain(s *inventory.StockItem) {
	m.SKU = s.SKU
	m.StockQuantity = s.StockQuantity
	m.ListedEbayOne = s.Listings[channel.CodeEbayOne]
	m.ListedEbayTwo = s.Listings[channel.CodeEbayTwo]
	m.ListedEbayThree = s.Listings[channel.CodeEbayThree]
	m.ListedWalmart = s.Listings[channel.CodeWalmart]
	m.ListedSears = s.Listings[channel.CodeSears]
	m.UpdatedAt = s.UpdatedAt
}
