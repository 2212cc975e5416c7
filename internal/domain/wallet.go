package domain

import "github.com/shopspring/decimal"

// Wallet Model
type Wallet struct {
	ID      uint            `gorm:"primaryKey" json:"id"`                                                                         // Primary key
	Label   string          `gorm:"size:255;not null" json:"label"`                                                               // Human-readable label, freely editable
	Balance decimal.Decimal `gorm:"type:decimal(18,8);not null;default:0;check:balance_non_negative,balance >= 0" json:"balance"` // Sum of all postings, never negative
	// One-to-many relationship with Transaction; deleting a wallet removes its postings
	Transactions []Transaction `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"transactions"`
}
