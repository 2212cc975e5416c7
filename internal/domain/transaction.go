package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction Model. A transaction is an immutable signed posting against
// exactly one wallet: created once, never updated, deleted only when its
// wallet is deleted.
type Transaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                           // Primary key
	TxID      uuid.UUID       `gorm:"type:char(36);uniqueIndex;not null" json:"txid"` // External handle, globally unique, never reused
	WalletID  uint            `gorm:"not null;index" json:"wallet"`                   // Foreign key to the owning Wallet
	Amount    decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"amount"`      // Signed amount: negative = debit, positive = credit
	CreatedAt int64           `gorm:"autoCreateTime:milli" json:"created_at"`         // Timestamp of creation in milliseconds
}
