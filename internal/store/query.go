package store

import (
	"errors"

	"github.com/go-sql-driver/mysql" // MySQL driver errors
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ledger_service/internal/domain"
)

// WalletFilter narrows a wallet listing. Zero-valued fields are ignored.
type WalletFilter struct {
	Label          string           // Exact, case-sensitive match
	LabelContains  string           // Case-sensitive substring match
	LabelIExact    string           // Case-insensitive exact match
	LabelIContains string           // Case-insensitive substring match
	Balance        *decimal.Decimal // Exact balance
	BalanceGTE     *decimal.Decimal // Balance lower bound
	BalanceLTE     *decimal.Decimal // Balance upper bound
}

// TransactionFilter narrows a transaction listing. Nil fields are ignored.
type TransactionFilter struct {
	Amount    *decimal.Decimal // Exact amount
	AmountGTE *decimal.Decimal // Amount lower bound
	AmountLTE *decimal.Decimal // Amount upper bound
	WalletID  *uint            // Owning wallet
	TxID      *uuid.UUID       // External transaction handle
}

// Sort names a result ordering. Fields outside the listing's whitelist fall
// back to the listing's default order.
type Sort struct {
	Field string
	Desc  bool
}

// Page is offset pagination; Normalize clamps it against configured bounds.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page number and size so a hostile or sloppy caller
// cannot request page 0 or an unbounded result set.
func (p Page) Normalize(defaultSize, maxSize int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = defaultSize
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}

func (f WalletFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Label != "" {
		q = q.Where("label = BINARY ?", f.Label)
	}
	if f.LabelContains != "" {
		q = q.Where("label LIKE BINARY ?", "%"+escapeLike(f.LabelContains)+"%")
	}
	if f.LabelIExact != "" {
		q = q.Where("LOWER(label) = LOWER(?)", f.LabelIExact)
	}
	if f.LabelIContains != "" {
		q = q.Where("LOWER(label) LIKE LOWER(?)", "%"+escapeLike(f.LabelIContains)+"%")
	}
	if f.Balance != nil {
		q = q.Where("balance = ?", *f.Balance)
	}
	if f.BalanceGTE != nil {
		q = q.Where("balance >= ?", *f.BalanceGTE)
	}
	if f.BalanceLTE != nil {
		q = q.Where("balance <= ?", *f.BalanceLTE)
	}
	return q
}

func (f TransactionFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Amount != nil {
		q = q.Where("amount = ?", *f.Amount)
	}
	if f.AmountGTE != nil {
		q = q.Where("amount >= ?", *f.AmountGTE)
	}
	if f.AmountLTE != nil {
		q = q.Where("amount <= ?", *f.AmountLTE)
	}
	if f.WalletID != nil {
		q = q.Where("wallet_id = ?", *f.WalletID)
	}
	if f.TxID != nil {
		q = q.Where("tx_id = ?", *f.TxID)
	}
	return q
}

// escapeLike neutralizes LIKE metacharacters in user-supplied substrings
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// Sortable columns per listing; anything else falls back to the default.
var (
	walletSortFields      = map[string]string{"id": "id", "balance": "balance", "label": "label"}
	transactionSortFields = map[string]string{"id": "id", "amount": "amount"}
)

func orderClause(s Sort, allowed map[string]string, fallback string) string {
	col, ok := allowed[s.Field]
	if !ok {
		return fallback
	}
	if s.Desc {
		return col + " DESC"
	}
	return col
}

// MySQL server error numbers the store reacts to.
const (
	mysqlDuplicateEntry = 1062 // ER_DUP_ENTRY
	mysqlCheckViolated  = 3819 // ER_CHECK_CONSTRAINT_VIOLATED
)

// translateWriteError maps driver errors onto the domain taxonomy. A CHECK
// violation means the balance_non_negative constraint fired behind the
// application-level pre-check, so it surfaces the same way the pre-check does.
func translateWriteError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlCheckViolated:
			return domain.ErrInsufficientBalance
		case mysqlDuplicateEntry:
			return domain.ErrDuplicateTxID
		}
	}
	return storageErr(err)
}

// storageErr tags infrastructure failures so callers can tell "retry the
// whole thing" apart from the rest of the taxonomy.
func storageErr(err error) error {
	return errors.Join(domain.ErrStorageUnavailable, err)
}
