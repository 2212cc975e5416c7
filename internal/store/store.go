package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger_service/internal/domain"
)

// LedgerStore is the durable state holder for wallets and transactions and
// the sole enforcer of the non-negative-balance invariant. All balance
// mutation funnels through ApplyTransaction; no other code writes balances.
type LedgerStore struct {
	db              *gorm.DB
	defaultPageSize int
	maxPageSize     int
}

// New creates a LedgerStore with the given pagination bounds.
func New(db *gorm.DB, defaultPageSize, maxPageSize int) *LedgerStore {
	return &LedgerStore{
		db:              db,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// CreateWallet creates a wallet. The initial balance must be non-negative;
// after creation the balance can only change through ApplyTransaction.
func (s *LedgerStore) CreateWallet(ctx context.Context, label string, initialBalance decimal.Decimal) (*domain.Wallet, error) {
	if initialBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if err := domain.ValidateAmount(initialBalance); err != nil {
		return nil, err
	}
	wallet := domain.Wallet{Label: label, Balance: initialBalance}
	if err := s.db.WithContext(ctx).Create(&wallet).Error; err != nil {
		return nil, translateWriteError(err)
	}
	wallet.Transactions = []domain.Transaction{} // New wallet has no postings yet
	return &wallet, nil
}

// fillTransactions keeps a postings-free wallet marshaling its transactions
// as an empty list rather than null.
func fillTransactions(w *domain.Wallet) {
	if w.Transactions == nil {
		w.Transactions = []domain.Transaction{}
	}
}

// GetWallet returns a wallet with its transactions preloaded.
func (s *LedgerStore) GetWallet(ctx context.Context, id uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := s.db.WithContext(ctx).Preload("Transactions").First(&wallet, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, storageErr(err)
	}
	fillTransactions(&wallet)
	return &wallet, nil
}

// UpdateWalletLabel renames a wallet. The balance is never settable here.
func (s *LedgerStore) UpdateWalletLabel(ctx context.Context, id uint, label string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Transactions").First(&wallet, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrWalletNotFound
			}
			return storageErr(err)
		}
		if err := tx.Model(&wallet).Update("label", label).Error; err != nil {
			return storageErr(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	fillTransactions(&wallet)
	return &wallet, nil
}

// DeleteWallet removes a wallet; the foreign key cascade removes its
// transactions in the same commit.
func (s *LedgerStore) DeleteWallet(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&domain.Wallet{}, id)
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}

// ListWallets returns a filtered, sorted page of wallets plus the total
// number of matches before pagination.
func (s *LedgerStore) ListWallets(ctx context.Context, filter WalletFilter, sort Sort, page Page) ([]domain.Wallet, int64, error) {
	page = page.Normalize(s.defaultPageSize, s.maxPageSize)

	var total int64
	if err := filter.apply(s.db.WithContext(ctx).Model(&domain.Wallet{})).Count(&total).Error; err != nil {
		return nil, 0, storageErr(err)
	}

	wallets := []domain.Wallet{}
	err := filter.apply(s.db.WithContext(ctx).Model(&domain.Wallet{})).
		Order(orderClause(sort, walletSortFields, "id")).
		Limit(page.Size).
		Offset(page.offset()).
		Find(&wallets).Error
	if err != nil {
		return nil, 0, storageErr(err)
	}
	// List rows skip the preload; the field still serializes as a list
	for i := range wallets {
		fillTransactions(&wallets[i])
	}
	return wallets, total, nil
}

// ApplyTransaction atomically posts amount against the wallet: it locks the
// wallet row, recomputes the balance, and persists the new balance together
// with the transaction record in one commit. A posting that would drive the
// balance negative aborts with ErrInsufficientBalance and no side effects.
//
// The row lock serializes concurrent postings against the same wallet: the
// loser of a race blocks until the winner commits and then reads the
// already-applied balance, so updates are never lost. The
// balance_non_negative CHECK constraint backs the pre-check in case any
// future code path mutates balances without it.
func (s *LedgerStore) ApplyTransaction(ctx context.Context, walletID uint, amount decimal.Decimal, txid uuid.UUID) (*domain.Transaction, error) {
	var created domain.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var wallet domain.Wallet
		// SELECT ... FOR UPDATE: exclusive access to the balance until commit
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&wallet, walletID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrWalletNotFound
			}
			return storageErr(err)
		}

		newBalance := wallet.Balance.Add(amount)
		if newBalance.IsNegative() {
			return domain.ErrInsufficientBalance
		}

		if err := tx.Model(&wallet).Update("balance", newBalance).Error; err != nil {
			return translateWriteError(err)
		}

		created = domain.Transaction{WalletID: walletID, TxID: txid, Amount: amount}
		if err := tx.Create(&created).Error; err != nil {
			return translateWriteError(err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			// Rolled back: neither the balance nor the transaction row changed
			logrus.WithFields(logrus.Fields{
				"wallet_id": walletID,
				"amount":    amount.String(),
			}).Warn("Posting rejected: balance would go negative")
		}
		return nil, err
	}
	return &created, nil
}

// GetTransaction returns a single transaction by its internal id.
func (s *LedgerStore) GetTransaction(ctx context.Context, id uint) (*domain.Transaction, error) {
	var transaction domain.Transaction
	err := s.db.WithContext(ctx).First(&transaction, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, storageErr(err)
	}
	return &transaction, nil
}

// ListTransactions returns a filtered, sorted page of transactions plus the
// total number of matches. Default order is newest first.
func (s *LedgerStore) ListTransactions(ctx context.Context, filter TransactionFilter, sort Sort, page Page) ([]domain.Transaction, int64, error) {
	page = page.Normalize(s.defaultPageSize, s.maxPageSize)

	var total int64
	if err := filter.apply(s.db.WithContext(ctx).Model(&domain.Transaction{})).Count(&total).Error; err != nil {
		return nil, 0, storageErr(err)
	}

	transactions := []domain.Transaction{}
	err := filter.apply(s.db.WithContext(ctx).Model(&domain.Transaction{})).
		Order(orderClause(sort, transactionSortFields, "id DESC")).
		Limit(page.Size).
		Offset(page.offset()).
		Find(&transactions).Error
	if err != nil {
		return nil, 0, storageErr(err)
	}
	return transactions, total, nil
}
