package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger_service/internal/domain"
)

// Store is the slice of the ledger store the engine needs.
type Store interface {
	ApplyTransaction(ctx context.Context, walletID uint, amount decimal.Decimal, txid uuid.UUID) (*domain.Transaction, error)
}

// Engine is the request-facing "create transaction" operation. It mints the
// external txid, delegates the atomic posting to the store, and passes the
// store's outcome through unmasked. It performs no retries and no batching;
// each call is a single attempt with a definite outcome.
type Engine struct {
	store Store
}

// New creates a transaction engine backed by the given store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// CreateTransaction posts a signed amount against a wallet and returns the
// persisted transaction. A fresh txid is generated per call, before the store
// round-trip, so a caller-side retry always produces a new external handle.
func (e *Engine) CreateTransaction(ctx context.Context, walletID uint, amount decimal.Decimal) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	txid := uuid.New()
	transaction, err := e.store.ApplyTransaction(ctx, walletID, amount, txid)
	if err != nil {
		if errors.Is(err, domain.ErrStorageUnavailable) {
			logrus.WithFields(logrus.Fields{
				"wallet_id": walletID,
				"txid":      txid,
				"amount":    amount.String(),
				"error":     err.Error(),
			}).Error("Transaction failed") // Nothing committed; the caller may retry the whole call
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"wallet_id": walletID,
		"txid":      transaction.TxID,
		"amount":    amount.String(),
	}).Info("Transaction created")
	return transaction, nil
}
