package domain

import "errors"

var (
	// ErrInvalidAmount signals a malformed amount: too many decimal places,
	// out of range, or a negative initial balance on wallet creation.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrWalletNotFound signals that the referenced wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrTransactionNotFound signals that the referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInsufficientBalance signals a posting that would drive the wallet
	// balance below zero. Nothing is applied when this is returned.
	ErrInsufficientBalance = errors.New("wallet balance cannot go negative")

	// ErrDuplicateTxID signals a txid collision on insert.
	ErrDuplicateTxID = errors.New("txid already exists")

	// ErrStorageUnavailable signals an infrastructure failure (timeout,
	// connection loss). Nothing committed, so the whole operation is safe to retry.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
