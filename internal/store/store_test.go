package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	sqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ledger_service/internal/domain"
)

const (
	selectWalletForUpdate = "SELECT \\* FROM `wallets` WHERE `wallets`\\.`id` = \\?.*FOR UPDATE"
	updateWalletBalance   = "UPDATE `wallets` SET `balance`=\\?"
	insertTransaction     = "INSERT INTO `transactions`"
)

// newMockedStore backs a LedgerStore with a sqlmock connection so the SQL the
// store emits, and nothing else, reaches the database.
func newMockedStore(t *testing.T) (*LedgerStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return New(db, 20, 100), mock
}

func walletRow(balance string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "label", "balance"}).AddRow(1, "Test Wallet", balance)
}

func TestApplyTransaction_Debit(t *testing.T) {
	st, mock := newMockedStore(t)
	txid := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).WillReturnRows(walletRow("100.00000000"))
	mock.ExpectExec(updateWalletBalance).
		WithArgs("50.00000000", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertTransaction).
		WithArgs(txid.String(), 1, "-50.00000000", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	created, err := st.ApplyTransaction(context.Background(), 1, decimal.RequireFromString("-50.00000000"), txid)

	require.NoError(t, err)
	assert.Equal(t, uint(7), created.ID)
	assert.Equal(t, txid, created.TxID)
	assert.Equal(t, uint(1), created.WalletID)
	assert.True(t, created.Amount.Equal(decimal.RequireFromString("-50.00000000")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransaction_InsufficientBalanceRollsBack(t *testing.T) {
	st, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).WillReturnRows(walletRow("100.00000000"))
	mock.ExpectRollback()

	created, err := st.ApplyTransaction(context.Background(), 1, decimal.RequireFromString("-150.00000000"), uuid.New())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	// No UPDATE and no INSERT reached the database before the rollback
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransaction_SequentialPostings(t *testing.T) {
	st, mock := newMockedStore(t)

	// -30.00000000 against a balance of 100.00000000
	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).WillReturnRows(walletRow("100.00000000"))
	mock.ExpectExec(updateWalletBalance).
		WithArgs("70.00000000", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertTransaction).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	// +20.00000000 observes the committed 70.00000000
	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).WillReturnRows(walletRow("70.00000000"))
	mock.ExpectExec(updateWalletBalance).
		WithArgs("90.00000000", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertTransaction).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	_, err := st.ApplyTransaction(context.Background(), 1, decimal.RequireFromString("-30.00000000"), uuid.New())
	require.NoError(t, err)
	_, err = st.ApplyTransaction(context.Background(), 1, decimal.RequireFromString("20.00000000"), uuid.New())
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransaction_WalletMissing(t *testing.T) {
	st, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "balance"}))
	mock.ExpectRollback()

	created, err := st.ApplyTransaction(context.Background(), 42, decimal.RequireFromString("10"), uuid.New())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransaction_CheckConstraintBackstop(t *testing.T) {
	st, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).WillReturnRows(walletRow("100.00000000"))
	mock.ExpectExec(updateWalletBalance).
		WillReturnError(&sqldriver.MySQLError{Number: 3819, Message: "Check constraint 'balance_non_negative' is violated."})
	mock.ExpectRollback()

	created, err := st.ApplyTransaction(context.Background(), 1, decimal.RequireFromString("-50.00000000"), uuid.New())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransaction_DuplicateTxIDRollsBack(t *testing.T) {
	st, mock := newMockedStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(selectWalletForUpdate).WillReturnRows(walletRow("100.00000000"))
	mock.ExpectExec(updateWalletBalance).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertTransaction).
		WillReturnError(&sqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	created, err := st.ApplyTransaction(context.Background(), 1, decimal.RequireFromString("-50.00000000"), uuid.New())

	assert.Nil(t, created)
	assert.ErrorIs(t, err, domain.ErrDuplicateTxID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWallet(t *testing.T) {
	st, mock := newMockedStore(t)

	mock.ExpectExec("DELETE FROM `wallets` WHERE `wallets`\\.`id` = \\?").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, st.DeleteWallet(context.Background(), 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWallet_MissingRow(t *testing.T) {
	st, mock := newMockedStore(t)

	mock.ExpectExec("DELETE FROM `wallets` WHERE `wallets`\\.`id` = \\?").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, st.DeleteWallet(context.Background(), 9), domain.ErrWalletNotFound)
}

func TestGetTransaction_GoneAfterWalletDelete(t *testing.T) {
	st, mock := newMockedStore(t)

	// The cascade removed the row together with its wallet
	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE `transactions`\\.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tx_id", "wallet_id", "amount"}))

	transaction, err := st.GetTransaction(context.Background(), 10)

	assert.Nil(t, transaction)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestGetWallet_NoPostingsKeepsEmptyList(t *testing.T) {
	st, mock := newMockedStore(t)

	mock.ExpectQuery("SELECT \\* FROM `wallets` WHERE `wallets`\\.`id` = \\?").
		WillReturnRows(walletRow("0"))
	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE `transactions`\\.`wallet_id`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tx_id", "wallet_id", "amount"}))

	wallet, err := st.GetWallet(context.Background(), 1)

	require.NoError(t, err)
	assert.NotNil(t, wallet.Transactions)
	assert.Len(t, wallet.Transactions, 0)
}

func TestListWallets_NoPostingsKeepsEmptyList(t *testing.T) {
	st, mock := newMockedStore(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `wallets`").
		WillReturnRows(walletRow("0"))

	wallets, total, err := st.ListWallets(context.Background(), WalletFilter{}, Sort{}, Page{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, wallets, 1)
	assert.NotNil(t, wallets[0].Transactions)
}
