package api

import (
	"context"  // Request-scoped cancellation
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes

	"ledger_service/internal/config" // Pagination defaults
	"ledger_service/internal/domain" // Domain models and error taxonomy
	"ledger_service/internal/store"  // Structured filter/sort/page parameters
	"ledger_service/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Fixed-point amounts
)

// TransactionStore is the read side of the ledger store for transactions.
type TransactionStore interface {
	GetTransaction(ctx context.Context, id uint) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter store.TransactionFilter, sort store.Sort, page store.Page) ([]domain.Transaction, int64, error)
}

// TransactionEngine is the request-facing "create transaction" operation.
type TransactionEngine interface {
	CreateTransaction(ctx context.Context, walletID uint, amount decimal.Decimal) (*domain.Transaction, error)
}

// CreateTransactionRequest represents a posting request. The server assigns
// id and txid; the client only names the wallet and the signed amount.
type CreateTransactionRequest struct {
	Amount *decimal.Decimal `json:"amount" binding:"required"` // Signed amount, decimal(18,8)
	Wallet *uint            `json:"wallet" binding:"required"` // Target wallet id
}

// ListTransactionsResponse is the paginated transaction listing payload
type ListTransactionsResponse struct {
	Transactions []domain.Transaction `json:"transactions"` // Page of transactions
	Page         int                  `json:"page"`         // Current page
	PageSize     int                  `json:"page_size"`    // Page size
	Total        int64                `json:"total"`        // Total matching transactions
	TotalPages   int                  `json:"total_pages"`  // Total pages
	Cached       bool                 `json:"cached"`       // Served from cache
}

// CreateTransactionHandler posts a signed amount against a wallet
func CreateTransactionHandler(eng TransactionEngine, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: amount and wallet are required"})
			return
		}
		transaction, err := eng.CreateTransaction(c.Request.Context(), *req.Wallet, *req.Amount)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrInvalidAmount):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be a decimal with at most 18 digits and 8 decimal places"})
			case errors.Is(err, domain.ErrWalletNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			case errors.Is(err, domain.ErrInsufficientBalance):
				// Validation failure naming the violated constraint; nothing was applied
				c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction rejected: wallet balance cannot go negative"})
			default:
				serverError(c, err, "Failed to create transaction")
			}
			return
		}
		// The wallet's balance and every listing that shows it just changed
		invalidateWalletCaches(c.Request.Context(), rdb, transaction.WalletID)
		invalidateTransactionListCaches(c.Request.Context(), rdb)
		c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
	}
}

// GetTransactionHandler returns a single transaction by id
func GetTransactionHandler(ts TransactionStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if rdb != nil {
			var transaction domain.Transaction
			found, err := utils.GetCache(ctx, rdb, transactionCacheKey(id), &transaction)
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"transaction": transaction, "cached": true})
				return
			}
		}
		transaction, err := ts.GetTransaction(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrTransactionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
				return
			}
			serverError(c, err, "Failed to get transaction")
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, transactionCacheKey(id), transaction, cacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"transaction": transaction, "cached": false})
	}
}

// ListTransactionsHandler returns a filtered, sorted, paginated listing
func ListTransactionsHandler(ts TransactionStore, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := transactionFilterFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sort := sortFromQuery(c)
		page := pageFromQuery(c).Normalize(cfg.DefaultPageSize, cfg.MaxPageSize)

		ctx := c.Request.Context()
		cacheKey := transactionListCachePrefix + c.Request.URL.RawQuery
		if rdb != nil {
			var cached ListTransactionsResponse
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			if err == nil && found {
				cached.Cached = true
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		transactions, total, err := ts.ListTransactions(ctx, filter, sort, page)
		if err != nil {
			serverError(c, err, "Failed to list transactions")
			return
		}
		resp := ListTransactionsResponse{
			Transactions: transactions,
			Page:         page.Number,
			PageSize:     page.Size,
			Total:        total,
			TotalPages:   totalPages(total, page.Size),
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, cacheTTL)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// transactionFilterFromQuery translates list query parameters into a store filter
func transactionFilterFromQuery(c *gin.Context) (store.TransactionFilter, error) {
	var f store.TransactionFilter
	var err error
	if f.Amount, err = decimalQuery(c, "amount"); err != nil {
		return f, err
	}
	if f.AmountGTE, err = decimalQuery(c, "amount_gte"); err != nil {
		return f, err
	}
	if f.AmountLTE, err = decimalQuery(c, "amount_lte"); err != nil {
		return f, err
	}
	if f.WalletID, err = uintQuery(c, "wallet"); err != nil {
		return f, err
	}
	if f.TxID, err = uuidQuery(c, "txid"); err != nil {
		return f, err
	}
	return f, nil
}
