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
	"github.com/sirupsen/logrus"    // Logging library
)

// WalletStore is the slice of the ledger store the wallet handlers need.
type WalletStore interface {
	CreateWallet(ctx context.Context, label string, initialBalance decimal.Decimal) (*domain.Wallet, error)
	GetWallet(ctx context.Context, id uint) (*domain.Wallet, error)
	UpdateWalletLabel(ctx context.Context, id uint, label string) (*domain.Wallet, error)
	DeleteWallet(ctx context.Context, id uint) error
	ListWallets(ctx context.Context, filter store.WalletFilter, sort store.Sort, page store.Page) ([]domain.Wallet, int64, error)
}

// CreateWalletRequest represents a wallet creation request
type CreateWalletRequest struct {
	Label   string           `json:"label" binding:"required"` // Wallet label
	Balance *decimal.Decimal `json:"balance"`                  // Optional initial balance, defaults to 0
}

// UpdateWalletRequest represents a wallet label update
type UpdateWalletRequest struct {
	Label string `json:"label" binding:"required"` // New wallet label
}

// ListWalletsResponse is the paginated wallet listing payload
type ListWalletsResponse struct {
	Wallets    []domain.Wallet `json:"wallets"`     // Page of wallets
	Page       int             `json:"page"`        // Current page
	PageSize   int             `json:"page_size"`   // Page size
	Total      int64           `json:"total"`       // Total matching wallets
	TotalPages int             `json:"total_pages"` // Total pages
	Cached     bool            `json:"cached"`      // Served from cache
}

// CreateWalletHandler creates a wallet with an optional initial balance
func CreateWalletHandler(st WalletStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateWalletRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		initial := decimal.Zero
		if req.Balance != nil {
			initial = *req.Balance
		}
		wallet, err := st.CreateWallet(c.Request.Context(), req.Label, initial)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidAmount) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Initial balance must be a non-negative decimal(18,8) value"})
				return
			}
			serverError(c, err, "Failed to create wallet")
			return
		}
		logrus.WithFields(logrus.Fields{
			"wallet_id": wallet.ID,
			"label":     wallet.Label,
			"balance":   wallet.Balance.String(),
		}).Info("Wallet created")
		invalidateWalletCaches(c.Request.Context(), rdb, wallet.ID)
		c.JSON(http.StatusCreated, gin.H{"wallet": wallet})
	}
}

// GetWalletHandler returns a wallet with its transactions
func GetWalletHandler(st WalletStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if rdb != nil {
			var wallet domain.Wallet
			found, err := utils.GetCache(ctx, rdb, walletCacheKey(id), &wallet)
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": true})
				return
			}
		}
		wallet, err := st.GetWallet(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrWalletNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
				return
			}
			serverError(c, err, "Failed to get wallet")
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, walletCacheKey(id), wallet, cacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"wallet": wallet, "cached": false})
	}
}

// UpdateWalletHandler renames a wallet; the balance is not settable
func UpdateWalletHandler(st WalletStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var req UpdateWalletRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		wallet, err := st.UpdateWalletLabel(c.Request.Context(), id, req.Label)
		if err != nil {
			if errors.Is(err, domain.ErrWalletNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
				return
			}
			serverError(c, err, "Failed to update wallet")
			return
		}
		invalidateWalletCaches(c.Request.Context(), rdb, id)
		c.JSON(http.StatusOK, gin.H{"wallet": wallet})
	}
}

// DeleteWalletHandler deletes a wallet and, via cascade, all its transactions
func DeleteWalletHandler(st WalletStore, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		if err := st.DeleteWallet(c.Request.Context(), id); err != nil {
			if errors.Is(err, domain.ErrWalletNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
				return
			}
			serverError(c, err, "Failed to delete wallet")
			return
		}
		logrus.WithFields(logrus.Fields{"wallet_id": id}).Info("Wallet deleted")
		invalidateWalletCaches(c.Request.Context(), rdb, id)
		invalidateAllTransactionCaches(c.Request.Context(), rdb) // Cascade removed its postings
		c.Status(http.StatusNoContent)
	}
}

// ListWalletsHandler returns a filtered, sorted, paginated wallet listing
func ListWalletsHandler(st WalletStore, rdb *redis.Client, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := walletFilterFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sort := sortFromQuery(c)
		page := pageFromQuery(c).Normalize(cfg.DefaultPageSize, cfg.MaxPageSize)

		ctx := c.Request.Context()
		cacheKey := walletListCachePrefix + c.Request.URL.RawQuery
		if rdb != nil {
			var cached ListWalletsResponse
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			if err == nil && found {
				cached.Cached = true
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		wallets, total, err := st.ListWallets(ctx, filter, sort, page)
		if err != nil {
			serverError(c, err, "Failed to list wallets")
			return
		}
		resp := ListWalletsResponse{
			Wallets:    wallets,
			Page:       page.Number,
			PageSize:   page.Size,
			Total:      total,
			TotalPages: totalPages(total, page.Size),
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, resp, cacheTTL)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// walletFilterFromQuery translates list query parameters into a store filter
func walletFilterFromQuery(c *gin.Context) (store.WalletFilter, error) {
	f := store.WalletFilter{
		Label:          c.Query("label"),
		LabelContains:  c.Query("label_contains"),
		LabelIExact:    c.Query("label_iexact"),
		LabelIContains: c.Query("label_icontains"),
	}
	var err error
	if f.Balance, err = decimalQuery(c, "balance"); err != nil {
		return f, err
	}
	if f.BalanceGTE, err = decimalQuery(c, "balance_gte"); err != nil {
		return f, err
	}
	if f.BalanceLTE, err = decimalQuery(c, "balance_lte"); err != nil {
		return f, err
	}
	return f, nil
}

// serverError maps infrastructure failures to 503 (safe to retry, nothing
// committed) and everything else to 500
func serverError(c *gin.Context, err error, message string) {
	logrus.WithFields(logrus.Fields{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	}).Error(message)
	if errors.Is(err, domain.ErrStorageUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}
