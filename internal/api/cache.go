package api

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"ledger_service/internal/utils"
)

const (
	walletListCachePrefix      = "wallets:list:"
	transactionCachePrefix     = "transactions:"
	transactionListCachePrefix = transactionCachePrefix + "list:"

	cacheTTL = 60 * time.Second
)

func walletCacheKey(id uint) string {
	return "wallet:id:" + strconv.Itoa(int(id))
}

func transactionCacheKey(id uint) string {
	return transactionCachePrefix + "id:" + strconv.Itoa(int(id))
}

// invalidateWalletCaches drops the cached wallet and every cached wallet
// listing after a mutation.
func invalidateWalletCaches(ctx context.Context, rdb *redis.Client, walletID uint) {
	if rdb == nil {
		return
	}
	_ = utils.DeleteCache(ctx, rdb, walletCacheKey(walletID))
	_ = utils.DeleteCacheByPrefix(ctx, rdb, walletListCachePrefix)
}

// invalidateTransactionListCaches drops cached transaction listings. Cached
// single transactions are immutable and only purged on wallet delete.
func invalidateTransactionListCaches(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	_ = utils.DeleteCacheByPrefix(ctx, rdb, transactionListCachePrefix)
}

// invalidateAllTransactionCaches drops every cached transaction, listings
// included. Used after a wallet delete cascades postings away.
func invalidateAllTransactionCaches(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	_ = utils.DeleteCacheByPrefix(ctx, rdb, transactionCachePrefix)
}
