package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/janhq/trading-agents/internal/configs"
	"github.com/janhq/trading-agents/internal/infrastructure/cache"
)

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Read and invalidate shared cache entries",
		Long: `Read and invalidate entries in the cache configured by CACHE_BACKEND and REDIS_URL.
The in-memory backend is private to each process, so these commands need redis.`,
	}
	cacheCmd.PersistentFlags().Duration("timeout", 10*time.Second, "Timeout for the whole command")

	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored at key",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheGet,
	}
	getCmd.Flags().StringP("format", "o", formatJSON, "Output format: json, yaml")

	ttlCmd := &cobra.Command{
		Use:   "ttl <key>",
		Short: "Print remaining seconds (-1 no expiry, -2 missing)",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheTTL,
	}

	clearCmd := &cobra.Command{
		Use:   "clear <pattern>",
		Short: "Delete every key matching a glob pattern",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheClear,
	}

	invalidateCmd := &cobra.Command{
		Use:   "invalidate <symbol>",
		Short: "Drop cached market data and analysis for a symbol",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheInvalidate,
	}

	cacheCmd.AddCommand(getCmd, ttlCmd, clearCmd, invalidateCmd)
	return cacheCmd
}

// withStore opens the configured redis backend for the duration of fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store *cache.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.CacheBackend != configs.CacheBackendRedis {
		return fmt.Errorf("cache commands need CACHE_BACKEND=redis, got %q", cfg.CacheBackend)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	log := cliLogger(cmd)
	manager, err := cache.NewRedisManager(ctx, cfg.RedisOptions(), log)
	if err != nil {
		return err
	}
	store := cache.NewStore(cache.NewRedisBackend(manager), log)
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return fn(ctx, store)
}

func runCacheGet(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *cache.Store) error {
		value, ok := store.Get(ctx, args[0])
		if !ok {
			return fmt.Errorf("key %q not found", args[0])
		}
		format, _ := cmd.Flags().GetString("format")
		return writeStructured(cmd.OutOrStdout(), format, value)
	})
}

func runCacheTTL(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *cache.Store) error {
		fmt.Fprintln(cmd.OutOrStdout(), store.TTL(ctx, args[0]))
		return nil
	})
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *cache.Store) error {
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d keys\n", store.ClearPattern(ctx, args[0]))
		return nil
	})
}

func runCacheInvalidate(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *cache.Store) error {
		market := cache.NewMarketDataCache(store).InvalidateSymbol(ctx, args[0])
		analysis := cache.NewAnalysisCache(store).InvalidateSymbol(ctx, args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "market_data: %d\nanalysis: %d\n", market, analysis)
		return nil
	})
}
