package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"askverba.app/server/internal/cache"
	"askverba.app/server/internal/config"
	"askverba.app/server/internal/db"
	"askverba.app/server/internal/langdetect"
	"askverba.app/server/internal/language"
	"askverba.app/server/internal/translation"
)

// translationCacheEntries bounds the in-process cache used without Redis.
const translationCacheEntries = 10000

// cacheBackend is the Store/Limiter pair chosen from REDIS_ADDRESSES.
type cacheBackend struct {
	store   cache.Store
	limiter cache.Limiter
	redis   *cache.RedisStore
}

func (b *cacheBackend) Close() {
	if b != nil && b.redis != nil {
		_ = b.redis.Close()
	}
}

func openCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*cacheBackend, error) {
	addresses := cfg.RedisAddressList()
	if len(addresses) == 0 {
		logger.Info().Msg("REDIS_ADDRESSES not set; using in-process cache")
		return &cacheBackend{
			store:   cache.NewMemoryStore(translationCacheEntries),
			limiter: cache.NewMemoryLimiter(),
		}, nil
	}

	client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
		Addresses: addresses,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	store := cache.NewRedisStore(client)
	logger.Info().Strs("addresses", addresses).Msg("connected to redis")
	return &cacheBackend{
		store:   store,
		limiter: cache.NewRedisLimiter(client),
		redis:   store,
	}, nil
}

// newTranslator wires the generator registry, cache, history store and
// language detector configured for this process. history may be nil.
func newTranslator(cfg *config.Config, logger zerolog.Logger, store cache.Store, history *db.Pool) (*translation.Translator, error) {
	pair, err := language.NewPair(cfg.TranslationSourceLang, cfg.TranslationTargetLang)
	if err != nil {
		return nil, err
	}
	registry, err := translation.NewRegistryFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure generators: %w", err)
	}

	var historyStore translation.HistoryStore
	if history != nil {
		historyStore = history
	}
	return translation.NewTranslator(
		logger,
		registry,
		store,
		historyStore,
		langdetect.NewDetector(pair.Source, pair.Target),
		translation.Options{
			Pair:     pair,
			MaxChars: cfg.TranslationMaxChars,
			CacheTTL: cfg.TranslationCacheTTL,
		},
	)
}
