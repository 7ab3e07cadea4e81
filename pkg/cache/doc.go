// Package cache provides an optional Redis-backed store for Riot API
// response bodies.
//
// Match and summoner bodies are immutable once a game has finished, so a
// re-run over an overlapping range can be served from the cache without
// spending request quota. Only 200 responses are stored. Keys are built
// from the request path and query with the api_key parameter removed.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient, 7*24*time.Hour)
//
//	key := cache.CacheKey{
//		Path:        "/lol/match/v4/matchlists/by-account/abc",
//		QueryParams: url.Values{"beginIndex": []string{"100"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch and Put
//	}
//
// # Metrics
//
//   - scouter_cache_hits_total{layer="redis"} - Cache hits
//   - scouter_cache_misses_total - Cache misses
//   - scouter_cache_written_bytes_total{layer="redis"} - Bytes written
//   - scouter_cache_errors_total{operation} - Cache operation errors
package cache
