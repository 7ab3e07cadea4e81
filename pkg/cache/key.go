package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// credentialParams are query parameters never included in a key.
var credentialParams = map[string]bool{
	"api_key": true,
}

// CacheKey identifies a cached Riot API response.
type CacheKey struct {
	// Path is the request path (e.g., "/lol/match/v4/matches/4712345678")
	Path string

	// QueryParams are the query parameters (e.g., {"beginIndex": "100"})
	QueryParams url.Values
}

// String generates a deterministic cache key string. The credential is
// excluded so keys survive key rotation.
// Format: scouter:path:query1=val1:query2=val2
//
// Example:
//
//	scouter:lol/match/v4/matchlists/by-account/abc:beginIndex=100:queue=420
func (k CacheKey) String() string {
	parts := []string{"scouter"}

	path := strings.Trim(k.Path, "/")
	if path != "" {
		parts = append(parts, path)
	}

	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			if credentialParams[key] {
				continue
			}
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
