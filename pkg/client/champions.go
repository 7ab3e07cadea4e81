package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultDataDragonVersion is the static data release the collector was built against.
const DefaultDataDragonVersion = "10.14.1"

// championData is one entry of champion.json.
type championData struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// FetchChampions downloads champion.json for a Data Dragon version and
// returns the numeric champion key -> display name lookup. Data Dragon is
// a static host and does not count against the API quota.
func (c *Client) FetchChampions(ctx context.Context, version string) (map[int64]string, error) {
	if version == "" {
		version = DefaultDataDragonVersion
	}
	rawURL := fmt.Sprintf("%s/cdn/%s/data/en_US/champion.json",
		strings.TrimRight(c.config.DataDragonURL, "/"), version)

	resp, err := c.do(ctx, rawURL, "/cdn/champion.json")
	if err != nil {
		return nil, fmt.Errorf("fetch champions %s: %w", version, err)
	}

	var champData struct {
		Data map[string]championData `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &champData); err != nil {
		return nil, fmt.Errorf("parse champions: %w", err)
	}
	if len(champData.Data) == 0 {
		return nil, ErrBadChampionData
	}

	champions := make(map[int64]string, len(champData.Data))
	for id, champ := range champData.Data {
		key, err := strconv.ParseInt(champ.Key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: champion %s has key %q", ErrBadChampionData, id, champ.Key)
		}
		champions[key] = champ.Name
	}

	c.logger.Info().
		Int("champions", len(champions)).
		Str("version", version).
		Msg("Loaded champion lookup")
	return champions, nil
}
