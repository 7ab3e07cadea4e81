// Package pagination fetches Riot API resources one request at a time,
// following page-numbered and offset-based pagination until the upstream
// returns an empty page.
//
// Every outbound request first passes through a ratelimit.Limiter. An
// optional response cache is consulted before the limiter, so cached
// bodies do not consume quota. Only immutable resources use it
// (FetchImmutable, or Request.Cacheable); league listings and matchlists
// change upstream and always go to the API.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(riotClient, limiter)
//	res, err := fetcher.FetchAll(ctx, pagination.Request{
//		Path: "/lol/league/v4/entries/RANKED_SOLO_5x5/DIAMOND/I",
//		Mode: pagination.ModePage,
//	})
//
// A non-success status on page N ends pagination for that resource: the
// items of pages 1..N-1 are returned together with Result.Err. Only a
// cancelled context is returned as an error from FetchAll itself.
package pagination
