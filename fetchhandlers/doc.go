// Package fetchhandlers provides the pipeline handlers used to fetch
// web feeds: body size limiting, transparent decompression, browser
// camouflage headers, character encoding repair, meta-tag redirect
// handling, alternate-link following, and a validating HTTP cache.
//
// Handlers run in ascending order in both the request and the response
// phase. The pinned orders encode the data dependencies on the
// response path: decompression (440) must inflate the body before the
// size limit (450) caps it, the cache (499) must store the inflated,
// capped bytes, and http-equiv hoisting (600) must fold meta tags into
// the header map before the refresh handler (700) turns a Refresh
// header into a redirect. Everything else uses fetch.DefaultOrder.
//
// # Cache
//
// The cache handler serves bodies from a fetchcache.Store under HTTP
// validation semantics and revalidates with If-None-Match /
// If-Modified-Since. A 304 from the network never reaches the caller:
// the stored body is re-dated and replayed through the pipeline, so
// downstream handlers treat it exactly like a fresh 200.
//
//	cache, err := fetchhandlers.NewCache(fetchhandlers.CacheConfig{
//	    Store: fetchcache.NewMemory(fetchcache.MemoryConfig{}),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// ForceMin overrides how long cached records are trusted; see the
// ForceRefresh, ForceCache, and ForceCacheOnly constants.
//
// # Alternate links
//
// The alternate handler rewrites an HTML landing page to the feed it
// advertises:
//
//	alt, err := fetchhandlers.NewAlternate(fetchhandlers.AlternateConfig{
//	    Types: []string{"application/rss+xml", "application/atom+xml"},
//	})
package fetchhandlers
