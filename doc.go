// Package webget retrieves remote web resources on behalf of a feed
// parser: bodies arrive decoded with a known character encoding, HTML
// landing pages are resolved to the feed they advertise, and repeat
// fetches are served from a validating HTTP cache with pluggable
// storage backends.
//
// The quick way in is the package-level helpers, which share one
// environment-configured client:
//
//	data, err := webget.Get(ctx, "example.com/feed.xml", webget.Options{})
//
// Programs that want control over caching and transport build their
// own client:
//
//	store, err := fetchcache.NewSQLite(fetchcache.SQLiteConfig{Path: path})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client := webget.NewClient(webget.ClientConfig{Store: store})
//	defer client.Close()
//
//	res, err := client.AdvGet(ctx, "example.com", webget.Options{Follow: "rss"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.URL, res.ContentType, res.Encoding)
//
// Options.Follow selects which alternate-link MIME types are worth
// chasing ("xml", "rss", or "html"); Options.Delay overrides cache
// validity the way fetchhandlers.CacheConfig.ForceMin does;
// Options.Encoding pins the character encoding instead of detecting
// it; Options.Timeout bounds the whole fetch.
//
// HTTP-level failures (a 404, or the synthetic 409 a cache-only fetch
// produces on a miss) are returned as *StatusError alongside the
// result, distinct from transport errors.
package webget
