// Package fetchcache provides the storage backends behind the cache
// pipeline handler.
//
// A Store is a URL-keyed record map with a Trim operation that keeps
// only the newest records. Four interchangeable implementations are
// provided: an insertion-ordered in-memory map, an embedded SQLite
// file, a MySQL server, and a Redis server. All of them are safe for
// concurrent use from multiple request goroutines.
//
//	store, err := fetchcache.NewSQLite(fetchcache.SQLiteConfig{
//	    Path: "/var/cache/webget/webget-cache.db",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// A Janitor trims a store in the background:
//
//	janitor := fetchcache.NewJanitor(fetchcache.JanitorConfig{Store: store})
//	janitor.Start()
//	defer janitor.Stop()
//
// Config selects and sizes a backend from the environment or a YAML
// file:
//
//	store, err := fetchcache.FromEnv().Open()
package fetchcache
