// Package cache provides a generic, thread-safe TTL cache.
//
// Entries expire after a fixed time-to-live and are purged lazily on read,
// or eagerly via Cleanup. The cache supports explicit invalidation through
// Remove, which is what write paths use to keep cached views consistent.
//
// # Usage
//
//	c := cache.NewTTLCache[string, int](5 * time.Minute)
//	c.Put("answer", 42)
//	if v, ok := c.Get("answer"); ok {
//		fmt.Println(v)
//	}
//
// PutIfAbsent turns the cache into a sliding-window deduplication set,
// which the polling notification path uses to suppress repeated results
// within the window.
package cache
