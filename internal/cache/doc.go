// Package cache provides the LRU cache that keeps rendered frames for reuse.
//
// Entries are evicted strictly least-recently-used first. An optional
// eviction hook lets owners of reference-counted values release them
// when they leave the cache:
//
//	c := cache.New[string, *Frame](32, func(_ string, f *Frame) { f.Release() })
//	c.Set(key, frame)
//	frame, ok := c.Get(key)
//
// # Thread Safety
//
// All methods are safe for concurrent use.
package cache
