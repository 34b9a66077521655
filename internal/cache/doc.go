// Package cache provides an in-memory LRU cache bounded by the total size
// of its values. Nothing is written to disk.
package cache
