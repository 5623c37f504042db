// Package cache stores judgment results keyed by input fingerprint so that
// identical readings skip re-evaluation. Entries are opaque JSON payloads
// with a TTL; backends include an in-memory LRU and a SQLite table pruned
// on a cron schedule.
package cache
