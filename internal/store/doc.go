// Package store provides durable SQLite-backed storage for panelarc
// archives. Field tuples are stored as canonical JSON, reads use
// deterministic ordering, and every multi-row write is transactional:
// a structural error never leaves a partial archive behind.
package store
