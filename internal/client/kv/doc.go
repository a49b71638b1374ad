// Package kv is the storage port of the client: a minimal key/value contract
// and the media that implement it.
//
// Media:
//   - SQLiteStore: the durable local medium (metadata table), used for the
//     primary and legacy session tiers, the local users list and reset tokens.
//   - MemoryStore: process-lifetime storage, used for the transient tier and in tests.
//   - FileStore: one file per key in a directory; default backup medium.
//   - RedisStore: backup medium shared with other processes on the device.
//   - S3Store: backup medium kept in an S3-compatible bucket.
//
// Get returns (nil, nil) when a key is absent. Delete of a missing key is not
// an error.
package kv
