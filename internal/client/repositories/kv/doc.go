// Package kv is the durable key-value substrate under the session store.
//
// # Overview
//
// Repository is the contract: Get/Set/Delete for single keys, MultiRemove
// for clearing a group of keys, List/Clear for tooling. Implementations:
//
//   - SQLiteRepository  rows of the kv_store table (see Open, RunMigrations)
//   - MemoryRepository  process-local map, used in tests and ephemeral runs
//   - SealedRepository  decorator that encrypts values at rest (cryptox)
//
// Get returns (nil, nil) for an absent key. Callers must not assume that a
// sequence of Set calls is atomic; only MultiRemove on SQLite runs inside a
// single transaction.
package kv
