// Package persist stores the bot's mutable configuration, most importantly
// the OAuth tokens obtained by setup or refresh, so they survive restarts.
//
// Every backend exposes the same small Store contract: Get a single key and
// Set a batch of keys in one write. Available backends:
//
//   - memory: process-local map, used in tests and for throwaway runs
//   - file:   a YAML document written atomically (temp file + rename)
//   - sqlite: a key/value table in a SQLite database
//   - valkey: keys in a Valkey (or Redis) server, written with MSET
package persist
