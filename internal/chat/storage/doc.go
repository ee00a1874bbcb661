// Package storage provides a pluggable storage layer for conversation
// state. Threads live in a plain-file backend so records stay readable
// on disk, the exchange history cache uses a pebble backend, and an
// in-memory backend exists for hermetic tests.
package storage
