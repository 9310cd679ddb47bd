// Package store implements the in-memory PriceStore: the single source of
// truth for the latest PriceRecord of every tracked symbol.
//
// The store is not safe for concurrent use. It is owned by the dashboard
// event loop, which serializes every read and write.
//
// Upsert replaces a record wholesale. Apply puts a reconciliation Policy in
// front of Upsert so that the stream and poll feeds, which write
// independently, can be given an explicit precedence.
package store
