// Package poller implements the REST snapshot feed.
//
// The poller:
//   - Fetches every tracked asset in one batched request per interval
//   - Polls once immediately on start
//   - Fills absent 24h statistics with fixed defaults
//   - Skips the whole cycle on any failure; the next interval retries
//   - Stamps records with source="poll"
package poller
