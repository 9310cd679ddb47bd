// Package api provides a REST client for the CoinGecko price API.
//
// Endpoints:
//   - Public: https://api.coingecko.com/api/v3
//   - Pro:    https://pro-api.coingecko.com/api/v3
//
// Only /simple/price is used: one batched request returns the current
// price and optional 24h statistics for every tracked asset id.
package api
