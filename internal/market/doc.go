// Package market holds the static table of tracked assets.
//
// Each asset maps one dashboard Symbol to its identifiers on the two
// upstream feeds: the Binance stream pair (e.g. "btcusdt") and the
// CoinGecko asset id (e.g. "bitcoin"). An asset may be known to only one
// feed; such assets are still tracked for ranking.
package market
