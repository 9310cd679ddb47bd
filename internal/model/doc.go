// Package model defines shared data types used across the dashboard core.
//
// Conventions:
//   - Prices and volumes: float64 in the quote currency (USD / USDT)
//   - Percentages: float64 percent points (1.5 = +1.5%)
//   - Symbols: uppercase base asset ticker without the quote suffix ("BTC")
package model
