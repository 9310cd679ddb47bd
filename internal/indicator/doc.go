// Package indicator computes derived metrics from a single PriceRecord.
//
// Every function is pure and total: degenerate inputs (zero range, zero
// price, inverted high/low) never panic or return an error. A zero or NaN
// denominator is replaced with 1, i.e. an empty range is treated as a unit
// range.
package indicator
