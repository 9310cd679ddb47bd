package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultVsCurrency is the quote currency when none is configured.
const DefaultVsCurrency = "usd"

// GetSimplePrice fetches prices for all ids in one batched request.
func (c *Client) GetSimplePrice(ctx context.Context, opts SimplePriceOptions) (SimplePriceResponse, error) {
	if len(opts.IDs) == 0 {
		return nil, errors.New("get simple price: no ids")
	}
	vs := opts.VsCurrency
	if vs == "" {
		vs = DefaultVsCurrency
	}

	query := url.Values{}
	query.Set("ids", strings.Join(opts.IDs, ","))
	query.Set("vs_currencies", vs)
	if opts.Include24h {
		query.Set("include_24h_vol", "true")
		query.Set("include_24h_change", "true")
		query.Set("include_24h_high", "true")
		query.Set("include_24h_low", "true")
	}
	if opts.IncludeStamp {
		query.Set("include_last_updated_at", "true")
	}

	var resp SimplePriceResponse
	if err := c.get(ctx, "/simple/price", query, &resp); err != nil {
		return nil, fmt.Errorf("get simple price: %w", err)
	}
	if resp == nil {
		return nil, errors.New("get simple price: empty body")
	}

	return resp, nil
}
