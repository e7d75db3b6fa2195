package coinfolio

import (
	"context"
	"sync"
	"time"
)

// MarketPriceProvider supplies fiat market prices for assets. An unavailable
// price is reported as a *PriceUnavailableError so valuations can mark the
// asset excluded instead of failing the whole computation.
type MarketPriceProvider interface {
	CurrentPrice(ctx context.Context, asset string) (Money, error)
	HistoricalPrice(ctx context.Context, asset string, at time.Time) (Money, error)
}

// StaticProvider is an in-memory MarketPriceProvider with fixed prices, used
// in tests and for offline valuations.
type StaticProvider struct {
	mu     sync.RWMutex
	prices map[string]Money
}

// NewStaticProvider returns a provider with the given current prices.
func NewStaticProvider(prices map[string]Money) *StaticProvider {
	cp := make(map[string]Money, len(prices))
	for asset, price := range prices {
		cp[asset] = price
	}
	return &StaticProvider{prices: cp}
}

// SetPrice sets or replaces the price of asset.
func (p *StaticProvider) SetPrice(asset string, price Money) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[asset] = price
}

func (p *StaticProvider) CurrentPrice(_ context.Context, asset string) (Money, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	price, ok := p.prices[asset]
	if !ok {
		return Money{}, &PriceUnavailableError{Asset: asset}
	}
	return price, nil
}

// HistoricalPrice returns the same fixed price for every instant.
func (p *StaticProvider) HistoricalPrice(ctx context.Context, asset string, _ time.Time) (Money, error) {
	return p.CurrentPrice(ctx, asset)
}
