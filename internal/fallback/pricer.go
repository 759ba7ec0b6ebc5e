package fallback

import (
	"crypto/rand"
	"math/big"
)

const (
	DefaultMinPrice = 3000
	DefaultMaxPrice = 6000
)

type Pricer interface {
	Price() int
}

// RandomPricer draws fares uniformly from [Min, Max) using crypto/rand, so
// fallback prices are not reproducible between calls.
type RandomPricer struct {
	Min int
	Max int
}

func NewRandomPricer(min, max int) *RandomPricer {
	if max <= min {
		min, max = DefaultMinPrice, DefaultMaxPrice
	}
	return &RandomPricer{Min: min, Max: max}
}

func (p *RandomPricer) Price() int {
	span := p.Max - p.Min
	if span <= 0 {
		return p.Min
	}
	value, err := rand.Int(rand.Reader, big.NewInt(int64(span)))
	if err != nil {
		return p.Min
	}
	return p.Min + int(value.Int64())
}
