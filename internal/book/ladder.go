// Package book holds fixed-depth top-of-book ladders as delivered by the
// venue. Prices are in cents and volumes in lots, both integral per the
// venue contract.
package book

// Depth is the number of levels the venue reports per side.
const Depth = 5

type Level struct {
	Price  int64
	Volume int64
}

// Ladder is one side of a book: the best Depth levels, best first. Sides
// with fewer than Depth levels are zero padded at the tail.
type Ladder [Depth]Level

// FromSlices builds a ladder from parallel price/volume slices, ignoring
// anything beyond Depth. Short slices leave the remaining levels zero.
func FromSlices(prices, volumes []int64) Ladder {
	var l Ladder
	for i := 0; i < Depth && i < len(prices); i++ {
		l[i].Price = prices[i]
		if i < len(volumes) {
			l[i].Volume = volumes[i]
		}
	}
	return l
}

func (l Ladder) BestPrice() int64 {
	return l[0].Price
}

func (l Ladder) BestVolume() int64 {
	return l[0].Volume
}

// Empty reports whether the side has no liquidity at the top. The venue
// signals an empty side with a zero best price.
func (l Ladder) Empty() bool {
	return l[0].Price == 0
}

// Mid is the mid-price of an ask/bid ladder pair.
func Mid(ask, bid Ladder) float64 {
	return float64(ask.BestPrice()+bid.BestPrice()) / 2
}
