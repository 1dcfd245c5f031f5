package tracker

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
)

// blockRange is an inclusive span of block heights
type blockRange struct {
	from uint64
	to   uint64
}

// nextRange returns the first chunk after lastProcessed, capped by maxSize and target
func nextRange(lastProcessed, target, maxSize uint64) blockRange {
	r := blockRange{from: lastProcessed + 1, to: target}
	if maxSize > 0 && r.size() > maxSize {
		r.to = r.from + maxSize - 1
	}
	return r
}

func (r blockRange) size() uint64 {
	return r.to - r.from + 1
}

func (r blockRange) single() bool {
	return r.from == r.to
}

// halves splits at the midpoint, the first half keeps the extra block
func (r blockRange) halves() (blockRange, blockRange) {
	mid := r.from + (r.to-r.from)/2
	return blockRange{r.from, mid}, blockRange{mid + 1, r.to}
}

func (r blockRange) query(base ethereum.FilterQuery) ethereum.FilterQuery {
	base.FromBlock = new(big.Int).SetUint64(r.from)
	base.ToBlock = new(big.Int).SetUint64(r.to)
	return base
}

func (r blockRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.from, r.to)
}
