package indexer

import (
	"context"
	"fmt"
	"time"
)

// BlockRange represents an inclusive block range.
type BlockRange struct {
	From uint64
	To   uint64
}

// SplitRange splits a block range into batches of size batchSize.
func SplitRange(from, to, batchSize uint64) ([]BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block must be >= from block")
	}

	ranges := make([]BlockRange, 0, (to-from)/batchSize+1)
	start := from
	for start <= to {
		remaining := to - start + 1
		var end uint64
		if remaining <= batchSize {
			end = to
		} else {
			end = start + batchSize - 1
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			break
		}
		start = end + 1
	}

	return ranges, nil
}

// LookbackBlocks converts a lookback window into a block count using an
// assumed constant block time. The estimate drifts when the chain's real
// block time changes; the timestamp lookback mode avoids that.
func LookbackBlocks(window, blockTime time.Duration) uint64 {
	if window <= 0 || blockTime <= 0 {
		return 0
	}
	return uint64(window / blockTime)
}

// StartBlockByCount returns head-blocks, saturating at zero.
func StartBlockByCount(head, blocks uint64) uint64 {
	if blocks >= head {
		return 0
	}
	return head - blocks
}

// FindBlockByTimestamp binary-searches [0, head] for the first block whose
// timestamp is >= target. It returns head when every block is older.
func FindBlockByTimestamp(
	ctx context.Context,
	head uint64,
	target uint64,
	timestampOf func(context.Context, uint64) (uint64, error),
) (uint64, error) {
	lo, hi := uint64(0), head
	for lo < hi {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		mid := lo + (hi-lo)/2
		ts, err := timestampOf(ctx, mid)
		if err != nil {
			return 0, fmt.Errorf("block %d timestamp: %w", mid, err)
		}
		if ts >= target {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, nil
}
