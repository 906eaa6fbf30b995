package testing

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/dargueta/tydos/errors"
	c "github.com/dargueta/tydos/file_systems/common"
	"github.com/dargueta/tydos/file_systems/common/blockcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Create an image with the given number of blocks and bytes per block. It is
// guaranteed to either return a valid slice or fail the test and abort.
func CreateRandomImage(bytesPerBlock, totalBlocks uint, t *testing.T) []byte {
	backingData := make([]byte, bytesPerBlock*totalBlocks)

	_, err := rand.Read(backingData)
	require.NoErrorf(
		t,
		err,
		"failed to initialize %d blocks of size %d with random bytes",
		totalBlocks,
		bytesPerBlock,
	)
	return backingData
}

// CountingCache is a block cache whose fetch handler records how many times
// each block was fetched from the backing data.
type CountingCache struct {
	Cache   *blockcache.BlockCache
	Fetches map[c.LogicalBlock]int
	// Backing is the data the cache reads from. Changes to it are only seen by
	// the cache for blocks that haven't been fetched yet.
	Backing []byte
}

// CreateCountingCache creates a block cache over `backingData`, which must be
// at least `bytesPerBlock * totalBlocks` bytes. Pass nil for `backingData` to
// get random contents.
//
// The fetch handler fails the test if asked for a block out of bounds, so it
// can't be used to test that the cache itself rejects such reads.
func CreateCountingCache(
	bytesPerBlock,
	totalBlocks uint,
	backingData []byte,
	t *testing.T,
) *CountingCache {
	if backingData == nil {
		backingData = CreateRandomImage(bytesPerBlock, totalBlocks, t)
	}

	counting := &CountingCache{
		Fetches: map[c.LogicalBlock]int{},
		Backing: backingData,
	}

	fetchCallback := func(blockIndex c.LogicalBlock, buffer []byte) error {
		if blockIndex >= c.LogicalBlock(totalBlocks) {
			message := fmt.Sprintf(
				"attempted to read outside bounds: block %d not in [0, %d)",
				blockIndex,
				totalBlocks,
			)
			t.Error(message)
			return errors.ErrIOFailed.WithMessage(message)
		}

		counting.Fetches[blockIndex]++
		start := blockIndex * c.LogicalBlock(bytesPerBlock)
		copy(buffer, backingData[start:start+c.LogicalBlock(bytesPerBlock)])
		return nil
	}

	counting.Cache = blockcache.New(bytesPerBlock, totalBlocks, fetchCallback)
	assert.EqualValues(t, bytesPerBlock, counting.Cache.BytesPerBlock(), "wrong bytes per block")
	assert.EqualValues(t, totalBlocks, counting.Cache.TotalBlocks(), "wrong total blocks")
	assert.EqualValues(t, bytesPerBlock*totalBlocks, counting.Cache.Size(), "total size is wrong")
	return counting
}
