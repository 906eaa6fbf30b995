// Package blockcache provides a block-oriented, read-through cache over a disk
// image, so that repeated reads of the same sectors (e.g. the directory, which
// is reloaded on every lookup) don't hit the backing stream again.
//
// All block indices begin at 0.

package blockcache

import (
	"fmt"
	"io"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/tydos/errors"
	c "github.com/dargueta/tydos/file_systems/common"
)

// FetchBlockCallback is a pointer to a function that writes the contents of a
// single block from the backing storage into `buffer`. The following guarantees
// apply:
//
// - `blockIndex` is in the range [0, TotalBlocks).
// - `buffer` is always BytesPerBlock bytes.
type FetchBlockCallback func(blockIndex c.LogicalBlock, buffer []byte) error

type BlockCache struct {
	loadedBlocks  bitmap.Bitmap
	fetch         FetchBlockCallback
	bytesPerBlock uint
	totalBlocks   uint
	data          []byte
}

// New creates a new BlockCache of `totalBlocks` blocks, each `bytesPerBlock`
// bytes. No blocks are fetched until they're first read.
func New(
	bytesPerBlock uint,
	totalBlocks uint,
	fetchCb FetchBlockCallback,
) *BlockCache {
	return &BlockCache{
		loadedBlocks:  bitmap.New(int(totalBlocks)),
		data:          make([]byte, int(bytesPerBlock*totalBlocks)),
		fetch:         fetchCb,
		bytesPerBlock: bytesPerBlock,
		totalBlocks:   totalBlocks,
	}
}

// WrapStream creates a [BlockCache] that reads from any [io.ReadSeeker]. The
// stream is never written to.
func WrapStream(stream io.ReadSeeker, bytesPerBlock uint, totalBlocks uint) *BlockCache {
	fetchCb := func(block c.LogicalBlock, buffer []byte) error {
		err := seekToBlock(stream, block, c.LogicalBlock(totalBlocks), bytesPerBlock)
		if err != nil {
			return err
		}

		_, err = io.ReadFull(stream, buffer)
		if err != nil {
			return errors.ErrIOFailed.Wrap(err)
		}
		return nil
	}

	return New(bytesPerBlock, totalBlocks, fetchCb)
}

// WrapStreamWithInferredSize is like [WrapStream] but determines the number of
// blocks from the size of the stream. Trailing bytes that don't make up a whole
// block are ignored.
func WrapStreamWithInferredSize(
	stream io.ReadSeeker, bytesPerBlock uint,
) (*BlockCache, error) {
	size, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, errors.ErrIOFailed.Wrap(err)
	}
	return WrapStream(stream, bytesPerBlock, uint(size)/bytesPerBlock), nil
}

// seekToBlock sets the stream pointer for a stream to the offset of a block.
func seekToBlock(stream io.Seeker, block, totalBlocks c.LogicalBlock, bytesPerBlock uint) error {
	if block >= totalBlocks {
		return errors.NewWithMessage(
			errors.EINVAL,
			fmt.Sprintf(
				"invalid block number: %d not in range [0, %d)",
				block,
				totalBlocks,
			),
		)
	}

	blockOffset := int64(block) * int64(bytesPerBlock)
	_, err := stream.Seek(blockOffset, io.SeekStart)
	if err != nil {
		return errors.ErrIOFailed.Wrap(err)
	}
	return nil
}

// BytesPerBlock returns the size of a single block, in bytes.
func (cache *BlockCache) BytesPerBlock() uint {
	return cache.bytesPerBlock
}

// TotalBlocks returns the size of the cache, in blocks.
func (cache *BlockCache) TotalBlocks() uint {
	return cache.totalBlocks
}

// Size gives the size of the cache, in bytes (not blocks!).
func (cache *BlockCache) Size() int64 {
	return int64(cache.bytesPerBlock) * int64(cache.totalBlocks)
}

// LengthToNumBlocks gives the minimum number of blocks required to hold the
// given number of bytes.
func (cache *BlockCache) LengthToNumBlocks(size uint) uint {
	return (size + cache.bytesPerBlock - 1) / cache.bytesPerBlock
}

// checkBounds verifies that `bufferSize` bytes can be accessed in the cache
// starting from block `start`. If not, it returns an error describing the exact
// conditions. If no error would occur, this returns nil.
func (cache *BlockCache) checkBounds(start c.LogicalBlock, bufferSize uint) error {
	numBlocks := cache.LengthToNumBlocks(bufferSize)

	// A zero-length access is still an access *at* `start`, so it must be a
	// valid block.
	if uint(start) >= cache.totalBlocks || uint(start)+numBlocks > cache.totalBlocks {
		return errors.ErrGeometryViolation.WithMessage(
			fmt.Sprintf(
				"can't access %d bytes (%d blocks) from block %d; range not in [0, %d)",
				bufferSize,
				numBlocks,
				start,
				cache.totalBlocks,
			),
		)
	}
	return nil
}

// loadBlockRange ensures that all blocks in the range [start, start + count) are
// present in the cache, and loads any missing ones from storage.
func (cache *BlockCache) loadBlockRange(start c.LogicalBlock, count uint) error {
	for blockIndex := uint(start); blockIndex < uint(start)+count; blockIndex++ {
		if cache.loadedBlocks.Get(int(blockIndex)) {
			continue
		}

		offset := blockIndex * cache.bytesPerBlock
		buffer := cache.data[offset : offset+cache.bytesPerBlock]

		// Load the block from backing storage directly into the cache.
		err := cache.fetch(c.LogicalBlock(blockIndex), buffer)
		if err != nil {
			return errors.ErrIOFailed.Wrap(
				fmt.Errorf("failed to load block %d from source: %w", blockIndex, err),
			)
		}
		cache.loadedBlocks.Set(int(blockIndex), true)
	}
	return nil
}

// ReadAt fills `buffer` with data beginning at block `start`, loading any
// missing blocks first. `buffer` does not need to be an exact multiple of the
// size of one block.
//
// Attempting to read past the end of the cache will result in an error, and
// `buffer` will be left unmodified. If fetching any block fails, `buffer` is
// also left unmodified.
func (cache *BlockCache) ReadAt(buffer []byte, start c.LogicalBlock) (int, error) {
	bufLen := uint(len(buffer))
	err := cache.checkBounds(start, bufLen)
	if err != nil {
		return 0, err
	}

	err = cache.loadBlockRange(start, cache.LengthToNumBlocks(bufLen))
	if err != nil {
		return 0, err
	}

	offset := uint(start) * cache.bytesPerBlock
	return copy(buffer, cache.data[offset:offset+bufLen]), nil
}

// LoadAll ensures all missing blocks are loaded from storage into the cache.
func (cache *BlockCache) LoadAll() error {
	return cache.loadBlockRange(0, cache.totalBlocks)
}

// Invalidate drops every cached block, forcing the next read of each one to
// go to the backing storage.
func (cache *BlockCache) Invalidate() {
	for i := range cache.loadedBlocks {
		cache.loadedBlocks[i] = 0
	}
}
