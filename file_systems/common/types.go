// Package common contains definitions of fundamental types and functions used
// across the file system and disk layers.
package common

// LogicalBlock is a zero-based index of a block within a stream or image.
type LogicalBlock uint

// BytesPerSector is the fixed size of a disk sector, in bytes.
const BytesPerSector = 512
