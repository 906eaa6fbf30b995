// Package imagefile reads and writes TyFS image files, optionally compressed.
//
// Most of a TyFS image is unused program slots and the slack at the end of the
// directory, all null bytes. Compressed images are run-length encoded first and
// then gzipped, which shrinks a mostly-empty 1.44 MB floppy image to a few
// hundred bytes.
//
// The run-length encoding is RLE8, as used by the BMP format: a byte B that
// occurs N >= 2 times in a row is written twice, followed by an unsigned byte
// giving the number of additional occurrences, N - 2. A run longer than 257
// bytes is split into several runs. For example:
//
//	WXXXXXXXXXXXXXXXYZZ
//	W XX 13 Y ZZ 0
//
// Files are recognized as compressed by the gzip magic number, so callers never
// need to say which kind of file they have.
package imagefile
