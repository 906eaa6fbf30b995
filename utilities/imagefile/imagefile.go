package imagefile

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/dargueta/tydos/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

var gzipMagic = []byte{0x1f, 0x8b}

// IsCompressed reports whether `data` is a compressed image.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// Compress writes the compressed form of `input` to `output`.
func Compress(input io.Reader, output io.Writer) error {
	gzWriter, err := gzip.NewWriterLevel(output, gzip.BestCompression)
	if err != nil {
		return errors.ErrInvalidArgument.Wrap(err)
	}

	_, err = EncodeRLE8(input, gzWriter)
	if err != nil {
		gzWriter.Close()
		return err
	}

	err = gzWriter.Close()
	if err != nil {
		return errors.ErrIOFailed.Wrap(err)
	}
	return nil
}

// Decompress writes the raw image stored compressed in `input` to `output`.
func Decompress(input io.Reader, output io.Writer) error {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return errors.ErrFileSystemCorrupted.Wrap(err)
	}
	defer gzReader.Close()

	_, err = DecodeRLE8(gzReader, output)
	return err
}

// Expand returns the raw image stored in `data`, decompressing it if needed.
// Uncompressed data is returned as is.
func Expand(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}

	raw := new(bytes.Buffer)
	err := Decompress(bytes.NewReader(data), raw)
	if err != nil {
		return nil, err
	}
	return raw.Bytes(), nil
}

// Load reads the image file at `path` in `fsys`, compressed or not.
func Load(fsys billy.Basic, path string) ([]byte, error) {
	data, err := util.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.ErrIOFailed.Wrap(err)
	}
	return Expand(data)
}

// Save writes `image` to `path` in `fsys`, compressing it if `compress` is
// true.
func Save(fsys billy.Basic, path string, image []byte, compress bool) error {
	data := image
	if compress {
		packed := new(bytes.Buffer)
		err := Compress(bytes.NewReader(image), packed)
		if err != nil {
			return err
		}
		data = packed.Bytes()
	}

	err := util.WriteFile(fsys, path, data, 0o644)
	if err != nil {
		return errors.ErrIOFailed.Wrap(err)
	}
	return nil
}
