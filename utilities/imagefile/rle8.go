package imagefile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/dargueta/tydos/errors"
)

// maxRunLength is the longest run one RLE8 group can encode.
const maxRunLength = 257

// byteRun is a run of one byte value.
type byteRun struct {
	value  byte
	length int
}

// runReader splits a stream into runs of identical bytes.
type runReader struct {
	rd *bufio.Reader
}

func newRunReader(rd io.Reader) runReader {
	return runReader{rd: bufio.NewReader(rd)}
}

// next returns the next run in the stream. At the end of the stream it returns
// [io.EOF] and a zero-length run.
func (reader runReader) next() (byteRun, error) {
	first, err := reader.rd.ReadByte()
	if err != nil {
		return byteRun{}, err
	}

	run := byteRun{value: first, length: 1}
	for {
		current, err := reader.rd.ReadByte()
		if err == io.EOF {
			return run, nil
		}
		if err != nil {
			return byteRun{}, err
		}
		if current != first {
			_ = reader.rd.UnreadByte()
			return run, nil
		}
		run.length++
	}
}

// EncodeRLE8 run-length encodes `input` into `output` until `input` is
// exhausted, and returns the number of bytes written.
func EncodeRLE8(input io.Reader, output io.Writer) (int64, error) {
	runs := newRunReader(input)
	written := int64(0)

	for {
		run, err := runs.next()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, errors.ErrIOFailed.Wrap(err)
		}

		for run.length >= 2 {
			extra := run.length - 2
			if run.length > maxRunLength {
				extra = maxRunLength - 2
			}

			n, err := output.Write([]byte{run.value, run.value, byte(extra)})
			written += int64(n)
			if err != nil {
				return written, errors.ErrIOFailed.Wrap(err)
			}
			run.length -= extra + 2
		}

		if run.length == 1 {
			n, err := output.Write([]byte{run.value})
			written += int64(n)
			if err != nil {
				return written, errors.ErrIOFailed.Wrap(err)
			}
		}
	}
}

// DecodeRLE8 expands run-length encoded data from `input` into `output`, and
// returns the number of bytes written.
func DecodeRLE8(input io.Reader, output io.Writer) (int64, error) {
	source := bufio.NewReader(input)
	previous := -1
	written := int64(0)

	for {
		current, err := source.ReadByte()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, errors.ErrIOFailed.Wrap(err)
		}

		var chunk []byte
		if int(current) == previous {
			extra, err := source.ReadByte()
			if err == io.EOF {
				return written, errors.ErrFileSystemCorrupted.WithMessage(
					fmt.Sprintf("missing repeat count after two %#02x bytes", current))
			}
			if err != nil {
				return written, errors.ErrIOFailed.Wrap(err)
			}

			// The first byte of the pair was already written out.
			chunk = bytes.Repeat([]byte{current}, int(extra)+1)

			// The next byte starts a new group even if it has the same value,
			// otherwise runs longer than 257 bytes would decode wrong.
			previous = -1
		} else {
			previous = int(current)
			chunk = []byte{current}
		}

		n, err := output.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, errors.ErrIOFailed.Wrap(err)
		}
	}
}
