package export

import (
	"io"

	"github.com/golang/snappy"
)

// SnappyExtension is appended to the file name of a compressed export
const SnappyExtension = ".sz"

// Compress wraps w with a Snappy framed-format writer. Close flushes the
// final frame; it does not close w.
func Compress(w io.Writer) io.WriteCloser {
	return snappy.NewBufferedWriter(w)
}

// Decompress reads a Snappy framed stream
func Decompress(r io.Reader) io.Reader {
	return snappy.NewReader(r)
}

// Filename returns name with the extension of f and, when compressed, the
// Snappy suffix
func Filename(name string, f Format, compressed bool) string {
	name += f.Extension()
	if compressed {
		name += SnappyExtension
	}
	return name
}
