// Package pgm implements the single binary grayscale image format
// spec.md §6 defines: a three-line ASCII header (magic "P5", "width
// height", max intensity) followed by height*width raw bytes in
// row-major order. Reads and writes are collective: every worker
// touches only its own disjoint rectangle of the shared file via
// positional I/O, so no worker interferes with another's bytes.
package pgm

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Magic is the only image magic this package understands.
const Magic = "P5"

// Header describes a parsed image header.
type Header struct {
	Width, Height int
	MaxVal        int
	// DataOffset is the byte offset of the first pixel, i.e. the
	// header's size in bytes.
	DataOffset int64
}

// headerScanBytes bounds how much of the file ReadHeader inspects
// looking for the three header lines; spec.md's header is a handful of
// short ASCII lines, so this is generous without risking reading the
// whole (potentially huge) pixel payload.
const headerScanBytes = 4096

// ReadHeader parses the three-line header at the start of f. It is
// meant to be called once, by the root worker, per spec.md §4.F's read
// protocol step 1.
func ReadHeader(f *os.File) (Header, error) {
	buf := make([]byte, headerScanBytes)
	n, err := f.ReadAt(buf, 0)
	if err != nil && n == 0 {
		return Header{}, fmt.Errorf("pgm: reading header: %w", err)
	}
	buf = buf[:n]

	magicLine, rest, ok := cutLine(buf)
	if !ok {
		return Header{}, fmt.Errorf("pgm: could not find magic line within first %d bytes", headerScanBytes)
	}
	if strings.TrimSpace(magicLine) != Magic {
		return Header{}, fmt.Errorf("pgm: unsupported image magic %q, only %q is supported", magicLine, Magic)
	}

	dimsLine, rest, ok := cutLine(rest)
	if !ok {
		return Header{}, fmt.Errorf("pgm: could not find dimensions line")
	}
	fields := strings.Fields(dimsLine)
	if len(fields) != 2 {
		return Header{}, fmt.Errorf("pgm: malformed dimensions line %q, want \"width height\"", dimsLine)
	}
	width, err := strconv.Atoi(fields[0])
	if err != nil {
		return Header{}, fmt.Errorf("pgm: non-integer width %q: %w", fields[0], err)
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return Header{}, fmt.Errorf("pgm: non-integer height %q: %w", fields[1], err)
	}
	if width <= 0 || height <= 0 {
		return Header{}, fmt.Errorf("pgm: non-positive dimensions %dx%d", width, height)
	}

	maxValLine, rest, ok := cutLine(rest)
	if !ok {
		return Header{}, fmt.Errorf("pgm: could not find max-intensity line")
	}
	maxVal, err := strconv.Atoi(strings.TrimSpace(maxValLine))
	if err != nil {
		return Header{}, fmt.Errorf("pgm: non-integer max intensity %q: %w", maxValLine, err)
	}

	return Header{
		Width:      width,
		Height:     height,
		MaxVal:     maxVal,
		DataOffset: int64(n - len(rest)),
	}, nil
}

func cutLine(b []byte) (line string, rest []byte, ok bool) {
	idx := bytes.IndexByte(b, '\n')
	if idx < 0 {
		return "", nil, false
	}
	return string(b[:idx]), b[idx+1:], true
}

// WriteHeader writes the three-line P5 header at offset 0 of f and
// returns its size in bytes. Per spec.md §4.F step 1, only the root
// worker calls this.
func WriteHeader(f *os.File, width, height, maxVal int) (int64, error) {
	header := fmt.Sprintf("%s\n%d %d\n%d\n", Magic, width, height, maxVal)
	if _, err := f.WriteAt([]byte(header), 0); err != nil {
		return 0, fmt.Errorf("pgm: writing header: %w", err)
	}
	return int64(len(header)), nil
}

// ReadRect reads a localRows x localCols rectangle whose top-left
// corner is (startRow, startCol) in a globalCols-wide image whose
// pixel data begins at dataOffset. Each returned byte is the raw pixel
// value; callers treat any non-zero byte as alive per spec.md §6.
func ReadRect(f *os.File, dataOffset int64, globalCols, startRow, startCol, localRows, localCols int) ([]byte, error) {
	out := make([]byte, localRows*localCols)
	for i := 0; i < localRows; i++ {
		offset := dataOffset + int64(startRow+i)*int64(globalCols) + int64(startCol)
		if _, err := f.ReadAt(out[i*localCols:(i+1)*localCols], offset); err != nil {
			return nil, fmt.Errorf("pgm: short read at local row %d (offset %d): %w", i, offset, err)
		}
	}
	return out, nil
}

// WriteRect writes a localRows x localCols rectangle of cell states
// (non-zero = alive) to its position in a globalCols-wide image whose
// pixel data begins at dataOffset, writing 0 for dead cells and maxVal
// for alive ones.
func WriteRect(f *os.File, dataOffset int64, globalCols, startRow, startCol, localRows, localCols int, cells []byte, maxVal byte) error {
	row := make([]byte, localCols)
	for i := 0; i < localRows; i++ {
		for j := 0; j < localCols; j++ {
			if cells[i*localCols+j] != 0 {
				row[j] = maxVal
			} else {
				row[j] = 0
			}
		}
		offset := dataOffset + int64(startRow+i)*int64(globalCols) + int64(startCol)
		if _, err := f.WriteAt(row, offset); err != nil {
			return fmt.Errorf("pgm: short write at local row %d (offset %d): %w", i, offset, err)
		}
	}
	return nil
}
