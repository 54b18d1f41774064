// Package hexdump renders byte slices as classic offset/hex/ASCII dumps for
// inspecting memory read out of a target process.
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"goproc/coloransi"
)

// Options customizes the dump layout and colors.
type Options struct {
	BytesPerLine int
	StartOffset  uint64
	OffsetWidth  int

	OffsetColor       coloransi.ColorCode
	HexColor          coloransi.ColorCode
	ASCIIColor        coloransi.ColorCode
	ZeroColor         coloransi.ColorCode
	NonPrintableColor coloransi.ColorCode
}

// DefaultOptions returns the default hexdump options.
func DefaultOptions() Options {
	return Options{
		BytesPerLine:      16,
		OffsetWidth:       8,
		OffsetColor:       coloransi.Cyan,
		HexColor:          coloransi.Green,
		ASCIIColor:        coloransi.White,
		ZeroColor:         coloransi.BrightBlack,
		NonPrintableColor: coloransi.BrightBlack,
	}
}

// Dump creates a hex dump of the given data with the specified options.
func Dump(data []byte, opts Options) string {
	var buf bytes.Buffer
	DumpToWriter(&buf, data, opts)
	return buf.String()
}

// DumpBytes creates a hex dump with default options.
func DumpBytes(data []byte) string {
	return Dump(data, DefaultOptions())
}

// DumpWithOffset creates a hex dump whose offset column starts at startOffset,
// typically the remote address the data was read from.
func DumpWithOffset(data []byte, startOffset uint64) string {
	opts := DefaultOptions()
	opts.StartOffset = startOffset
	opts.OffsetWidth = 12
	return Dump(data, opts)
}

// DumpToWriter writes a hex dump of the given data to the specified writer.
func DumpToWriter(w io.Writer, data []byte, opts Options) {
	if opts.BytesPerLine <= 0 {
		opts.BytesPerLine = 16
	}
	if opts.OffsetWidth <= 0 {
		opts.OffsetWidth = 8
	}

	for off := 0; off < len(data); off += opts.BytesPerLine {
		end := off + opts.BytesPerLine
		if end > len(data) {
			end = len(data)
		}
		line := data[off:end]

		offsetStr := fmt.Sprintf("%0*x", opts.OffsetWidth, uint64(off)+opts.StartOffset)
		fmt.Fprint(w, coloransi.Foreground(opts.OffsetColor, offsetStr), "  ")

		for i := 0; i < opts.BytesPerLine; i++ {
			if i < len(line) {
				color := opts.HexColor
				if line[i] == 0 {
					color = opts.ZeroColor
				}
				fmt.Fprint(w, coloransi.Foreground(color, fmt.Sprintf("%02x", line[i])), " ")
			} else {
				fmt.Fprint(w, strings.Repeat(" ", 3))
			}
		}

		fmt.Fprint(w, "| ")
		for _, b := range line {
			switch {
			case b == 0:
				fmt.Fprint(w, coloransi.Foreground(opts.ZeroColor, "."))
			case !unicode.IsPrint(rune(b)):
				fmt.Fprint(w, coloransi.Foreground(opts.NonPrintableColor, "."))
			default:
				fmt.Fprint(w, coloransi.Foreground(opts.ASCIIColor, string(rune(b))))
			}
		}
		fmt.Fprintln(w)
	}
}
