package instruments

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrissnell/stormtide/internal/outcome"
)

const sniffBytes = 1024

var sniffDelimiters = []byte{',', '\t', ';', '|'}

// CheckFileType accepts a .csv file, or an extensionless file whose first
// kilobyte looks like delimited text. Everything else wraps
// outcome.ErrInvalidFileType.
func CheckFileType(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return nil
	case "":
	default:
		return fmt.Errorf("%w: %s has extension %s", outcome.ErrInvalidFileType, filepath.Base(path), ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", outcome.ErrInvalidFileType, err)
	}
	defer f.Close()

	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return fmt.Errorf("%w: %v", outcome.ErrInvalidFileType, err)
	}
	if _, ok := sniffDelimiter(head[:n], n == sniffBytes); !ok {
		return fmt.Errorf("%w: %s is not delimited text", outcome.ErrInvalidFileType, filepath.Base(path))
	}
	return nil
}

// sniffDelimiter looks for a delimiter that occurs the same number of times
// on most lines. truncated drops the final, possibly partial, line.
func sniffDelimiter(head []byte, truncated bool) (byte, bool) {
	if bytes.IndexByte(head, 0) >= 0 {
		return 0, false
	}

	lines := bytes.Split(bytes.ReplaceAll(head, []byte("\r\n"), []byte("\n")), []byte("\n"))
	if truncated && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}
	var nonEmpty [][]byte
	for _, l := range lines {
		if len(bytes.TrimSpace(l)) > 0 {
			nonEmpty = append(nonEmpty, l)
		}
	}
	if len(nonEmpty) == 0 {
		return 0, false
	}

	for _, d := range sniffDelimiters {
		freq := make(map[int]int)
		for _, l := range nonEmpty {
			freq[bytes.Count(l, []byte{d})]++
		}
		modeCount, modeLines := 0, 0
		for count, n := range freq {
			if count > 0 && n > modeLines {
				modeCount, modeLines = count, n
			}
		}
		if modeCount > 0 && modeLines*2 > len(nonEmpty) {
			return d, true
		}
	}
	return 0, false
}
