package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ReadSource streams a disclosure file in chunks and returns the number of
// non-blank data rows read.
func ReadSource(path string, opts ReadOptions, fn ChunkFunc) (int, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return readXLSX(path, opts, fn)
	case ".csv", ".txt":
		return readCSV(path, opts, fn)
	default:
		return 0, fmt.Errorf("unsupported input type: %s", ext)
	}
}
