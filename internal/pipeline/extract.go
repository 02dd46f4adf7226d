package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"lcaclean/internal"
)

const DefaultChunkSize = 200000

type ReadOptions struct {
	// Sheet is a 0-based index when all digits, otherwise a sheet name.
	Sheet     string
	ChunkSize int
}

// ChunkFunc receives consecutive slices of the source rows. Headers are the
// same (projected) header row for every chunk.
type ChunkFunc func(internal.RawTable) error

// rawCells keeps date cells as serial day numbers instead of display text.
var rawCells = excelize.Options{RawCellValue: true}

func resolveSheet(sheets []string, selector string) (string, error) {
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return sheets[0], nil
	}
	if idx, err := strconv.Atoi(selector); err == nil && isDigits(selector) {
		if idx >= len(sheets) {
			return "", fmt.Errorf("sheet index %d out of range (%d sheets)", idx, len(sheets))
		}
		return sheets[idx], nil
	}
	for _, name := range sheets {
		if name == selector {
			return name, nil
		}
	}
	return "", fmt.Errorf("sheet not found: %s", selector)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// InspectSheetColumns peeks at the header row and returns the columns worth
// reading. Any failure falls back to nil (all columns).
func InspectSheetColumns(path, sheet string) []int {
	headers, err := readSheetHeader(path, sheet)
	if err != nil {
		slog.Warn("header inspection failed, reading all columns", "path", path, "err", err)
		return nil
	}
	return ResolveColumns(headers)
}

func readSheetHeader(path, selector string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := resolveSheet(f.GetSheetList(), selector)
	if err != nil {
		return nil, err
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Error(); err != nil {
			return nil, err
		}
		return nil, errors.New("sheet is empty")
	}
	return rows.Columns()
}

func readXLSX(path string, opts ReadOptions, fn ChunkFunc) (int, error) {
	keep := InspectSheetColumns(path, opts.Sheet)

	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f.GetSheetList(), opts.Sheet)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read sheet %s in %s: %w", sheet, path, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, rows.Error()
	}
	header, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("read header of %s: %w", path, err)
	}

	dates := newDateCells(f, sheet)
	chunks := newChunker(project(header, keep), opts.ChunkSize, fn)
	for rowNum := 2; rows.Next(); rowNum++ {
		cells, err := rows.Columns(rawCells)
		if err != nil {
			return chunks.total, fmt.Errorf("read row of %s: %w", path, err)
		}
		if isBlankRow(cells) {
			continue
		}
		dates.truncate(rowNum, cells)
		if err := chunks.add(project(cells, keep)); err != nil {
			return chunks.total, err
		}
	}
	if err := rows.Error(); err != nil {
		return chunks.total, fmt.Errorf("read sheet %s in %s: %w", sheet, path, err)
	}
	return chunks.total, chunks.flush()
}

var fractionalSerial = regexp.MustCompile(`^\d{4,6}\.\d+$`)

// numFmtNoise matches quoted literals, bracketed sections and escaped
// characters in a number format code.
var numFmtNoise = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

// dateCells finds datetime cells among raw values. A datetime with a time of
// day reads raw as a fractional serial ("44270.604166..."); in a date-styled
// cell it is cut back to its day number. Style lookups are cached per id.
type dateCells struct {
	f      *excelize.File
	sheet  string
	styles map[int]bool
}

func newDateCells(f *excelize.File, sheet string) *dateCells {
	return &dateCells{f: f, sheet: sheet, styles: map[int]bool{}}
}

func (d *dateCells) truncate(rowNum int, cells []string) {
	for col, v := range cells {
		if !fractionalSerial.MatchString(v) {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil || !d.isDate(cell) {
			continue
		}
		cells[col] = v[:strings.IndexByte(v, '.')]
	}
}

func (d *dateCells) isDate(cell string) bool {
	id, err := d.f.GetCellStyle(d.sheet, cell)
	if err != nil {
		return false
	}
	if known, ok := d.styles[id]; ok {
		return known
	}
	isDate := false
	if style, err := d.f.GetStyle(id); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt)
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}
	d.styles[id] = isDate
	return isDate
}

// isDateNumFmt reports whether a built-in number format id shows a date.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22, id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	return false
}

func isDateFormatCode(code string) bool {
	code = strings.ToLower(numFmtNoise.ReplaceAllString(code, ""))
	return strings.ContainsAny(code, "ymd")
}

func readCSV(path string, opts ReadOptions, fn ChunkFunc) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read csv header of %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	keep := ResolveColumns(header)

	chunks := newChunker(project(header, keep), opts.ChunkSize, fn)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return chunks.total, fmt.Errorf("read csv row %d of %s: %w", line, path, err)
		}
		if isBlankRow(record) {
			continue
		}
		if err := chunks.add(project(record, keep)); err != nil {
			return chunks.total, err
		}
	}
	return chunks.total, chunks.flush()
}

// chunker buffers rows and hands them to fn every size rows.
type chunker struct {
	headers []string
	size    int
	fn      ChunkFunc
	buf     [][]string
	total   int
}

func newChunker(headers []string, size int, fn ChunkFunc) *chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &chunker{headers: headers, size: size, fn: fn}
}

func (c *chunker) add(row []string) error {
	c.buf = append(c.buf, row)
	c.total++
	if len(c.buf) >= c.size {
		return c.flush()
	}
	return nil
}

func (c *chunker) flush() error {
	if len(c.buf) == 0 {
		return nil
	}
	table := internal.RawTable{Headers: c.headers, Rows: c.buf}
	c.buf = nil
	return c.fn(table)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
