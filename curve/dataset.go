package curve

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultDataPath is where the CLI looks for observations by default
const DefaultDataPath = "data/xy_data.csv"

// LoadPointsCSV reads a point cloud from a CSV file with a header row
func LoadPointsCSV(path, xColumn, yColumn string) (PointCloud, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("data file not found: %s", path)
		}
		return nil, fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	pc, err := ReadPointsCSV(f, xColumn, yColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pc, nil
}

// ReadPointsCSV parses the named x and y columns. Columns may appear in any
// order and extra columns are ignored. Any unparsable cell fails the whole
// read with its line and column.
func ReadPointsCSV(r io.Reader, xColumn, yColumn string) (PointCloud, error) {
	if xColumn == "" {
		xColumn = "x"
	}
	if yColumn == "" {
		yColumn = "y"
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty input, expected header with %q and %q", ErrMissingColumn, xColumn, yColumn)
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	xi, yi := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case xColumn:
			xi = i
		case yColumn:
			yi = i
		}
	}
	if xi < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, xColumn)
	}
	if yi < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, yColumn)
	}

	var xs, ys []float64
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if xi >= len(rec) || yi >= len(rec) {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrLengthMismatch, line, len(rec))
		}
		x, err := parseCell(rec[xi])
		if err != nil {
			return nil, fmt.Errorf("line %d column %q: %w", line, xColumn, err)
		}
		y, err := parseCell(rec[yi])
		if err != nil {
			return nil, fmt.Errorf("line %d column %q: %w", line, yColumn, err)
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}

	return NewPointCloud(xs, ys)
}

func parseCell(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}
