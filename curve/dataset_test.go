package curve

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPointsCSV_Basic(t *testing.T) {
	in := "x,y\n1,2\n3.5,-4\n1e2, 7\n"

	pc, err := ReadPointsCSV(strings.NewReader(in), "x", "y")

	require.NoError(t, err)
	assert.Equal(t, PointCloud{{X: 1, Y: 2}, {X: 3.5, Y: -4}, {X: 100, Y: 7}}, pc)
}

func TestReadPointsCSV_ColumnOrderAndExtras(t *testing.T) {
	in := "\ufeffid, y ,x,label\n0,10,20,a\n1,11,21,b\n"

	pc, err := ReadPointsCSV(strings.NewReader(in), "", "")

	require.NoError(t, err)
	assert.Equal(t, PointCloud{{X: 20, Y: 10}, {X: 21, Y: 11}}, pc)
}

func TestReadPointsCSV_CustomColumns(t *testing.T) {
	in := "lon,lat\n5,6\n"

	pc, err := ReadPointsCSV(strings.NewReader(in), "lon", "lat")

	require.NoError(t, err)
	assert.Equal(t, PointCloud{{X: 5, Y: 6}}, pc)
}

func TestReadPointsCSV_HeaderOnly(t *testing.T) {
	pc, err := ReadPointsCSV(strings.NewReader("x,y\n"), "x", "y")

	require.NoError(t, err)
	assert.Empty(t, pc)
}

func TestReadPointsCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		target  error
		message string
	}{
		{name: "empty input", in: "", target: ErrMissingColumn},
		{name: "missing y", in: "x,z\n1,2\n", target: ErrMissingColumn, message: `"y"`},
		{name: "missing x", in: "a,y\n1,2\n", target: ErrMissingColumn, message: `"x"`},
		{name: "short row", in: "x,y\n1,2\n3\n", target: ErrLengthMismatch, message: "line 3"},
		{name: "not a number", in: "x,y\n1,2\n3,abc\n", message: `line 3 column "y": not a number: "abc"`},
		{name: "blank cell", in: "x,y\n,2\n", message: `line 2 column "x"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadPointsCSV(strings.NewReader(tc.in), "x", "y")
			require.Error(t, err)
			if tc.target != nil {
				assert.ErrorIs(t, err, tc.target)
			}
			if tc.message != "" {
				assert.Contains(t, err.Error(), tc.message)
			}
		})
	}
}

func TestLoadPointsCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xy_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n60,50\n61,51\n"), 0644))

	pc, err := LoadPointsCSV(path, "x", "y")
	require.NoError(t, err)
	assert.Len(t, pc, 2)

	_, err = LoadPointsCSV(filepath.Join(dir, "missing.csv"), "x", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data file not found")

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("x,y\n1,oops\n"), 0644))
	_, err = LoadPointsCSV(bad, "x", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}
