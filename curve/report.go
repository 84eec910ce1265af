package curve

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// WriteReport writes the human-readable parameter report. Each line is
// "name: value" so downstream scripts can split on the first colon.
func WriteReport(w io.Writer, r FitResult) error {
	lines := []struct {
		name  string
		value float64
	}{
		{"theta_deg", r.Params.Theta},
		{"theta_rad", r.Params.Theta * math.Pi / 180.0},
		{"M", r.Params.M},
		{"X", r.Params.X},
		{"L1 (rotated frame)", r.MAE},
		{"MSE (rotated frame)", r.MSE},
	}

	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s: %s\n", l.name, formatReportFloat(l.value))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// SaveReport writes the text report to path, creating parent directories
func SaveReport(path string, r FitResult) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := WriteReport(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing report file: %w", err)
	}
	return f.Close()
}

// ResultFile is the JSON document persisted after a fit
type ResultFile struct {
	FitResult
	ThetaRad    float64 `json:"thetaRad"`
	PointCount  int     `json:"pointCount"`
	LastUpdated int64   `json:"lastUpdated"`
}

// NewResultFile wraps a fit result for persistence
func NewResultFile(r FitResult) *ResultFile {
	return &ResultFile{
		FitResult:  r,
		ThetaRad:   r.Params.Theta * math.Pi / 180.0,
		PointCount: len(r.U),
	}
}

// SaveResult saves the fit result as indented JSON
func SaveResult(path string, r FitResult) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}

	rf := NewResultFile(r)
	rf.LastUpdated = time.Now().Unix()

	data, err := json.MarshalIndent(rf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling fit result: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing result file: %w", err)
	}

	return nil
}

// LoadResult loads a previously saved fit result.
// Returns nil, nil when the file does not exist yet.
func LoadResult(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading result file: %w", err)
	}

	var rf ResultFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing result file: %w", err)
	}

	return &rf, nil
}

// formatReportFloat prints the shortest round-trip form of v, keeping a
// trailing ".0" on integral values so the report stays visibly floating-point.
func formatReportFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

// ParamsLine is the one-line summary printed after a run,
// e.g. "theta_deg=30.0, M=0.02, X=55.0".
func ParamsLine(p Params) string {
	return fmt.Sprintf("theta_deg=%s, M=%s, X=%s",
		formatReportFloat(p.Theta), formatReportFloat(p.M), formatReportFloat(p.X))
}

// SavedLine lists written files as "Saved: a, b and c".
func SavedLine(paths []string) string {
	switch len(paths) {
	case 0:
		return "Saved: nothing"
	case 1:
		return "Saved: " + paths[0]
	}
	return "Saved: " + strings.Join(paths[:len(paths)-1], ", ") + " and " + paths[len(paths)-1]
}
