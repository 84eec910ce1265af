package curve

// Point represents a 2D coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointCloud is an ordered set of observations. It is read-only once built.
type PointCloud []Point

// AffineMatrix for 2D transforms: x' = ax + by + tx, y' = cx + dy + ty
type AffineMatrix struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	Tx float64 `json:"tx"`
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	Ty float64 `json:"ty"`
}

// Identity returns an identity matrix (no transformation)
func Identity() AffineMatrix {
	return AffineMatrix{A: 1, B: 0, Tx: 0, C: 0, D: 1, Ty: 0}
}

// Params is one candidate of the model family: rotation in degrees,
// exponential rate and x-translation.
type Params struct {
	Theta float64 `json:"theta" yaml:"theta"`
	M     float64 `json:"m" yaml:"m"`
	X     float64 `json:"x" yaml:"x"`
}

// ModelFamily holds the constants baked into the curve shape.
// The search never varies them.
type ModelFamily struct {
	YOffset   float64 `yaml:"yOffset" json:"yOffset"`     // y-translation of the curve origin
	Frequency float64 `yaml:"frequency" json:"frequency"` // angular frequency of the sinusoid
}

// DefaultModelFamily returns the fixed y-offset 42 and frequency 0.3.
func DefaultModelFamily() ModelFamily {
	return ModelFamily{YOffset: 42.0, Frequency: 0.3}
}

// Evaluation is the outcome of scoring one candidate against a point cloud.
// U, V are the points in the model frame and Predicted the model value at each U.
type Evaluation struct {
	Params    Params
	MSE       float64
	U         []float64
	V         []float64
	Predicted []float64
}

// Stage identifies a pass of the grid search.
type Stage string

const (
	StageCoarse Stage = "coarse"
	StageFine   Stage = "fine"
)

// Best is the running minimum threaded through the search stages.
type Best struct {
	Params Params
	MSE    float64
	Found  bool
}

// SearchResult contains the winners of both search stages
type SearchResult struct {
	Best        Params  `json:"best"`
	MSE         float64 `json:"mse"`
	CoarseBest  Params  `json:"coarseBest"`
	CoarseMSE   float64 `json:"coarseMse"`
	Evaluations int     `json:"evaluations"`
}

// FitResult is the final output of a run: best parameters, error metrics
// in the rotated frame and the per-point arrays needed for residual plots.
type FitResult struct {
	Params       Params      `json:"params"`
	MSE          float64     `json:"mse"`
	MAE          float64     `json:"l1"`
	CoarseParams Params      `json:"coarseParams"`
	CoarseMSE    float64     `json:"coarseMse"`
	Evaluations  int         `json:"evaluations"`
	Family       ModelFamily `json:"family"`
	Points       PointCloud  `json:"-"`
	U            []float64   `json:"u,omitempty"`
	V            []float64   `json:"v,omitempty"`
	Predicted    []float64   `json:"predicted,omitempty"`
}

// Config is the unified configuration loaded from YAML
type Config struct {
	Data   DataConfig   `yaml:"data" json:"data"`
	Model  ModelFamily  `yaml:"model" json:"model"`
	Search SearchConfig `yaml:"search" json:"search"`
	Output OutputConfig `yaml:"output" json:"output"`
	MQTT   MQTTConfig   `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
}

// DataConfig describes where the point cloud comes from
type DataConfig struct {
	Path    string `yaml:"path" json:"path"`
	XColumn string `yaml:"xColumn" json:"xColumn"`
	YColumn string `yaml:"yColumn" json:"yColumn"`
}

// SearchConfig holds the coarse lattice and the fine refinement around its winner
type SearchConfig struct {
	Coarse Lattice    `yaml:"coarse" json:"coarse"`
	Fine   Refinement `yaml:"fine" json:"fine"`
}

// OutputConfig controls the files written after a fit
type OutputConfig struct {
	Dir     string  `yaml:"dir" json:"dir"`
	Plot    string  `yaml:"plot" json:"plot"`       // base name without extension
	Report  string  `yaml:"report" json:"report"`   // human-readable params file
	Result  string  `yaml:"result" json:"result"`   // JSON result file; empty disables
	Format  string  `yaml:"format" json:"format"`   // "raster", "vector" or "both"
	DPI     float64 `yaml:"dpi" json:"dpi"`         // raster resolution
	Samples int     `yaml:"samples" json:"samples"` // points along the fitted curve
}

// MQTTConfig holds MQTT connection settings
type MQTTConfig struct {
	Broker        string `yaml:"broker,omitempty" json:"broker,omitempty"`
	PublishPrefix string `yaml:"publishPrefix,omitempty" json:"publishPrefix,omitempty"`
	ClientID      string `yaml:"clientId,omitempty" json:"clientId,omitempty"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}
