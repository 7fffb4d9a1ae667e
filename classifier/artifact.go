package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Artifact is the persisted model: the fitted pipeline, the ordered
// feature names it expects and the threshold used during evaluation.
type Artifact struct {
	Pipeline  *Pipeline `json:"pipeline"`
	Features  []string  `json:"features"`
	Threshold float64   `json:"threshold"`
	Schema    string    `json:"schema,omitempty"`
	TrainedAt time.Time `json:"trained_at"`
}

// Save writes the artifact as gzip-compressed JSON. The file is written
// next to path and renamed into place.
func (a *Artifact) Save(path string) error {
	if err := a.validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	zw := gzip.NewWriter(tmp)
	if err := json.NewEncoder(zw).Encode(a); err != nil {
		tmp.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("compress artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load reads an artifact. A missing file yields ErrArtifactNotFound, any
// decoding or consistency problem ErrArtifactCorrupt.
func Load(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	defer zr.Close()

	var a Artifact
	if err := json.NewDecoder(zr).Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	if err := a.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	return &a, nil
}

func (a *Artifact) validate() error {
	if a.Pipeline == nil {
		return errors.New("artifact has no pipeline")
	}
	if err := a.Pipeline.validate(); err != nil {
		return err
	}
	if len(a.Features) == 0 {
		return errors.New("artifact has no feature list")
	}
	if !slices.Equal(a.Features, a.Pipeline.InputNames()) {
		return fmt.Errorf("feature list %v does not match pipeline columns %v", a.Features, a.Pipeline.InputNames())
	}
	if a.Threshold < 0 || a.Threshold > 1 {
		return fmt.Errorf("threshold %v outside [0,1]", a.Threshold)
	}
	return nil
}

// Record builds a row in the artifact's feature order.
func (a *Artifact) Record(cells map[string]Value) (Record, error) {
	return NewRecord(a.Features, cells)
}

// PredictProba scores a row with the artifact's pipeline.
func (a *Artifact) PredictProba(r Record) ([]float64, error) {
	return a.Pipeline.PredictProba(r)
}
