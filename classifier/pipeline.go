package classifier

import (
	"errors"
	"fmt"
	"slices"
)

// Column describes one input column. Categorical columns are one-hot
// encoded over Categories; unseen categories encode to all zeros.
type Column struct {
	Name       string   `json:"name"`
	Kind       Kind     `json:"kind"`
	Categories []string `json:"categories,omitempty"`
}

// Pipeline encodes named inputs and scores them with a forest. The
// encoded vector holds the categorical indicators first, followed by the
// numeric columns, each group in column order.
type Pipeline struct {
	Columns []Column `json:"columns"`
	Forest  *Forest  `json:"forest"`
}

// InputNames lists the columns in declared order.
func (p *Pipeline) InputNames() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}

// EncodedWidth is the length of the vector handed to the forest.
func (p *Pipeline) EncodedWidth() int {
	w := 0
	for _, c := range p.Columns {
		if c.Kind == Categorical {
			w += len(c.Categories)
		} else {
			w++
		}
	}
	return w
}

// Transform binds record values to columns by name.
func (p *Pipeline) Transform(r Record) ([]float64, error) {
	out := make([]float64, 0, p.EncodedWidth())
	for _, c := range p.Columns {
		if c.Kind != Categorical {
			continue
		}
		v, ok := r.Get(c.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %w: %s", ErrInference, ErrMissingFeature, c.Name)
		}
		if v.Kind != Categorical {
			return nil, fmt.Errorf("%w: column %s expects a categorical value", ErrInference, c.Name)
		}
		for _, cat := range c.Categories {
			if cat == v.Str {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	for _, c := range p.Columns {
		if c.Kind == Categorical {
			continue
		}
		v, ok := r.Get(c.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %w: %s", ErrInference, ErrMissingFeature, c.Name)
		}
		if v.Kind != Numeric {
			return nil, fmt.Errorf("%w: column %s expects a numeric value", ErrInference, c.Name)
		}
		if !finite(v.Num) {
			return nil, fmt.Errorf("%w: column %s is not finite", ErrInference, c.Name)
		}
		out = append(out, v.Num)
	}
	return out, nil
}

func (p *Pipeline) PredictProba(r Record) ([]float64, error) {
	x, err := p.Transform(r)
	if err != nil {
		return nil, err
	}
	return p.Forest.PredictProba(x)
}

// PositiveProbability returns the probability of class 1.
func (p *Pipeline) PositiveProbability(r Record) (float64, error) {
	proba, err := p.PredictProba(r)
	if err != nil {
		return 0, err
	}
	return proba[1], nil
}

// FitPipeline learns the category vocabularies from rows and trains the
// forest on the encoded matrix. Only Name and Kind of each column are read.
func FitPipeline(columns []Column, rows []Record, y []int, params Params) (*Pipeline, error) {
	if len(rows) == 0 {
		return nil, errors.New("no training rows")
	}
	p := &Pipeline{Columns: make([]Column, len(columns))}
	for i, c := range columns {
		col := Column{Name: c.Name, Kind: c.Kind}
		if col.Kind == "" {
			col.Kind = Numeric
		}
		if col.Kind == Categorical {
			seen := map[string]bool{}
			for _, r := range rows {
				v, ok := r.Get(c.Name)
				if !ok {
					return nil, fmt.Errorf("%w: %s", ErrMissingFeature, c.Name)
				}
				if !seen[v.Str] {
					seen[v.Str] = true
					col.Categories = append(col.Categories, v.Str)
				}
			}
			slices.Sort(col.Categories)
		}
		p.Columns[i] = col
	}

	x := make([][]float64, len(rows))
	for i, r := range rows {
		enc, err := p.Transform(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		x[i] = enc
	}

	forest, err := FitForest(x, y, 2, params)
	if err != nil {
		return nil, err
	}
	p.Forest = forest
	return p, nil
}

func (p *Pipeline) validate() error {
	if len(p.Columns) == 0 {
		return errors.New("pipeline has no columns")
	}
	if p.Forest == nil {
		return errors.New("pipeline has no forest")
	}
	if err := p.Forest.validate(); err != nil {
		return err
	}
	if p.Forest.Classes != 2 {
		return fmt.Errorf("expected a binary forest, got %d classes", p.Forest.Classes)
	}
	if w := p.EncodedWidth(); w != p.Forest.Width {
		return fmt.Errorf("encoded width %d does not match forest width %d", w, p.Forest.Width)
	}
	return nil
}
