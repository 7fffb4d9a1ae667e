package classifier

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrMissingFeature   = errors.New("missing feature")
	ErrInference        = errors.New("inference failed")
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrArtifactCorrupt  = errors.New("artifact corrupt")
)

// Kind distinguishes numeric from categorical columns.
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

// Value is a single cell.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

func Num(f float64) Value { return Value{Kind: Numeric, Num: f} }
func Cat(s string) Value { return Value{Kind: Categorical, Str: s} }

func (v Value) String() string {
	if v.Kind == Categorical {
		return v.Str
	}
	return fmt.Sprintf("%g", v.Num)
}

// Record is one row whose values are bound to named columns.
type Record struct {
	Columns []string
	Values  []Value
}

// NewRecord builds a row in the given column order from named cells.
// Every column must be present in cells.
func NewRecord(columns []string, cells map[string]Value) (Record, error) {
	r := Record{
		Columns: make([]string, len(columns)),
		Values:  make([]Value, len(columns)),
	}
	copy(r.Columns, columns)
	for i, name := range columns {
		v, ok := cells[name]
		if !ok {
			return Record{}, fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}
		r.Values[i] = v
	}
	return r, nil
}

// Get looks a value up by column name.
func (r Record) Get(name string) (Value, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i], true
		}
	}
	return Value{}, false
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
