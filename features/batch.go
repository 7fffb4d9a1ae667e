package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"loan-approval/classifier"
)

var ErrMalformedInput = errors.New("malformed input")

// Batch input keys.
const (
	Gender            = "Gender"
	Married           = "Married"
	Dependents        = "Dependents"
	BatchEducation    = "Education"
	BatchSelfEmployed = "Self_Employed"
	ApplicantIncome   = "ApplicantIncome"
	CoapplicantIncome = "CoapplicantIncome"
	BatchLoanAmount   = "LoanAmount"
	LoanAmountTerm    = "Loan_Amount_Term"
	CreditHistory     = "Credit_History"
	PropertyArea      = "Property_Area"

	TotalIncome    = "TotalIncome"
	LoanAmountLog  = "LoanAmountLog"
	TotalIncomeLog = "TotalIncomeLog"
)

// BatchInputKeys must all be present in a scorer request.
var BatchInputKeys = []string{
	Gender, Married, Dependents, BatchEducation, BatchSelfEmployed,
	ApplicantIncome, CoapplicantIncome, BatchLoanAmount, LoanAmountTerm,
	CreditHistory, PropertyArea,
}

// BatchFeatures is the column order of the batch model.
var BatchFeatures = append(append([]string{}, BatchInputKeys...), TotalIncome, LoanAmountLog, TotalIncomeLog)

var labelMaps = map[string]map[string]float64{
	Gender:            {"Male": 1, "Female": 0},
	Married:           {"Yes": 1, "No": 0},
	BatchEducation:    {"Graduate": 1, "Not Graduate": 0},
	BatchSelfEmployed: {"Yes": 1, "No": 0},
	PropertyArea:      {"Urban": 2, "Semiurban": 1, "Rural": 0},
}

var numericKeys = []string{ApplicantIncome, CoapplicantIncome, BatchLoanAmount, LoanAmountTerm, CreditHistory}

var batchSchema = func() map[string]interface{} {
	required := make([]interface{}, len(BatchInputKeys))
	for i, k := range BatchInputKeys {
		required[i] = k
	}
	return map[string]interface{}{
		"type":     "object",
		"required": required,
	}
}()

// BatchColumns is the all-numeric column layout of the batch pipeline.
func BatchColumns() []classifier.Column {
	cols := make([]classifier.Column, len(BatchFeatures))
	for i, n := range BatchFeatures {
		cols[i] = classifier.Column{Name: n, Kind: classifier.Numeric}
	}
	return cols
}

// ValidateBatchJSON decodes a scorer request and checks it is an object
// carrying every input key.
func ValidateBatchJSON(raw []byte) (map[string]interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(batchSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedInput, strings.Join(errs, "; "))
	}
	return doc.(map[string]interface{}), nil
}

// PrepareBatch applies the label encodings and derived income features,
// returning a row in BatchFeatures order. Unmapped categories and
// non-numeric amounts become 0; Dependents must be an integer or "3+".
func PrepareBatch(input map[string]interface{}) (classifier.Record, error) {
	cells := make(map[string]classifier.Value, len(BatchFeatures))

	for key, mapping := range labelMaps {
		raw, ok := input[key]
		if !ok {
			return classifier.Record{}, fmt.Errorf("%w: missing %s", ErrMalformedInput, key)
		}
		s, _ := raw.(string)
		cells[key] = classifier.Num(mapping[s])
	}

	raw, ok := input[Dependents]
	if !ok {
		return classifier.Record{}, fmt.Errorf("%w: missing %s", ErrMalformedInput, Dependents)
	}
	deps, err := dependents(raw)
	if err != nil {
		return classifier.Record{}, err
	}
	cells[Dependents] = classifier.Num(float64(deps))

	for _, key := range numericKeys {
		raw, ok := input[key]
		if !ok {
			return classifier.Record{}, fmt.Errorf("%w: missing %s", ErrMalformedInput, key)
		}
		cells[key] = classifier.Num(coerce(raw))
	}

	total := cells[ApplicantIncome].Num + cells[CoapplicantIncome].Num
	cells[TotalIncome] = classifier.Num(total)
	cells[LoanAmountLog] = classifier.Num(math.Log(cells[BatchLoanAmount].Num + 1))
	cells[TotalIncomeLog] = classifier.Num(math.Log(total + 1))

	return classifier.NewRecord(BatchFeatures, cells)
}

func dependents(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "3+" {
			return 3, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid Dependents %q", ErrMalformedInput, v)
		}
		return n, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: invalid Dependents", ErrMalformedInput)
		}
		return int(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: invalid Dependents %v", ErrMalformedInput, raw)
}

func coerce(raw interface{}) float64 {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case bool:
		if v {
			return 1
		}
	}
	return 0
}
