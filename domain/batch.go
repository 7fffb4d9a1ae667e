package domain

// BatchPrediction is the scorer's success payload.
type BatchPrediction struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
}

// BatchError is the scorer's failure payload.
type BatchError struct {
	Error string `json:"error"`
}
