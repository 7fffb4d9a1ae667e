package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"loan-approval/domain"
	"loan-approval/features"
	"loan-approval/logger"
	"loan-approval/service"
)

var formFields = []string{
	features.FieldFullName,
	features.FieldDependents,
	features.FieldEducation,
	features.FieldSelfEmployed,
	features.FieldMonthlyIncome,
	features.FieldCoappIncome,
	features.FieldLoanAmount,
	features.FieldLoanTerm,
	features.FieldCibilScore,
}

type LoanHandler struct {
	service  *service.AssessmentService
	termUnit string
	log      logger.Logger
}

func NewLoanHandler(service *service.AssessmentService, termUnit string, log logger.Logger) *LoanHandler {
	return &LoanHandler{service: service, termUnit: termUnit, log: log}
}

// Index renders the application form.
func (h *LoanHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	renderPage(w, h.log, "index.html", indexView{TermUnit: h.termUnit})
}

// Predict scores a form submission and renders the result page.
func (h *LoanHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	assessment, err := h.service.Assess(r.Context(), formFromValues(r.PostForm))
	if err != nil {
		http.Error(w, "prediction failed", http.StatusInternalServerError)
		return
	}
	renderPage(w, h.log, "result.html", newResultView(assessment))
}

// PredictJSON is the JSON variant of Predict. Field values may be strings
// or numbers; null counts as absent.
func (h *LoanHandler) PredictJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.log.WithError(err).Debug("error decoding request body", nil)
		writeError(w, h.log, http.StatusBadRequest, "invalid request body")
		return
	}

	values := url.Values{}
	for _, field := range formFields {
		switch v := body[field].(type) {
		case string:
			values.Set(field, v)
		case float64:
			values.Set(field, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			values.Set(field, strconv.FormatBool(v))
		}
	}

	assessment, err := h.service.Assess(r.Context(), formFromValues(values))
	if err != nil {
		writeError(w, h.log, http.StatusInternalServerError, "prediction failed")
		return
	}
	writeJSON(w, h.log, http.StatusOK, assessmentResponse{
		Assessment:  assessment,
		Label:       assessment.Decision.Label(),
		Probability: assessment.Decision.Percent(),
	})
}

type assessmentResponse struct {
	domain.Assessment
	Label       string  `json:"result"`
	Probability float64 `json:"probability_percent"`
}

func formFromValues(values url.Values) domain.ApplicantForm {
	present := make(map[string]bool, len(formFields))
	for _, f := range formFields {
		if _, ok := values[f]; ok {
			present[f] = true
		}
	}
	return domain.ApplicantForm{
		FullName:      values.Get(features.FieldFullName),
		Dependents:    values.Get(features.FieldDependents),
		Education:     values.Get(features.FieldEducation),
		SelfEmployed:  values.Get(features.FieldSelfEmployed),
		MonthlyIncome: values.Get(features.FieldMonthlyIncome),
		CoappIncome:   values.Get(features.FieldCoappIncome),
		LoanAmount:    values.Get(features.FieldLoanAmount),
		LoanTerm:      values.Get(features.FieldLoanTerm),
		CibilScore:    values.Get(features.FieldCibilScore),
		Present:       present,
	}
}
