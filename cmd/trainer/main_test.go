package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-approval/classifier"
	"loan-approval/features"
	"loan-approval/logger"
)

// serviceCSV approves every applicant with a CIBIL score of 650 or more.
func serviceCSV(n int) string {
	var b strings.Builder
	b.WriteString("loan_id, no_of_dependents, education, self_employed, income_annum, loan_amount, loan_term, cibil_score, loan_status\n")
	for i := 0; i < n; i++ {
		score := 400 + (i*37)%500
		status := " Rejected"
		if score >= 650 {
			status = " Approved"
		}
		edu := " Graduate"
		if i%3 == 0 {
			edu = " Not Graduate"
		}
		fmt.Fprintf(&b, "%d,%d,%s, No,%d,%d,%d,%d,%s\n",
			i+1, i%4, edu, 3000000+i*10000, 8000000+i*5000, 2+i%18, score, status)
	}
	return b.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFlags_Defaults(t *testing.T) {
	opts, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "loan.csv"), opts.data)
	assert.Equal(t, filepath.Join("models", "loan_approval_model.json.gz"), opts.out)
	assert.Equal(t, 0.7, opts.threshold)
	assert.Equal(t, 200, opts.params.Trees)
	assert.Equal(t, 10, opts.params.MaxDepth)
	assert.Equal(t, int64(42), opts.params.Seed)
	assert.True(t, opts.params.Balanced)

	opts, err = parseFlags([]string{"-schema", "batch"})
	require.NoError(t, err)
	assert.Equal(t, "model.json.gz", opts.out)
	assert.Equal(t, 0.5, opts.threshold)

	_, err = parseFlags([]string{"-schema", "other"})
	assert.Error(t, err)
}

func TestReadTable_TrimsAndNormalizes(t *testing.T) {
	// The city is written with a combining accent.
	tbl, err := readTable(strings.NewReader("\ufeff name , city\n  Asha ,Cafe\u0301 \n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "city"}, tbl.header)
	require.Len(t, tbl.rows, 1)
	assert.Equal(t, "Asha", tbl.cell(tbl.rows[0], "name"))
	assert.Equal(t, "Caf\u00e9", tbl.cell(tbl.rows[0], "city"))
}

func TestServiceDataset(t *testing.T) {
	tbl, err := readTable(strings.NewReader(serviceCSV(10)))
	require.NoError(t, err)

	ds, err := serviceDataset(tbl)
	require.NoError(t, err)
	require.Len(t, ds.rows, 10)

	v, ok := ds.rows[0].Get(features.Education)
	require.True(t, ok)
	assert.Equal(t, "Not Graduate", v.Str)
	assert.Equal(t, 0, ds.y[0])
}

func TestServiceDataset_Errors(t *testing.T) {
	tbl, err := readTable(strings.NewReader("no_of_dependents,education\n1,Graduate\n"))
	require.NoError(t, err)
	_, err = serviceDataset(tbl)
	assert.ErrorContains(t, err, "missing column(s)")

	bad := strings.Replace(serviceCSV(3), "\n2,1,", "\n2,one,", 1)
	tbl, err = readTable(strings.NewReader(bad))
	require.NoError(t, err)
	_, err = serviceDataset(tbl)
	assert.ErrorContains(t, err, "line 3")
}

func TestBatchDataset_SkipsMalformedRows(t *testing.T) {
	csv := "Loan_ID,Gender,Married,Dependents,Education,Self_Employed,ApplicantIncome,CoapplicantIncome,LoanAmount,Loan_Amount_Term,Credit_History,Property_Area,Loan_Status\n" +
		"LP1,Male,Yes,3+,Graduate,No,5000,1500,120,360,1,Urban,Y\n" +
		"LP2,Female,No,,Graduate,No,3000,0,,360,0,Rural,N\n" +
		"LP3,Female,No,0,Not Graduate,Yes,2500,0,90,360,1,Semiurban,N\n"
	tbl, err := readTable(strings.NewReader(csv))
	require.NoError(t, err)

	ds, err := batchDataset(tbl, logger.NewTestLogger(t))
	require.NoError(t, err)

	assert.Len(t, ds.rows, 2)
	assert.Equal(t, []int{1, 0}, ds.y)
	v, _ := ds.rows[0].Get(features.Dependents)
	assert.Equal(t, 3.0, v.Num)
}

func TestRun_TrainsAndSaves(t *testing.T) {
	data := writeFile(t, "loan.csv", serviceCSV(120))
	out := filepath.Join(t.TempDir(), "models", "model.json.gz")

	var stdout bytes.Buffer
	err := run([]string{"-data", data, "-out", out, "-trees", "15", "-depth", "4"}, &stdout, logger.NewTestLogger(t))
	require.NoError(t, err)

	printed := stdout.String()
	assert.Contains(t, printed, "Accuracy: ")
	assert.Contains(t, printed, "ROC-AUC : ")
	assert.Contains(t, printed, "Classification report:")
	assert.Contains(t, printed, "Saved model → ")

	artifact, err := classifier.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 0.7, artifact.Threshold)
	assert.Equal(t, "service", artifact.Schema)
	assert.Equal(t, []string{
		features.NoOfDependents, features.IncomeAnnum, features.LoanAmount, features.LoanTerm,
		features.CibilScore, features.Education, features.SelfEmployed,
	}, artifact.Features)
	assert.Len(t, artifact.Pipeline.Forest.Trees, 15)
}

func TestRun_MissingData(t *testing.T) {
	err := run([]string{"-data", filepath.Join(t.TempDir(), "none.csv")}, &bytes.Buffer{}, logger.NewNoOpLogger())
	assert.ErrorContains(t, err, "CSV not found")
}
