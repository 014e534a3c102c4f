package excel

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"visioncheck/domain/core"
	"visioncheck/domain/vision"
)

func sampleHistory(t *testing.T) []vision.StoredTestResult {
	t.Helper()

	snellen := vision.SnellenResult{
		Score:          vision.Score2030,
		Accuracy:       85,
		CorrectAnswers: 17,
		TotalQuestions: 20,
		Duration:       92,
		Date:           "2026-02-01",
	}
	report := &vision.Report{
		ID:              core.NewReportID(),
		TestType:        vision.TestSnellen,
		Timestamp:       "2026-02-01T09:00:00Z",
		Confidence:      91.5,
		Status:          vision.StatusReliable,
		Summary:         "Mild acuity reduction.",
		Recommendations: []string{vision.ReferralRecommendation},
		Severity:        vision.SeverityLow,
	}

	amsler := vision.AmslerGridResult{
		IssueDetected: true,
		Severity:      vision.SeverityMedium,
		Details:       "top-left",
		Date:          "2026-02-02",
		Duration:      20,
	}

	return []vision.StoredTestResult{
		vision.NewStoredTestResult(snellen, report),
		{
			ID:       core.NewReportID(),
			TestType: vision.TestAmsler,
			Date:     amsler.Date,
			Result:   amsler,
			// Report generation failed for this one.
		},
	}
}

func TestHistoryExporterWrite(t *testing.T) {
	exporter := NewHistoryExporter(zap.NewNop())
	records := sampleHistory(t)

	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, records))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, historyHeaders, rows[0])

	require.Equal(t, "2026-02-01", rows[1][1])
	require.Equal(t, "snellen", rows[1][2])
	require.Equal(t, "LOW", rows[1][4])
	require.Equal(t, "91.5", rows[1][5])
	require.Equal(t, "RELIABLE", rows[1][6])

	// The reportless record keeps its result columns and leaves the
	// report columns blank.
	require.Equal(t, "amsler", rows[2][2])
	require.Len(t, rows[2], 4)
}

func TestHistoryExporterExport(t *testing.T) {
	exporter := NewHistoryExporter(zap.NewNop())
	path := filepath.Join(t.TempDir(), "history.xlsx")

	require.NoError(t, exporter.Export(path, sampleHistory(t)))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestHistoryExporterEmptyHistory(t *testing.T) {
	exporter := NewHistoryExporter(zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, exporter.Write(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
