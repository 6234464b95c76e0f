package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/tabcert/pkg/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func sampleSummary() *models.CertificationSummary {
	return &models.CertificationSummary{
		ID: "run-test",
		Fidelity: &models.FidelityReport{
			Headline: models.FidelityHeadline{
				UnivariateOkPercent: 100,
				MedianScore:         models.Float64Ptr(0.02),
			},
			Univariate: []models.ColumnProfile{
				{Column: "age", Metric: "KS", Value: models.Float64Ptr(0.02)},
				{Column: "income", Metric: "KS", Value: nil},
			},
		},
		Privacy: &models.PrivacyReport{
			ExactMatchRate:          0,
			SyntheticUniquenessRate: 1,
			KNNMinDistance: models.KNNDistanceSummary{
				Median: models.Float64Ptr(1.5),
				P05:    models.Float64Ptr(0.3),
				P95:    models.Float64Ptr(4.2),
			},
			Flags: models.PrivacyFlags{ExactMatchOk: true, KNNMinOk: true},
		},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveRunWritesAllArtifacts(t *testing.T) {
	base := t.TempDir()
	writer := NewWriter(base, quietLogger())
	writer.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	frame, err := models.FromRecords([]string{"x"}, [][]string{{"1"}, {"2"}})
	require.NoError(t, err)

	paths, err := writer.SaveRun(frame, sampleSummary())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "run-20250601-120000"), paths.RunDir)
	for _, p := range []string{paths.CSVPath, paths.JSONPath, paths.HTMLPath} {
		info, err := os.Stat(p)
		require.NoError(t, err, "expected %s to exist", p)
		assert.False(t, info.IsDir())
	}

	data, err := os.ReadFile(paths.JSONPath)
	require.NoError(t, err)
	var decoded models.CertificationSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-test", decoded.ID)
	require.NotNil(t, decoded.Privacy)
	assert.True(t, decoded.Privacy.Flags.ExactMatchOk)
}

func TestSaveRunWithoutFrameSkipsCSV(t *testing.T) {
	writer := NewWriter(t.TempDir(), quietLogger())

	paths, err := writer.SaveRun(nil, sampleSummary())
	require.NoError(t, err)

	assert.Empty(t, paths.CSVPath)
	_, err = os.Stat(paths.JSONPath)
	assert.NoError(t, err)
}

func TestSaveRunNilSummary(t *testing.T) {
	writer := NewWriter(t.TempDir(), quietLogger())

	_, err := writer.SaveRun(nil, nil)
	assert.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(sampleSummary())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "run-test")
	assert.Contains(t, html, "Fidelity")
	assert.Contains(t, html, "Privacy")
	// Undefined metric values render as a placeholder, not NaN.
	assert.Contains(t, html, "n/a")
	assert.NotContains(t, html, "NaN")
}
