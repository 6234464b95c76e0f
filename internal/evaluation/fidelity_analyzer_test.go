package evaluation

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferloop/tabcert/pkg/constants"
	"github.com/inferloop/tabcert/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func makeFrame(t *testing.T, header []string, records [][]string) *models.Frame {
	t.Helper()
	frame, err := models.FromRecords(header, records)
	require.NoError(t, err)
	return frame
}

func mixedFrame(t *testing.T) *models.Frame {
	return makeFrame(t, []string{"age", "income", "city"}, [][]string{
		{"25", "30000", "Lyon"},
		{"32", "42000", "Paris"},
		{"41", "55000", "Lyon"},
		{"29", "38000", "Nice"},
		{"57", "61000", "Paris"},
		{"36", "47000", "Lyon"},
		{"44", "52000", "Nice"},
		{"31", "40000", "Paris"},
	})
}

func TestUnivariateSimilarityIdenticalFrames(t *testing.T) {
	analyzer := NewFidelityAnalyzer(nil, testLogger())
	frame := mixedFrame(t)

	profiles, err := analyzer.UnivariateSimilarity(context.Background(), frame, frame)
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	for _, p := range profiles {
		require.NotNil(t, p.Value, "column %s", p.Column)
		assert.Equal(t, 0.0, *p.Value)
	}
}

func TestUnivariateSimilarityMetricSelection(t *testing.T) {
	analyzer := NewFidelityAnalyzer(nil, testLogger())
	real := mixedFrame(t)

	profiles, err := analyzer.UnivariateSimilarity(context.Background(), real, real)
	require.NoError(t, err)

	byColumn := make(map[string]models.ColumnProfile)
	for _, p := range profiles {
		byColumn[p.Column] = p
	}
	assert.Equal(t, constants.MetricKS, byColumn["age"].Metric)
	assert.Equal(t, constants.MetricKS, byColumn["income"].Metric)
	assert.Equal(t, constants.MetricTVD, byColumn["city"].Metric)
}

func TestUnivariateSimilarityTVDCollapsedCategory(t *testing.T) {
	analyzer := NewFidelityAnalyzer(nil, testLogger())

	real := makeFrame(t, []string{"cat"}, [][]string{{"a"}, {"b"}, {"a"}, {"b"}, {"a"}})
	synth := makeFrame(t, []string{"cat"}, [][]string{{"a"}, {"a"}, {"a"}, {"a"}, {"a"}})

	profiles, err := analyzer.UnivariateSimilarity(context.Background(), real, synth)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	assert.Equal(t, constants.MetricTVD, profiles[0].Metric)
	require.NotNil(t, profiles[0].Value)
	assert.InDelta(t, 0.4, *profiles[0].Value, 1e-12)
}

func TestUnivariateSimilarityKindMismatchIsUndefined(t *testing.T) {
	analyzer := NewFidelityAnalyzer(nil, testLogger())
	real := makeFrame(t, []string{"v"}, [][]string{
		{"1"}, {"2"}, {"3"}, {"4"}, {"5"}, {"6"}, {"7"},
	})
	synth := makeFrame(t, []string{"v"}, [][]string{
		{"low"}, {"high"}, {"low"}, {"mid"}, {"low"}, {"mid"}, {"high"},
	})

	profiles, err := analyzer.UnivariateSimilarity(context.Background(), real, synth)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, constants.MetricKS, profiles[0].Metric)
	assert.Nil(t, profiles[0].Value)
}

func TestUnivariateSimilarityOrdersAscendingUndefinedLast(t *testing.T) {
	analyzer := NewFidelityAnalyzer(nil, testLogger())
	real := makeFrame(t, []string{"good", "bad", "undef"}, [][]string{
		{"1", "1", "1"},
		{"2", "2", "2"},
		{"3", "3", "3"},
		{"4", "4", "4"},
		{"5", "5", "5"},
		{"6", "6", "6"},
	})
	synth := makeFrame(t, []string{"good", "bad", "undef"}, [][]string{
		{"1", "100", "a"},
		{"2", "200", "b"},
		{"3", "300", "c"},
		{"4", "400", "d"},
		{"5", "500", "e"},
		{"6", "600", "f"},
	})

	profiles, err := analyzer.UnivariateSimilarity(context.Background(), real, synth)
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	assert.Equal(t, "good", profiles[0].Column)
	assert.Equal(t, "bad", profiles[1].Column)
	assert.Equal(t, "undef", profiles[2].Column)
	assert.Nil(t, profiles[2].Value)
}

func TestCorrelationDeltaIdenticalFrames(t *testing.T) {
	analyzer := NewFidelityAnalyzer(nil, testLogger())
	frame := makeFrame(t, []string{"a", "b", "c"}, [][]string{
		{"1", "2", "5"},
		{"2", "4", "3"},
		{"3", "6", "8"},
		{"4", "8", "1"},
		{"5", "10", "9"},
		{"6", "12", "4"},
	})

	pairs, err := analyzer.CorrelationDelta(context.Background(), frame, frame)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	for _, p := range pairs {
		assert.InDelta(t, 0.0, p.AbsDelta, 1e-12)
	}
}

func TestCorrelationDeltaNeedsTwoNumericColumns(t *testing.T) {
	analyzer := NewFidelityAnalyzer(nil, testLogger())
	frame := makeFrame(t, []string{"x", "c"}, [][]string{
		{"1", "a"}, {"2", "b"}, {"3", "a"},
	})

	pairs, err := analyzer.CorrelationDelta(context.Background(), frame, frame)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestCorrelationDeltaOrdersAscending(t *testing.T) {
	analyzer := NewFidelityAnalyzer(nil, testLogger())
	real := makeFrame(t, []string{"a", "b", "c"}, [][]string{
		{"1", "1", "6"},
		{"2", "2", "2"},
		{"3", "3", "9"},
		{"4", "4", "1"},
		{"5", "5", "7"},
		{"6", "6", "3"},
	})
	// b inverted relative to a, c unchanged.
	synth := makeFrame(t, []string{"a", "b", "c"}, [][]string{
		{"1", "6", "6"},
		{"2", "5", "2"},
		{"3", "4", "9"},
		{"4", "3", "1"},
		{"5", "2", "7"},
		{"6", "1", "3"},
	})

	pairs, err := analyzer.CorrelationDelta(context.Background(), real, synth)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	for i := 1; i < len(pairs); i++ {
		assert.LessOrEqual(t, pairs[i-1].AbsDelta, pairs[i].AbsDelta)
	}
	worst := pairs[len(pairs)-1]
	assert.Equal(t, "a", worst.ColI)
	assert.Equal(t, "b", worst.ColJ)
	assert.InDelta(t, 2.0, worst.AbsDelta, 1e-9)
}

func TestFidelityReportIdenticalFrames(t *testing.T) {
	analyzer := NewFidelityAnalyzer(nil, testLogger())
	frame := mixedFrame(t)

	report, err := analyzer.Report(context.Background(), frame, frame)
	require.NoError(t, err)

	assert.Equal(t, 100.0, report.Headline.UnivariateOkPercent)
	require.NotNil(t, report.Headline.MedianScore)
	assert.Equal(t, 0.0, *report.Headline.MedianScore)
	require.NotNil(t, report.Headline.MedianCorrDelta)
	assert.InDelta(t, 0.0, *report.Headline.MedianCorrDelta, 1e-12)
	assert.Len(t, report.Univariate, 3)
	assert.Len(t, report.CorrTop, 1)
	assert.Len(t, report.CorrWorst, 1)
}

func TestFidelityReportUndefinedCountsAgainstOkPercent(t *testing.T) {
	analyzer := NewFidelityAnalyzer(nil, testLogger())
	real := makeFrame(t, []string{"num", "mismatch"}, [][]string{
		{"1", "1"}, {"2", "2"}, {"3", "3"}, {"4", "4"}, {"5", "5"}, {"6", "6"},
	})
	synth := makeFrame(t, []string{"num", "mismatch"}, [][]string{
		{"1", "a"}, {"2", "b"}, {"3", "c"}, {"4", "d"}, {"5", "e"}, {"6", "f"},
	})

	report, err := analyzer.Report(context.Background(), real, synth)
	require.NoError(t, err)

	// One defined zero score out of two columns.
	assert.Equal(t, 50.0, report.Headline.UnivariateOkPercent)
	require.NotNil(t, report.Headline.MedianScore)
	assert.Equal(t, 0.0, *report.Headline.MedianScore)
	assert.Nil(t, report.Headline.MedianCorrDelta)
}

func TestFidelityReportTopPairsLimit(t *testing.T) {
	analyzer := NewFidelityAnalyzer(&FidelityAnalyzerConfig{TopPairs: 2, OkThreshold: constants.UnivariateOkThreshold}, testLogger())
	frame := makeFrame(t, []string{"a", "b", "c", "d"}, [][]string{
		{"1", "2", "5", "3"},
		{"2", "4", "3", "9"},
		{"3", "6", "8", "2"},
		{"4", "8", "1", "7"},
		{"5", "10", "9", "5"},
		{"6", "12", "4", "8"},
	})

	report, err := analyzer.Report(context.Background(), frame, frame)
	require.NoError(t, err)

	// 6 pairs total, capped at 2 on each end.
	assert.Len(t, report.CorrTop, 2)
	assert.Len(t, report.CorrWorst, 2)
}
