package artifacts

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/tabcert/internal/dataset"
	"github.com/inferloop/tabcert/pkg/constants"
	"github.com/inferloop/tabcert/pkg/errors"
	"github.com/inferloop/tabcert/pkg/models"
)

// Writer persists the outputs of a certification run under a timestamped
// directory inside a base artifacts directory.
type Writer struct {
	logger  *logrus.Logger
	baseDir string
	now     func() time.Time
}

// RunPaths lists the files written for one run.
type RunPaths struct {
	RunDir   string `json:"run_dir"`
	CSVPath  string `json:"csv_path,omitempty"`
	JSONPath string `json:"json_path"`
	HTMLPath string `json:"html_path"`
}

// NewWriter creates a new artifact writer rooted at baseDir
func NewWriter(baseDir string, logger *logrus.Logger) *Writer {
	if baseDir == "" {
		baseDir = constants.DefaultArtifactsDir
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Writer{logger: logger, baseDir: baseDir, now: time.Now}
}

// SaveRun writes the synthetic frame (when present), the JSON report, and the
// HTML report into a fresh run directory and returns the paths.
func (w *Writer) SaveRun(synth *models.Frame, summary *models.CertificationSummary) (*RunPaths, error) {
	if summary == nil {
		return nil, errors.NewValidationError(errors.CodeInvalidInput, "Certification summary is required")
	}

	ts := w.now().Format(constants.RunDirTimeFormat)
	runDir := filepath.Join(w.baseDir, constants.RunDirPrefix+ts)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeDataset, errors.CodeWriteFailed, "Failed to create run directory").
			WithContext("run_dir", runDir)
	}

	paths := &RunPaths{
		RunDir:   runDir,
		JSONPath: filepath.Join(runDir, constants.ReportJSONName),
		HTMLPath: filepath.Join(runDir, constants.ReportHTMLName),
	}

	if synth != nil {
		paths.CSVPath = filepath.Join(runDir, constants.SyntheticFileName)
		loader := dataset.NewLoader(w.logger)
		if err := loader.Write(paths.CSVPath, synth); err != nil {
			return nil, err
		}
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeDataset, errors.CodeWriteFailed, "Failed to encode JSON report")
	}
	if err := os.WriteFile(paths.JSONPath, data, 0o644); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeDataset, errors.CodeWriteFailed, "Failed to write JSON report").
			WithContext("path", paths.JSONPath)
	}

	html, err := RenderHTML(summary)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(paths.HTMLPath, []byte(html), 0o644); err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeDataset, errors.CodeWriteFailed, "Failed to write HTML report").
			WithContext("path", paths.HTMLPath)
	}

	w.logger.WithFields(logrus.Fields{
		"run_dir": runDir,
		"run_id":  summary.ID,
	}).Info("Run artifacts saved")

	return paths, nil
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"fmt": formatMetric,
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Certification Report {{.ID}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #ccc; padding: 4px 10px; text-align: left; }
th { background: #f0f0f0; }
.undefined { color: #999; }
</style>
</head>
<body>
<h1>Certification Report</h1>
<p>Run {{.ID}} at {{.CreatedAt.Format "2006-01-02 15:04:05"}}</p>

{{if .Fidelity}}
<h2>Fidelity</h2>
<table>
<tr><th>Univariate OK</th><td>{{printf "%.1f%%" .Fidelity.Headline.UnivariateOkPercent}}</td></tr>
<tr><th>Median score</th><td>{{fmt .Fidelity.Headline.MedianScore}}</td></tr>
<tr><th>Median corr delta</th><td>{{fmt .Fidelity.Headline.MedianCorrDelta}}</td></tr>
</table>
<h3>Per-column scores</h3>
<table>
<tr><th>Column</th><th>Metric</th><th>Score</th></tr>
{{range .Fidelity.Univariate}}<tr><td>{{.Column}}</td><td>{{.Metric}}</td><td>{{fmt .Value}}</td></tr>
{{end}}</table>
{{end}}

{{if .Privacy}}
<h2>Privacy</h2>
<table>
<tr><th>Exact match rate</th><td>{{printf "%.4f" .Privacy.ExactMatchRate}}</td></tr>
<tr><th>Uniqueness rate</th><td>{{printf "%.4f" .Privacy.SyntheticUniquenessRate}}</td></tr>
<tr><th>kNN distance median</th><td>{{fmt .Privacy.KNNMinDistance.Median}}</td></tr>
<tr><th>kNN distance p05</th><td>{{fmt .Privacy.KNNMinDistance.P05}}</td></tr>
<tr><th>kNN distance p95</th><td>{{fmt .Privacy.KNNMinDistance.P95}}</td></tr>
<tr><th>Exact match OK</th><td>{{.Privacy.Flags.ExactMatchOk}}</td></tr>
<tr><th>kNN min distance OK</th><td>{{.Privacy.Flags.KNNMinOk}}</td></tr>
</table>
{{end}}

{{if .Utility}}
<h2>Utility Transfer</h2>
<table>
{{if .Utility.Binary}}
<tr><th>Positive label</th><td>{{.Utility.PositiveLabel}}</td></tr>
<tr><th>Threshold</th><td>{{fmt .Utility.ThresholdUsed}}</td></tr>
<tr><th>Synth→Real AUROC</th><td>{{fmt .Utility.SynthAUROC}}</td></tr>
<tr><th>Real→Real AUROC</th><td>{{fmt .Utility.RealAUROC}}</td></tr>
<tr><th>Delta AUROC</th><td>{{fmt .Utility.DeltaAUROC}}</td></tr>
<tr><th>Synth→Real PR-AUC</th><td>{{fmt .Utility.SynthPRAUC}}</td></tr>
<tr><th>Real→Real PR-AUC</th><td>{{fmt .Utility.RealPRAUC}}</td></tr>
<tr><th>Delta PR-AUC</th><td>{{fmt .Utility.DeltaPRAUC}}</td></tr>
<tr><th>Synth→Real F1 (tuned)</th><td>{{fmt .Utility.SynthF1Tuned}}</td></tr>
<tr><th>Real→Real F1 (tuned)</th><td>{{fmt .Utility.RealF1Tuned}}</td></tr>
<tr><th>Delta F1</th><td>{{fmt .Utility.DeltaF1Tuned}}</td></tr>
{{else}}
<tr><th>Synth→Real macro F1</th><td>{{fmt .Utility.SynthMacroF1}}</td></tr>
<tr><th>Real→Real macro F1</th><td>{{fmt .Utility.RealMacroF1}}</td></tr>
<tr><th>Delta macro F1</th><td>{{fmt .Utility.DeltaMacroF1}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Errors}}
<h2>Errors</h2>
<table>
<tr><th>Analyzer</th><th>Error</th></tr>
{{range $name, $msg := .Errors}}<tr><td>{{$name}}</td><td>{{$msg}}</td></tr>
{{end}}</table>
{{end}}

</body>
</html>
`))

// RenderHTML renders the certification summary as a standalone HTML page.
func RenderHTML(summary *models.CertificationSummary) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, summary); err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeInternal, errors.CodeInternalError, "Failed to render HTML report")
	}
	return buf.String(), nil
}

func formatMetric(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', 4, 64)
}
