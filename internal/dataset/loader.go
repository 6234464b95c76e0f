package dataset

import (
	"encoding/csv"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/tabcert/pkg/errors"
	"github.com/inferloop/tabcert/pkg/models"
)

// Loader reads and writes tabular datasets as CSV files.
type Loader struct {
	logger *logrus.Logger
}

// NewLoader creates a new dataset loader
func NewLoader(logger *logrus.Logger) *Loader {
	if logger == nil {
		logger = logrus.New()
	}
	return &Loader{logger: logger}
}

// Load reads a CSV file into a frame. The first record is treated as the
// header; column kinds are inferred from the cell contents.
func (l *Loader) Load(path string) (*models.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeDataset, errors.CodeReadFailed, "Failed to open dataset").
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeDataset, errors.CodeReadFailed, "Failed to parse CSV").
			WithContext("path", path)
	}
	if len(records) == 0 {
		return nil, errors.NewDatasetError(errors.CodeEmptyFrame, "Dataset has no header row").
			WithContext("path", path)
	}

	frame, err := models.FromRecords(records[0], records[1:])
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"path":    path,
		"rows":    frame.Rows(),
		"columns": frame.Cols(),
	}).Info("Dataset loaded")

	return frame, nil
}

// Write saves a frame as a CSV file with a header row.
func (l *Loader) Write(path string, frame *models.Frame) error {
	if frame == nil {
		return errors.NewValidationError(errors.CodeInvalidInput, "Frame is required")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeDataset, errors.CodeWriteFailed, "Failed to create dataset file").
			WithContext("path", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header, records := frame.Records()
	if err := writer.Write(header); err != nil {
		return errors.WrapError(err, errors.ErrorTypeDataset, errors.CodeWriteFailed, "Failed to write header").
			WithContext("path", path)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return errors.WrapError(err, errors.ErrorTypeDataset, errors.CodeWriteFailed, "Failed to write record").
				WithContext("path", path)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.WrapError(err, errors.ErrorTypeDataset, errors.CodeWriteFailed, "Failed to flush dataset file").
			WithContext("path", path)
	}

	l.logger.WithFields(logrus.Fields{
		"path": path,
		"rows": frame.Rows(),
	}).Info("Dataset written")

	return nil
}
