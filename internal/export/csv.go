// Package export serializes filtered records to a dated CSV file.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/govdata-br/pncp-watcher/internal/pncp"
)

// utf8BOM marks the file so spreadsheet software decodes accents correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var header = []string{
	"Número", "Órgão", "CNPJ", "Objeto", "Valor Estimado",
	"Data Publicação", "Data Abertura", "Modalidade", "URL",
}

// CSVWriter writes one export file per run into the results directory.
type CSVWriter struct {
	dir    string
	prefix string
	logger *zap.Logger

	// now is swapped out by tests to pin the dated file name.
	now func() time.Time
}

// NewCSVWriter builds a writer rooted at dir. Files are named
// "<prefix>_<YYYY-MM-DD>.csv".
func NewCSVWriter(dir, prefix string, logger *zap.Logger) *CSVWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVWriter{dir: dir, prefix: prefix, logger: logger, now: time.Now}
}

// Write serializes records to the run's file and returns its path. An empty
// input is a no-op: nothing is created and the empty path is returned.
func (w *CSVWriter) Write(records []pncp.Record) (string, error) {
	if len(records) == 0 {
		w.logger.Info("no records to export")
		return "", nil
	}

	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return "", fmt.Errorf("create results dir %s: %w", w.dir, err)
	}

	name := fmt.Sprintf("%s_%s.csv", w.prefix, w.now().Format("2006-01-02"))
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(utf8BOM); err != nil {
		return "", fmt.Errorf("write BOM to %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write header to %s: %w", path, err)
	}
	for _, rec := range records {
		row := []string{
			rec.ControlNumber,
			rec.OrganizationName,
			rec.OrganizationCNPJ,
			rec.Description,
			strconv.FormatFloat(rec.EstimatedValue, 'f', 2, 64),
			datePart(rec.PublicationDate),
			datePart(rec.OpeningDate),
			pncp.ModalityName(rec.ModalityCode),
			rec.DetailURL(),
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write row to %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}

	w.logger.Info("results exported", zap.String("path", path), zap.Int("records", len(records)))
	return path, nil
}

// datePart strips the time portion from an ISO-8601 timestamp.
func datePart(ts string) string {
	date, _, _ := strings.Cut(ts, "T")
	return date
}
