package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/govdata-br/pncp-watcher/internal/pncp"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
}

func TestWriteEmptyInputIsNoOp(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "results")
	w := NewCSVWriter(dir, "licitacoes_parana", zap.NewNop())

	path, err := w.Write(nil)
	require.NoError(t, err)
	require.Empty(t, path)

	_, statErr := os.Stat(dir)
	require.True(t, os.IsNotExist(statErr), "results dir must not be created for empty input")
}

func TestWriteProducesDatedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewCSVWriter(dir, "licitacoes_parana", zap.NewNop())
	w.now = fixedClock

	records := []pncp.Record{{
		ControlNumber:    "41000000000100-1-000123/2025",
		OrganizationName: "PREFEITURA MUNICIPAL DE MARINGÁ",
		OrganizationCNPJ: "41000000000100",
		Description:      "Execução de obra de pavimentação",
		EstimatedValue:   150000.5,
		PublicationDate:  "2025-06-10T08:00:00",
		OpeningDate:      "2025-06-20T09:00:00",
		ModalityCode:     8,
	}}

	path, err := w.Write(records)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "licitacoes_parana_2025-06-15.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, utf8BOM), "file must start with the UTF-8 BOM")

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, utf8BOM)))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, header, rows[0])

	row := rows[1]
	require.Equal(t, "41000000000100-1-000123/2025", row[0])
	require.Equal(t, "PREFEITURA MUNICIPAL DE MARINGÁ", row[1])
	require.Equal(t, "150000.50", row[4])
	require.Equal(t, "2025-06-10", row[5])
	require.Equal(t, "2025-06-20", row[6])
	require.Equal(t, "Dispensa de Licitação", row[7])
	require.Equal(t, "https://pncp.gov.br/contratacoes/41000000000100-1-000123%2F2025", row[8])
}

func TestWriteCreatesResultsDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "results")
	w := NewCSVWriter(dir, "licitacoes", zap.NewNop())
	w.now = fixedClock

	path, err := w.Write([]pncp.Record{{ControlNumber: "c-1"}})
	require.NoError(t, err)
	require.FileExists(t, path)
}

func TestWritePreservesAccents(t *testing.T) {
	t.Parallel()

	w := NewCSVWriter(t.TempDir(), "licitacoes", zap.NewNop())
	w.now = fixedClock

	path, err := w.Write([]pncp.Record{{
		ControlNumber: "c-1",
		Description:   "Construção de edificação pública em São José dos Pinhais",
	}})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "Construção de edificação pública em São José dos Pinhais")
}

func TestDatePart(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2025-06-10", datePart("2025-06-10T08:00:00"))
	require.Equal(t, "2025-06-10", datePart("2025-06-10"))
	require.Equal(t, "", datePart(""))
}
