package watcher

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/govdata-br/pncp-watcher/internal/filter"
	"github.com/govdata-br/pncp-watcher/internal/notify"
	"github.com/govdata-br/pncp-watcher/internal/pncp"
)

func testConfig(baseURL, resultsDir string) Config {
	return Config{
		BaseURL:           baseURL,
		MaxAttempts:       2,
		RetryDelay:        time.Millisecond,
		BackoffMultiplier: 2,
		Timeout:           5 * time.Second,
		Keywords:          []string{"obra"},
		Region: filter.RegionConfig{
			CNPJPrefix:   "41",
			Abbreviation: "pr",
			Names:        []string{"paraná", "parana"},
			Cities:       []string{"curitiba"},
		},
		LookbackDays: 7,
		Modalities:   []int{8},
		ResultsDir:   resultsDir,
		FilePrefix:   "licitacoes_parana",
		Email:        notify.Config{},
	}
}

func servePage(t *testing.T, w http.ResponseWriter, page pncp.Page) {
	t.Helper()
	payload, err := json.Marshal(page)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
}

func TestRunEndToEnd(t *testing.T) {
	t.Parallel()

	matching := pncp.Record{
		ControlNumber:    "41000000000100-1-000123/2025",
		OrganizationName: "PREFEITURA MUNICIPAL DE CURITIBA",
		OrganizationCNPJ: "41000000000100",
		Description:      "Execução de obra de pavimentação urbana",
		EstimatedValue:   250000,
		PublicationDate:  "2025-06-10T08:00:00",
		OpeningDate:      "2025-06-20T09:00:00",
		ModalityCode:     8,
	}
	other := pncp.Record{
		ControlNumber:    "35000000000100-1-000999/2025",
		OrganizationName: "PREFEITURA DE CAMPINAS",
		OrganizationCNPJ: "35000000000100",
		Description:      "Aquisição de material de escritório",
		ModalityCode:     6,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, pncp.EndpointPublication, r.URL.Path)
		switch r.URL.Query().Get("pagina") {
		case "0":
			servePage(t, w, pncp.Page{Records: []pncp.Record{matching}, TotalPages: 2})
		case "1":
			servePage(t, w, pncp.Page{Records: []pncp.Record{other}, TotalPages: 2})
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("pagina"))
		}
	}))
	defer srv.Close()

	resultsDir := filepath.Join(t.TempDir(), "results")
	w := New(testConfig(srv.URL, resultsDir), zap.NewNop())
	w.Run(context.Background())

	entries, err := os.ReadDir(resultsDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	raw, err := os.ReadFile(filepath.Join(resultsDir, entries[0].Name()))
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus exactly one retained record")

	row := rows[1]
	require.Equal(t, matching.ControlNumber, row[0])
	require.Equal(t, "Dispensa de Licitação", row[7])
	require.Equal(t, "https://pncp.gov.br/contratacoes/41000000000100-1-000123%2F2025", row[8])
}

func TestRunWithNoMatchesWritesNothing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Both sources answer with empty pages.
		servePage(t, w, pncp.Page{TotalPages: 1})
	}))
	defer srv.Close()

	resultsDir := filepath.Join(t.TempDir(), "results")
	w := New(testConfig(srv.URL, resultsDir), zap.NewNop())
	w.Run(context.Background())

	_, err := os.Stat(resultsDir)
	require.True(t, os.IsNotExist(err))
}

func TestRunSurvivesUnreachableUpstream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	resultsDir := filepath.Join(t.TempDir(), "results")
	w := New(testConfig(srv.URL, resultsDir), zap.NewNop())

	// Every fetch fails; the run must still complete without touching disk.
	w.Run(context.Background())
	_, err := os.Stat(resultsDir)
	require.True(t, os.IsNotExist(err))
}
