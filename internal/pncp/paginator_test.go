package pncp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPaginatorCollectsEveryPage(t *testing.T) {
	t.Parallel()

	const totalPages = 3
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("pagina"))
		require.NoError(t, err)
		require.Equal(t, strconv.Itoa(PageSize), r.URL.Query().Get("tamanhoPagina"))
		require.Equal(t, "6", r.URL.Query().Get("codigoModalidadeContratacao"))
		w.Write(pageJSON(t, Page{
			Records:    []Record{{ControlNumber: fmt.Sprintf("c-%d", page)}},
			TotalPages: totalPages,
		}))
	}))
	defer srv.Close()

	paginator := NewPaginator(newTestClient(srv.URL, 1, nil), zap.NewNop())
	fixed := url.Values{}
	fixed.Set("codigoModalidadeContratacao", "6")

	records := paginator.Collect(context.Background(), EndpointPublication, fixed)
	require.Len(t, records, totalPages)
	require.Equal(t, "c-0", records[0].ControlNumber)
	require.Equal(t, "c-2", records[2].ControlNumber)
}

func TestPaginatorKeepsPartialResultsOnFailure(t *testing.T) {
	t.Parallel()

	// Page 0 and 1 succeed, page 2 always fails.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("pagina"))
		require.NoError(t, err)
		if page >= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(pageJSON(t, Page{
			Records:    []Record{{ControlNumber: fmt.Sprintf("c-%d", page)}},
			TotalPages: 5,
		}))
	}))
	defer srv.Close()

	paginator := NewPaginator(newTestClient(srv.URL, 2, nil), zap.NewNop())

	records := paginator.Collect(context.Background(), EndpointPublication, url.Values{})
	require.Len(t, records, 2)
	require.Equal(t, "c-1", records[1].ControlNumber)
}

func TestPaginatorStopsWhenTotalPagesAbsent(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		// No totalPaginas field at all.
		w.Write([]byte(`{"data":[{"numeroControle":"c-solo"}]}`))
	}))
	defer srv.Close()

	paginator := NewPaginator(newTestClient(srv.URL, 1, nil), zap.NewNop())

	records := paginator.Collect(context.Background(), EndpointPublication, url.Values{})
	require.Len(t, records, 1)
	require.Equal(t, 1, calls)
}

func TestPaginatorEmptyOnImmediateFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	paginator := NewPaginator(newTestClient(srv.URL, 2, nil), zap.NewNop())

	records := paginator.Collect(context.Background(), EndpointPublication, url.Values{})
	require.Empty(t, records)
}
