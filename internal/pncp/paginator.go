package pncp

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/govdata-br/pncp-watcher/internal/progress"
)

// PageSize is the fixed page size requested from every paginated endpoint.
const PageSize = 100

// Paginator sweeps a paged endpoint through a Client, accumulating records.
type Paginator struct {
	client *Client
	logger *zap.Logger
}

// NewPaginator builds a Paginator on top of client.
func NewPaginator(client *Client, logger *zap.Logger) *Paginator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Paginator{client: client, logger: logger}
}

// Collect fetches every page of endpoint with the given fixed params. The
// page index starts at 0 and the total page count is adopted from each
// response. Any fetch or parse failure ends the sweep early; whatever was
// accumulated up to that point is returned, never an error.
func (p *Paginator) Collect(ctx context.Context, endpoint string, fixed url.Values) []Record {
	var records []Record

	page := 0
	totalPages := 1 // forces the first iteration
	for page < totalPages {
		params := url.Values{}
		for k, v := range fixed {
			params[k] = v
		}
		params.Set("pagina", strconv.Itoa(page))
		params.Set("tamanhoPagina", strconv.Itoa(PageSize))

		resp, err := p.client.Get(ctx, endpoint, params)
		if err != nil {
			p.logger.Warn("pagination stopped early",
				zap.String("endpoint", endpoint),
				zap.Int("page", page),
				zap.Int("accumulated", len(records)),
				zap.Error(err),
			)
			return records
		}

		records = append(records, resp.Records...)
		totalPages = resp.TotalPages
		page++

		p.client.sink.Emit(progress.Event{
			RunID:      p.client.runID,
			TS:         time.Now().UTC(),
			Stage:      progress.StagePageDone,
			Endpoint:   endpoint,
			PageIndex:  page,
			TotalPages: totalPages,
			Records:    len(resp.Records),
		})
		p.logger.Info("page processed",
			zap.String("endpoint", endpoint),
			zap.Int("page", page),
			zap.Int("total_pages", totalPages),
			zap.Int("records", len(resp.Records)),
		)
	}

	return records
}
