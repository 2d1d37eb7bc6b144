package pncp

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govdata-br/pncp-watcher/internal/progress"
)

// Consultation API endpoints, relative to the configured base URL.
const (
	EndpointPublication   = "/v1/contratacoes/publicacao"
	EndpointOpenProposals = "/v1/contratacoes/proposta"
	EndpointRecentUpdates = "/v1/contratacoes/atualizacao"
)

const dateLayout = "2006-01-02"

// Source produces the full candidate record set from one upstream strategy.
type Source interface {
	Name() string
	Gather(ctx context.Context) []Record
}

// PublicationSweep queries the publication endpoint over a date window, one
// paginated sweep per modality code, and concatenates the results.
type PublicationSweep struct {
	paginator    *Paginator
	modalities   []int
	lookbackDays int
	logger       *zap.Logger

	// now is swapped out by tests for a fixed date window.
	now func() time.Time
}

// NewPublicationSweep builds the date-ranged multi-modality source.
func NewPublicationSweep(paginator *Paginator, modalities []int, lookbackDays int, logger *zap.Logger) *PublicationSweep {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicationSweep{
		paginator:    paginator,
		modalities:   modalities,
		lookbackDays: lookbackDays,
		logger:       logger,
		now:          time.Now,
	}
}

// Name implements Source.
func (s *PublicationSweep) Name() string { return "publication-sweep" }

// Gather implements Source.
func (s *PublicationSweep) Gather(ctx context.Context) []Record {
	end := s.now()
	start := end.AddDate(0, 0, -s.lookbackDays)

	var records []Record
	for _, modality := range s.modalities {
		s.logger.Info("sweeping modality",
			zap.Int("code", modality),
			zap.String("name", ModalityName(modality)),
		)
		params := url.Values{}
		params.Set("dataInicial", start.Format(dateLayout))
		params.Set("dataFinal", end.Format(dateLayout))
		params.Set("codigoModalidadeContratacao", strconv.Itoa(modality))
		records = append(records, s.paginator.Collect(ctx, EndpointPublication, params)...)
	}
	return records
}

// OpenProposals queries the proposals-open endpoint with no date filter and,
// when that yields nothing, falls back to the recently-updated endpoint over
// the lookback window.
type OpenProposals struct {
	paginator    *Paginator
	lookbackDays int
	logger       *zap.Logger

	now func() time.Time
}

// NewOpenProposals builds the open-proposals source.
func NewOpenProposals(paginator *Paginator, lookbackDays int, logger *zap.Logger) *OpenProposals {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenProposals{
		paginator:    paginator,
		lookbackDays: lookbackDays,
		logger:       logger,
		now:          time.Now,
	}
}

// Name implements Source.
func (s *OpenProposals) Name() string { return "open-proposals" }

// Gather implements Source.
func (s *OpenProposals) Gather(ctx context.Context) []Record {
	records := s.paginator.Collect(ctx, EndpointOpenProposals, url.Values{})
	if len(records) > 0 {
		return records
	}

	s.logger.Info("no open proposals, falling back to recent updates")
	end := s.now()
	start := end.AddDate(0, 0, -s.lookbackDays)
	params := url.Values{}
	params.Set("dataInicial", start.Format(dateLayout))
	params.Set("dataFinal", end.Format(dateLayout))
	return s.paginator.Collect(ctx, EndpointRecentUpdates, params)
}

// Selector tries sources in priority order and keeps the first non-empty
// result.
type Selector struct {
	sources []Source
	logger  *zap.Logger
	sink    progress.Sink
	runID   uuid.UUID
}

// NewSelector builds a Selector over sources in priority order.
func NewSelector(sources []Source, runID uuid.UUID, logger *zap.Logger, sink progress.Sink) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = progress.NopSink{}
	}
	return &Selector{sources: sources, logger: logger, sink: sink, runID: runID}
}

// Gather returns the first source's non-empty record set, or an empty slice
// once every source has been exhausted.
func (s *Selector) Gather(ctx context.Context) []Record {
	for _, source := range s.sources {
		records := source.Gather(ctx)
		s.sink.Emit(progress.Event{
			RunID:    s.runID,
			TS:       time.Now().UTC(),
			Stage:    progress.StageSourceDone,
			Endpoint: source.Name(),
			Records:  len(records),
		})
		if len(records) > 0 {
			s.logger.Info("source selected",
				zap.String("source", source.Name()),
				zap.Int("records", len(records)),
			)
			return records
		}
		s.logger.Info("source yielded no records", zap.String("source", source.Name()))
	}
	return nil
}
