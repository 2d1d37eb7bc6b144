package watcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govdata-br/pncp-watcher/internal/export"
	"github.com/govdata-br/pncp-watcher/internal/filter"
	"github.com/govdata-br/pncp-watcher/internal/notify"
	"github.com/govdata-br/pncp-watcher/internal/pncp"
	"github.com/govdata-br/pncp-watcher/internal/progress"
)

// Watcher wires the pipeline for a single sweep.
type Watcher struct {
	cfg      Config
	logger   *zap.Logger
	runID    uuid.UUID
	selector *pncp.Selector
	keywords filter.Keywords
	region   filter.Region
	exporter *export.CSVWriter
	mailer   *notify.Mailer
}

// New builds a Watcher from the loaded configuration.
func New(cfg Config, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	runID := uuid.New()
	logger = logger.With(zap.String("run_id", runID.String()))
	sink := progress.NewLogSink(logger)

	client := pncp.NewClient(pncp.ClientConfig{
		BaseURL:           cfg.BaseURL,
		MaxAttempts:       cfg.MaxAttempts,
		RetryDelay:        cfg.RetryDelay,
		BackoffMultiplier: cfg.BackoffMultiplier,
		Timeout:           cfg.Timeout,
	}, runID, logger, sink)
	paginator := pncp.NewPaginator(client, logger)

	sources := []pncp.Source{
		pncp.NewPublicationSweep(paginator, cfg.Modalities, cfg.LookbackDays, logger),
		pncp.NewOpenProposals(paginator, cfg.LookbackDays, logger),
	}

	return &Watcher{
		cfg:      cfg,
		logger:   logger,
		runID:    runID,
		selector: pncp.NewSelector(sources, runID, logger, sink),
		keywords: filter.NewKeywords(cfg.Keywords),
		region:   filter.NewRegion(cfg.Region),
		exporter: export.NewCSVWriter(cfg.ResultsDir, cfg.FilePrefix, logger),
		mailer:   notify.NewMailer(cfg.Email, logger),
	}
}

// Run executes one sweep end to end. Export and notification failures are
// logged and degrade to a no-op; the run always reaches its end banner.
func (w *Watcher) Run(ctx context.Context) {
	banner("BUSCA AUTOMÁTICA DE LICITAÇÕES NO PNCP")

	records := w.selector.Gather(ctx)
	w.logger.Info("records gathered", zap.Int("total", len(records)))

	kept := filter.Apply(records, w.keywords, w.region)
	w.logger.Info("records retained", zap.Int("relevant", len(kept)))

	path, err := w.exporter.Write(kept)
	if err != nil {
		w.logger.Error("export failed", zap.Error(err))
		path = ""
	}

	if path != "" && len(kept) > 0 {
		w.mailer.Send(path, len(kept))
	}

	banner("Busca concluída!")
}

func banner(msg string) {
	line := strings.Repeat("=", 60)
	fmt.Println(line)
	fmt.Println(msg)
	fmt.Println(line)
}
