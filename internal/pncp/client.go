package pncp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govdata-br/pncp-watcher/internal/progress"
)

// ClientConfig controls the fetch behavior of a Client.
type ClientConfig struct {
	BaseURL           string
	MaxAttempts       int
	RetryDelay        time.Duration
	BackoffMultiplier float64
	Timeout           time.Duration
}

// Client issues GET requests against the consultation API with a bounded
// retry loop. Exactly one request is in flight at any time.
type Client struct {
	cfg           ClientConfig
	baseCollector *colly.Collector
	logger        *zap.Logger
	sink          progress.Sink
	runID         uuid.UUID

	// sleep is swapped out by tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewClient builds a Client. A nil sink discards progress events.
func NewClient(cfg ClientConfig, runID uuid.UUID, logger *zap.Logger, sink progress.Sink) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = progress.NopSink{}
	}

	c := colly.NewCollector(colly.AllowURLRevisit(), colly.Async(false))
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	return &Client{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
		sink:          sink,
		runID:         runID,
		sleep:         time.Sleep,
	}
}

// Get fetches one page of endpoint with params, retrying on transport errors
// and non-2xx statuses up to the attempt budget. It returns ErrRetryExhausted
// (wrapping the last failure) when the budget runs out, and a *ParseError
// without retrying when a 2xx body does not match the page envelope.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (*Page, error) {
	target := c.cfg.BaseURL + endpoint + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetch canceled: %w", err)
		}
		c.emit(progress.Event{Stage: progress.StageFetchStart, Endpoint: endpoint, Attempt: attempt})

		status, body, err := c.visit(ctx, target)
		switch {
		case err != nil && status == 0:
			// Transport-level failure, no response at all.
			c.logger.Warn("request failed",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			lastErr = err
		case status >= 200 && status < 300:
			page := new(Page)
			if uerr := json.Unmarshal(body, page); uerr != nil {
				perr := &ParseError{Endpoint: endpoint, Err: uerr}
				c.logger.Warn("unexpected response shape", zap.String("endpoint", endpoint), zap.Error(perr))
				c.emit(progress.Event{
					Stage:       progress.StageFetchDone,
					Endpoint:    endpoint,
					Attempt:     attempt,
					StatusClass: progress.Classify(status),
					Note:        "parse failure",
				})
				return nil, perr
			}
			c.emit(progress.Event{
				Stage:       progress.StageFetchDone,
				Endpoint:    endpoint,
				Attempt:     attempt,
				StatusClass: progress.Status2xx,
			})
			return page, nil
		default:
			serr := &StatusError{StatusCode: status}
			if status >= 400 && status < 500 {
				// 4xx bodies usually carry a structured error with the
				// rejected parameter; surface it when they do.
				detail := new(APIError)
				if uerr := json.Unmarshal(body, detail); uerr == nil && detail.Message != "" {
					serr.Detail = detail
				}
			}
			if serr.Detail != nil {
				c.logger.Warn("request rejected",
					zap.String("endpoint", endpoint),
					zap.Int("attempt", attempt),
					zap.Int("status", status),
					zap.String("detail", serr.Detail.Message),
				)
			} else {
				c.logger.Warn("unexpected status",
					zap.String("endpoint", endpoint),
					zap.Int("attempt", attempt),
					zap.Int("status", status),
				)
			}
			lastErr = serr
		}

		c.emit(progress.Event{
			Stage:       progress.StageFetchDone,
			Endpoint:    endpoint,
			Attempt:     attempt,
			StatusClass: statusClassOf(lastErr),
			Note:        lastErr.Error(),
		})

		if attempt < c.cfg.MaxAttempts {
			wait := c.backoff(attempt)
			c.emit(progress.Event{Stage: progress.StageFetchRetry, Endpoint: endpoint, Attempt: attempt + 1})
			c.sleep(wait)
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
}

// backoff returns the wait before the attempt following the given one:
// delay * multiplier^(attempt-1).
func (c *Client) backoff(attempt int) time.Duration {
	scale := math.Pow(c.cfg.BackoffMultiplier, float64(attempt-1))
	return time.Duration(float64(c.cfg.RetryDelay) * scale)
}

// visit performs a single GET through a cloned collector, returning the
// status code and body when any response arrived, or an error otherwise.
func (c *Client) visit(ctx context.Context, target string) (int, []byte, error) {
	collector := c.baseCollector.Clone()

	var (
		status   int
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
			body = append([]byte(nil), r.Body...)
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(target)
	}()
	select {
	case <-ctx.Done():
		return 0, nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil && status == 0 {
			return 0, nil, err
		}
	}
	if status == 0 && fetchErr != nil {
		return 0, nil, fetchErr
	}
	return status, body, nil
}

func (c *Client) emit(evt progress.Event) {
	evt.RunID = c.runID
	evt.TS = time.Now().UTC()
	c.sink.Emit(evt)
}

func statusClassOf(err error) progress.StatusClass {
	var serr *StatusError
	if errors.As(err, &serr) {
		return progress.Classify(serr.StatusCode)
	}
	return progress.StatusOther
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
