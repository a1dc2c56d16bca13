package analytics

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"iganalytics/internal/enrich"
	"iganalytics/pkg/config"
	errs "iganalytics/pkg/errors"
	"iganalytics/pkg/instagram"
	"iganalytics/pkg/logger"
)

// Client is the part of the Graph API client the analyzer needs
type Client interface {
	GetAccount(ctx context.Context) (*instagram.Account, error)
	ListMedia(ctx context.Context, opts instagram.ListOptions) (*instagram.Page[instagram.Media], error)
	ListAllMedia(ctx context.Context, opts instagram.ListOptions, maxPages int) (*instagram.MediaListing, error)
	GetInsights(ctx context.Context, mediaID string, metrics []string) (instagram.InsightSet, error)
	ListComments(ctx context.Context, mediaID string) ([]instagram.Comment, error)
}

// Fetch stages that abort a run
const (
	StageAccount = "user info"
	StageMedia   = "media"
)

// FetchError is a failed account or media list fetch
type FetchError struct {
	Stage string
	Err   error
	// Account is set when the media list fetch failed
	Account *instagram.Account
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("error fetching %s: %v", e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Status is the HTTP status of the failed call, or the error text when
// no response was received
func (e *FetchError) Status() string {
	return StatusText(e.Err)
}

// Body is the response body of the failed call, if any
func (e *FetchError) Body() string {
	if apiErr, ok := errs.As(e.Err); ok {
		return apiErr.Body
	}
	return ""
}

// StatusText returns the HTTP status code of err, or its message when err
// carries none
func StatusText(err error) string {
	if code := errs.StatusCode(err); code > 0 {
		return strconv.Itoa(code)
	}
	return err.Error()
}

// Options tune one analytics run
type Options struct {
	// Concurrency is the number of posts enriched at once
	Concurrency int
	// FollowPagination reads every media page instead of the first
	FollowPagination bool
	// MaxPages bounds FollowPagination, 0 for no bound
	MaxPages int
	// PageSize is sent as the media list limit, 0 for the API default
	PageSize int
}

// OptionsFromConfig maps the analysis section of the configuration
func OptionsFromConfig(cfg config.AnalysisConfig) Options {
	return Options{
		Concurrency:      cfg.Concurrency,
		FollowPagination: cfg.FollowPagination,
		MaxPages:         cfg.MaxPages,
		PageSize:         cfg.PageSize,
	}
}

// Analyzer builds account reports
type Analyzer struct {
	client Client
	opts   Options
	logger logger.Logger
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(client Client, opts Options, log logger.Logger) *Analyzer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Analyzer{client: client, opts: opts, logger: log}
}

// Run fetches the account and its media, enriches every post with insights
// and comments, and totals the results. Only the account and media list
// fetches are fatal and come back as *FetchError; per-post failures are
// recorded on the item.
func (a *Analyzer) Run(ctx context.Context) (*Report, error) {
	log, _ := logger.WithRunID(a.logger)
	log.DebugWithFields("Starting analytics run", map[string]interface{}{
		"concurrency":       a.opts.Concurrency,
		"follow_pagination": a.opts.FollowPagination,
	})

	account, err := a.client.GetAccount(ctx)
	if err != nil {
		return nil, &FetchError{Stage: StageAccount, Err: err}
	}

	report := &Report{Account: *account}

	media, err := a.fetchMedia(ctx, report)
	if err != nil {
		return nil, &FetchError{Stage: StageMedia, Err: err, Account: account}
	}

	pool := enrich.NewWorkerPool(a.opts.Concurrency, log)
	items, err := enrich.Run(ctx, pool, media, func(ctx context.Context, i int, m instagram.Media) (*Item, error) {
		return a.enrichItem(ctx, log, i+1, m)
	})
	if err != nil {
		return nil, err
	}

	report.Items = items
	for _, item := range items {
		report.Totals.Add(item)
	}

	log.InfoWithFields("Analytics run finished", map[string]interface{}{
		"posts":    report.Totals.Posts,
		"pages":    report.Pages,
		"has_more": report.HasMore,
	})
	return report, nil
}

func (a *Analyzer) fetchMedia(ctx context.Context, report *Report) ([]instagram.Media, error) {
	opts := instagram.ListOptions{Limit: a.opts.PageSize}

	if a.opts.FollowPagination {
		listing, err := a.client.ListAllMedia(ctx, opts, a.opts.MaxPages)
		if err != nil {
			return nil, err
		}
		report.Pages = listing.Pages
		report.HasMore = listing.HasMore
		return listing.Items, nil
	}

	page, err := a.client.ListMedia(ctx, opts)
	if err != nil {
		return nil, err
	}
	report.Pages = 1
	report.HasMore = page.HasNext()
	return page.Data, nil
}

// enrichItem never fails on API errors; only cancellation stops it
func (a *Analyzer) enrichItem(ctx context.Context, log logger.Logger, number int, m instagram.Media) (*Item, error) {
	item := &Item{Number: number, Media: m}

	insights, err := a.client.GetInsights(ctx, m.ID, instagram.MetricsFor(m))
	if err != nil {
		if isCancelled(ctx, err) {
			return nil, err
		}
		item.InsightsErr = err
		logger.LogDegraded(log, m.ID, "insights", err)
	} else {
		item.Insights = insights
	}

	if m.CommentsCount <= 0 {
		return item, nil
	}

	comments, err := a.client.ListComments(ctx, m.ID)
	if err != nil {
		if isCancelled(ctx, err) {
			return nil, err
		}
		item.CommentsErr = err
		item.Comments = []instagram.Comment{}
		logger.LogDegraded(log, m.ID, "comments", err)
		return item, nil
	}
	item.Comments = comments
	return item, nil
}

func isCancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
