package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"iganalytics/pkg/config"
	errs "iganalytics/pkg/errors"
	"iganalytics/pkg/logger"
	"iganalytics/pkg/ratelimit"
	"iganalytics/pkg/retry"
)

// ClientConfig holds what a client needs to reach the Graph API
type ClientConfig struct {
	AccessToken string
	BaseURL     string
	Timeout     time.Duration
}

// Client is an Instagram Graph API client. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	limiter     ratelimit.Limiter
	retry       *retry.Config
	logger      logger.Logger
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLimiter makes every request wait on l first
func WithLimiter(l ratelimit.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithRetrier retries GET requests that fail transiently. POST requests
// are never retried since they are not idempotent.
func WithRetrier(cfg *retry.Config) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// NewClient creates a new Graph API client
func NewClient(cfg ClientConfig, log logger.Logger, opts ...ClientOption) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		accessToken: cfg.AccessToken,
		limiter:     ratelimit.Unlimited{},
		logger:      log,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewFromConfig builds a client with the rate limit and retry settings of cfg
func NewFromConfig(cfg *config.Config, log logger.Logger, opts ...ClientOption) *Client {
	base := []ClientOption{WithRetrier(retry.FromSettings(cfg.Retry, log))}
	if cfg.RateLimit.Enabled {
		base = append(base, WithLimiter(ratelimit.ForHour(cfg.RateLimit.RequestsPerHour)))
	}

	return NewClient(ClientConfig{
		AccessToken: cfg.Instagram.AccessToken,
		BaseURL:     cfg.Instagram.BaseURL,
		Timeout:     cfg.Instagram.Timeout,
	}, log, append(base, opts...)...)
}

// decoder consumes a successful response body
type decoder func(body []byte) error

func decodeJSON(target interface{}) decoder {
	return func(body []byte) error {
		return json.Unmarshal(body, target)
	}
}

// call issues one API call, retried for GETs when a retrier is configured
func (c *Client) call(ctx context.Context, method, path string, q interface{}, decode decoder) error {
	rawQuery, err := encodeQuery(q)
	if err != nil {
		return errs.New(errs.ErrorTypeUnknown, 0, err.Error())
	}
	endpoint := c.baseURL + path + "?" + rawQuery

	op := func(ctx context.Context) error {
		return c.roundTrip(ctx, method, endpoint, decode)
	}

	if c.retry == nil || method != http.MethodGet {
		return op(ctx)
	}
	return retry.Do(ctx, op, c.retry)
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, decode decoder) error {
	resp, body, err := c.send(ctx, method, endpoint)
	if err != nil {
		return err
	}

	if err := c.checkResponseStatus(resp.StatusCode, redactPath(endpoint), body); err != nil {
		return err
	}

	if decode == nil {
		return nil
	}
	if err := decode(body); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse response", map[string]interface{}{
			"path":         redactPath(endpoint),
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
			Body:    string(body),
		}
	}
	return nil
}

// send waits for the limiter, performs the request and reads the body
func (c *Client) send(ctx context.Context, method, endpoint string) (*http.Response, []byte, error) {
	path := redactPath(strings.TrimPrefix(endpoint, c.baseURL))

	if !c.limiter.Allow() {
		started := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
		logger.LogRateLimit(c.logger, path, time.Since(started))
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, nil, errs.New(errs.ErrorTypeUnknown, 0, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.LogRequest(c.logger, method, path, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, nil, errs.New(errs.ErrorTypeNetwork, 0, fmt.Sprintf("network error: %v", redactError(err)))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	logger.LogRequest(c.logger, method, path, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return resp, body, nil
}

// checkResponseStatus classifies a non-2xx response, decoding the Graph
// API error envelope when one is present
func (c *Client) checkResponseStatus(statusCode int, path string, body []byte) error {
	errorType := errs.TypeForStatus(statusCode)
	if errorType == "" {
		return nil
	}

	apiErr := &errs.Error{
		Type:    errorType,
		Message: http.StatusText(statusCode),
		Code:    statusCode,
		Body:    string(body),
	}

	var envelope errorEnvelope
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		apiErr.Message = envelope.Error.Message
		apiErr.GraphCode = envelope.Error.Code
		apiErr.Type = errs.TypeForGraphCode(envelope.Error.Code, errorType)
	}

	c.logger.WarnWithFields("Graph API error", map[string]interface{}{
		"status":     statusCode,
		"type":       string(apiErr.Type),
		"graph_code": apiErr.GraphCode,
		"path":       strings.TrimPrefix(path, c.baseURL),
	})

	return apiErr
}

// redactError drops the query string a *url.Error embeds in its message
func redactError(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		redacted := *urlErr
		redacted.URL = redactPath(urlErr.URL)
		return redacted.Error()
	}
	return err.Error()
}

// GetAccount fetches the id and username of the token's account
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	var account Account
	q := fieldsQuery{Fields: AccountFields, AccessToken: c.accessToken}
	if err := c.call(ctx, http.MethodGet, AccountPath, q, decodeJSON(&account)); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListMedia fetches one page of the account's media, newest first
func (c *Client) ListMedia(ctx context.Context, opts ListOptions) (*Page[Media], error) {
	fields := opts.Fields
	if fields == "" {
		fields = MediaFields
	}

	var page Page[Media]
	q := fieldsQuery{Fields: fields, Limit: opts.Limit, After: opts.After, AccessToken: c.accessToken}
	if err := c.call(ctx, http.MethodGet, MediaPath, q, decodeJSON(&page)); err != nil {
		return nil, err
	}
	return &page, nil
}

// MediaListing is the outcome of a possibly multi-page media fetch
type MediaListing struct {
	Items []Media
	Pages int
	// HasMore is true when pages were left unfetched
	HasMore bool
}

// ListAllMedia follows paging.next until it is absent or maxPages pages
// have been read. maxPages <= 0 means no bound. Any page failure fails the
// whole listing.
func (c *Client) ListAllMedia(ctx context.Context, opts ListOptions, maxPages int) (*MediaListing, error) {
	listing := &MediaListing{}
	seen := make(map[string]bool)

	for {
		page, err := c.ListMedia(ctx, opts)
		if err != nil {
			return nil, err
		}
		listing.Items = append(listing.Items, page.Data...)
		listing.Pages++

		after := page.Paging.Cursors.After
		if !page.HasNext() || after == "" || seen[after] {
			return listing, nil
		}
		if maxPages > 0 && listing.Pages >= maxPages {
			listing.HasMore = true
			return listing, nil
		}

		seen[after] = true
		opts.After = after
		c.logger.DebugWithFields("following media cursor", map[string]interface{}{
			"page":  listing.Pages + 1,
			"after": after,
		})
	}
}

// GetInsights fetches the given metrics of one media object. Metrics that
// come back without a numeric value are left out of the set.
func (c *Client) GetInsights(ctx context.Context, mediaID string, metrics []string) (InsightSet, error) {
	var set InsightSet
	q := insightsQuery{Metric: metrics, AccessToken: c.accessToken}
	err := c.call(ctx, http.MethodGet, InsightsPath(mediaID), q, func(body []byte) error {
		parsed, err := parseInsights(body)
		if err != nil {
			return err
		}
		set = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ListComments fetches the first page of comments on a media object
func (c *Client) ListComments(ctx context.Context, mediaID string) ([]Comment, error) {
	var page Page[Comment]
	q := fieldsQuery{Fields: CommentFields, AccessToken: c.accessToken}
	if err := c.call(ctx, http.MethodGet, CommentsPath(mediaID), q, decodeJSON(&page)); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// PostComment comments on a media object
func (c *Client) PostComment(ctx context.Context, mediaID, message string) (*PostedComment, error) {
	var out PostedComment
	q := messageQuery{Message: message, AccessToken: c.accessToken}
	if err := c.call(ctx, http.MethodPost, CommentsPath(mediaID), q, decodeJSON(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateContainer creates an image container, the first publishing step
func (c *Client) CreateContainer(ctx context.Context, imageURL, caption string) (*Container, error) {
	var out Container
	q := containerQuery{ImageURL: imageURL, Caption: caption, AccessToken: c.accessToken}
	if err := c.call(ctx, http.MethodPost, MediaPath, q, decodeJSON(&out)); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errs.New(errs.ErrorTypeParsing, http.StatusOK, "container response has no id")
	}
	return &out, nil
}

// PublishContainer publishes a previously created container
func (c *Client) PublishContainer(ctx context.Context, creationID string) (*PublishedMedia, error) {
	var out PublishedMedia
	q := publishQuery{CreationID: creationID, AccessToken: c.accessToken}
	if err := c.call(ctx, http.MethodPost, MediaPublishPath, q, decodeJSON(&out)); err != nil {
		return nil, err
	}
	return &out, nil
}

// ErrContainerFailed wraps a failed first publishing step
var ErrContainerFailed = errors.New("creating media container failed")

// Publish creates a container for imageURL and publishes it. The publish
// step is only attempted once the container exists.
func (c *Client) Publish(ctx context.Context, imageURL, caption string) (*Container, *PublishedMedia, error) {
	container, err := c.CreateContainer(ctx, imageURL, caption)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrContainerFailed, err)
	}

	published, err := c.PublishContainer(ctx, container.ID)
	if err != nil {
		return container, nil, fmt.Errorf("publishing container %s: %w", container.ID, err)
	}
	return container, published, nil
}

// Raw performs GET /me and returns the response undecoded, whatever its status
func (c *Client) Raw(ctx context.Context) (*RawResponse, error) {
	rawQuery, err := encodeQuery(fieldsQuery{Fields: AccountFields, AccessToken: c.accessToken})
	if err != nil {
		return nil, err
	}

	resp, body, err := c.send(ctx, http.MethodGet, c.baseURL+AccountPath+"?"+rawQuery)
	if err != nil {
		return nil, err
	}
	return &RawResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}
