package instagram

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

const (
	// DefaultBaseURL is the Instagram Graph API host
	DefaultBaseURL = "https://graph.instagram.com"

	AccountPath      = "/me"
	MediaPath        = "/me/media"
	MediaPublishPath = "/me/media_publish"

	AccountFields = "user_id,username"
	MediaFields   = "id,media_type,media_product_type,media_url,caption,timestamp,like_count,comments_count,permalink"
	CommentFields = "text,username,timestamp"
)

// Insight metric names
const (
	MetricReach          = "reach"
	MetricLikes          = "likes"
	MetricComments       = "comments"
	MetricSaved          = "saved"
	MetricShares         = "shares"
	MetricViews          = "views"
	MetricReelsTotalTime = "ig_reels_video_view_total_time"
	MetricReelsAvgTime   = "ig_reels_avg_watch_time"
)

// DefaultInsightMetrics is what the insights command asks for without --metric
var DefaultInsightMetrics = []string{
	"reach", "likes", "comments", "saved", "shares",
	"profile_visits", "follows", "total_interactions",
}

// InsightsPath returns the insights edge of a media object
func InsightsPath(mediaID string) string {
	return "/" + url.PathEscape(mediaID) + "/insights"
}

// CommentsPath returns the comments edge of a media object
func CommentsPath(mediaID string) string {
	return "/" + url.PathEscape(mediaID) + "/comments"
}

// ListOptions controls media list requests
type ListOptions struct {
	// Limit is sent as "limit", 0 leaves the API default
	Limit int
	// After resumes from a cursor
	After string
	// Fields overrides MediaFields
	Fields string
}

type fieldsQuery struct {
	Fields      string `url:"fields,omitempty"`
	Limit       int    `url:"limit,omitempty"`
	After       string `url:"after,omitempty"`
	AccessToken string `url:"access_token"`
}

type insightsQuery struct {
	Metric      []string `url:"metric,comma"`
	AccessToken string   `url:"access_token"`
}

type messageQuery struct {
	Message     string `url:"message"`
	AccessToken string `url:"access_token"`
}

type containerQuery struct {
	ImageURL    string `url:"image_url"`
	Caption     string `url:"caption,omitempty"`
	AccessToken string `url:"access_token"`
}

type publishQuery struct {
	CreationID  string `url:"creation_id"`
	AccessToken string `url:"access_token"`
}

// encodeQuery turns one of the query structs into a query string
func encodeQuery(q interface{}) (string, error) {
	values, err := query.Values(q)
	if err != nil {
		return "", fmt.Errorf("encoding query: %w", err)
	}
	return values.Encode(), nil
}

// redactPath strips the query string so tokens never reach logs
func redactPath(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
