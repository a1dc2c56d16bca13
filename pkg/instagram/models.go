package instagram

// MediaType is the media_type field of a media object
type MediaType string

const (
	MediaTypeImage    MediaType = "IMAGE"
	MediaTypeVideo    MediaType = "VIDEO"
	MediaTypeCarousel MediaType = "CAROUSEL_ALBUM"
)

// ProductType is the media_product_type field of a media object
type ProductType string

const (
	ProductTypeFeed  ProductType = "FEED"
	ProductTypeReels ProductType = "REELS"
	ProductTypeStory ProductType = "STORY"
	ProductTypeAd    ProductType = "AD"
)

// DisplayKindReels is the display bucket for reels, which the API reports
// with media_type VIDEO
const DisplayKindReels = "REELS"

// DisplayKinds lists the display buckets in report order
var DisplayKinds = []string{
	string(MediaTypeImage),
	string(MediaTypeVideo),
	string(MediaTypeCarousel),
	DisplayKindReels,
}

// Account is the authenticated Instagram professional account
type Account struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Identifier returns user_id, falling back to the node id
func (a Account) Identifier() string {
	if a.UserID != "" {
		return a.UserID
	}
	return a.ID
}

// Media represents a single media object from /me/media
type Media struct {
	ID               string      `json:"id"`
	MediaType        MediaType   `json:"media_type"`
	MediaProductType ProductType `json:"media_product_type"`
	MediaURL         string      `json:"media_url"`
	Caption          string      `json:"caption"`
	Timestamp        string      `json:"timestamp"`
	LikeCount        int         `json:"like_count"`
	CommentsCount    int         `json:"comments_count"`
	Permalink        string      `json:"permalink"`
}

// ProductType returns the product type, FEED when the API omitted it
func (m Media) ProductType() ProductType {
	if m.MediaProductType == "" {
		return ProductTypeFeed
	}
	return m.MediaProductType
}

// IsVideo reports whether the media is a video, reels included
func (m Media) IsVideo() bool {
	return m.MediaType == MediaTypeVideo
}

// IsReel reports whether the media is a reel
func (m Media) IsReel() bool {
	return m.MediaType == MediaTypeVideo && m.ProductType() == ProductTypeReels
}

// DisplayKind returns REELS for reels and the media type otherwise
func (m Media) DisplayKind() string {
	if m.ProductType() == ProductTypeReels {
		return DisplayKindReels
	}
	return string(m.MediaType)
}

// Comment represents a comment on a media object
type Comment struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// Cursors holds the before/after cursors of a page
type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// Paging is the paging block of a Graph API list envelope
type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next"`
}

// Page is a Graph API list envelope
type Page[T any] struct {
	Data   []T    `json:"data"`
	Paging Paging `json:"paging"`
}

// HasNext reports whether another page is available
func (p *Page[T]) HasNext() bool {
	return p.Paging.Next != ""
}

// InsightSet maps metric names to values for one media object.
// Metrics the API did not return are absent.
type InsightSet map[string]float64

// Get returns a metric and whether it was present
func (s InsightSet) Get(name string) (float64, bool) {
	v, ok := s[name]
	return v, ok
}

// Value returns a metric, zero when absent
func (s InsightSet) Value(name string) float64 {
	return s[name]
}

// Container is the result of creating a media container
type Container struct {
	ID string `json:"id"`
}

// PublishedMedia is the result of publishing a container
type PublishedMedia struct {
	ID string `json:"id"`
}

// PostedComment is the result of posting a comment
type PostedComment struct {
	ID string `json:"id"`
}

// RawResponse is an undecoded response, used for debugging
type RawResponse struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
}

// GraphError is the body of a Graph API error envelope
type GraphError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FBTraceID    string `json:"fbtrace_id"`
}

type errorEnvelope struct {
	Error *GraphError `json:"error"`
}
