// Package graphtest runs an in-process fake of the Instagram Graph API
// endpoints the client uses, for tests.
package graphtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Media is a media fixture
type Media struct {
	ID            string
	MediaType     string
	ProductType   string
	MediaURL      string
	Caption       string
	Timestamp     string
	Permalink     string
	LikeCount     int
	CommentsCount int
}

// Comment is a comment fixture
type Comment struct {
	ID        string
	Username  string
	Text      string
	Timestamp string
}

// Request records one request the server received
type Request struct {
	Method string
	Path   string
	Query  url.Values
}

type failure struct {
	status    int
	graphCode int
	remaining int // <= 0 fails forever
}

// Server simulates the Graph API
type Server struct {
	*httptest.Server

	// Token, when set, is the only access token accepted
	Token string

	mu        sync.Mutex
	userID    string
	username  string
	media     []Media
	pageSize  int
	insights  map[string]string
	comments  map[string][]Comment
	failures  map[string]*failure
	delay     time.Duration
	requests  []Request
	nextID    int
	created   map[string]bool
	published []string
	posted    map[string][]string
}

// New starts a server that is closed when the test ends
func New(tb testing.TB) *Server {
	s := &Server{
		userID:   "17841400000000001",
		username: "testaccount",
		insights: make(map[string]string),
		comments: make(map[string][]Comment),
		failures: make(map[string]*failure),
		created:  make(map[string]bool),
		posted:   make(map[string][]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	tb.Cleanup(s.Close)
	return s
}

// SetAccount sets the /me response
func (s *Server) SetAccount(userID, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID, s.username = userID, username
}

// SetMedia sets the media list, newest first
func (s *Server) SetMedia(items ...Media) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media = items
}

// SetPageSize splits the media list into pages of n items
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// SetInsights sets the insight values of a media object. Values are
// served as values[0].value and may be non-numeric.
func (s *Server) SetInsights(mediaID string, metrics map[string]interface{}) {
	data := make([]map[string]interface{}, 0, len(metrics))
	for name, value := range metrics {
		data = append(data, map[string]interface{}{
			"name":   name,
			"period": "lifetime",
			"values": []map[string]interface{}{{"value": value}},
			"id":     mediaID + "/insights/" + name + "/lifetime",
		})
	}
	body, _ := json.Marshal(map[string]interface{}{"data": data})
	s.SetInsightsJSON(mediaID, string(body))
}

// SetInsightsJSON sets the raw insights body of a media object
func (s *Server) SetInsightsJSON(mediaID, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights[mediaID] = body
}

// SetComments sets the comments of a media object
func (s *Server) SetComments(mediaID string, comments ...Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments[mediaID] = comments
}

// Fail makes requests to path answer with status and, when graphCode is
// non-zero, a Graph error envelope. times <= 0 fails every request.
func (s *Server) Fail(path string, status, graphCode, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = &failure{status: status, graphCode: graphCode, remaining: times}
}

// SetDelay delays every response
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Requests returns every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestCount counts requests to path with the given method
func (s *Server) RequestCount(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Published returns the container ids that were published
func (s *Server) Published() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.published...)
}

// PostedComments returns the messages posted on a media object
func (s *Server) PostedComments(mediaID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.posted[mediaID]...)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Query: query})
	delay := s.delay
	fail := s.takeFailure(r.URL.Path)
	token := s.Token
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if fail != nil {
		if fail.graphCode != 0 {
			writeGraphError(w, fail.status, fail.graphCode, "simulated failure")
		} else {
			w.WriteHeader(fail.status)
			fmt.Fprintf(w, "simulated %d", fail.status)
		}
		return
	}

	if token != "" && query.Get("access_token") != token {
		writeGraphError(w, http.StatusBadRequest, 190, "Invalid OAuth access token - Cannot parse access token")
		return
	}

	path := strings.Trim(r.URL.Path, "/")
	switch {
	case path == "me" && r.Method == http.MethodGet:
		s.handleAccount(w)
	case path == "me/media" && r.Method == http.MethodGet:
		s.handleMediaList(w, query)
	case path == "me/media" && r.Method == http.MethodPost:
		s.handleCreateContainer(w, query)
	case path == "me/media_publish" && r.Method == http.MethodPost:
		s.handlePublish(w, query)
	case strings.HasSuffix(path, "/insights") && r.Method == http.MethodGet:
		s.handleInsights(w, strings.TrimSuffix(path, "/insights"))
	case strings.HasSuffix(path, "/comments") && r.Method == http.MethodGet:
		s.handleComments(w, strings.TrimSuffix(path, "/comments"))
	case strings.HasSuffix(path, "/comments") && r.Method == http.MethodPost:
		s.handlePostComment(w, strings.TrimSuffix(path, "/comments"), query)
	default:
		writeGraphError(w, http.StatusNotFound, 803, "Unknown path components: /"+path)
	}
}

// takeFailure must be called with s.mu held
func (s *Server) takeFailure(path string) *failure {
	f, ok := s.failures[path]
	if !ok {
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
		if f.remaining == 0 {
			delete(s.failures, path)
		}
	}
	return f
}

func (s *Server) handleAccount(w http.ResponseWriter) {
	s.mu.Lock()
	body := map[string]interface{}{"user_id": s.userID, "username": s.username, "id": s.userID}
	s.mu.Unlock()
	writeJSON(w, body)
}

func (s *Server) handleMediaList(w http.ResponseWriter, query url.Values) {
	s.mu.Lock()
	items := s.media
	size := s.pageSize
	s.mu.Unlock()

	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		size = limit
	}

	start := 0
	if after := query.Get("after"); after != "" {
		n, err := strconv.Atoi(after)
		if err != nil || n < 0 || n > len(items) {
			writeGraphError(w, http.StatusBadRequest, 100, "Invalid cursor")
			return
		}
		start = n
	}
	end := len(items)
	if size > 0 && start+size < end {
		end = start + size
	}

	data := make([]map[string]interface{}, 0, end-start)
	for _, m := range items[start:end] {
		data = append(data, mediaJSON(m))
	}

	paging := map[string]interface{}{
		"cursors": map[string]string{
			"before": strconv.Itoa(start),
			"after":  strconv.Itoa(end),
		},
	}
	if end < len(items) {
		paging["next"] = fmt.Sprintf("%s/me/media?after=%d", s.URL, end)
	}

	writeJSON(w, map[string]interface{}{"data": data, "paging": paging})
}

func mediaJSON(m Media) map[string]interface{} {
	out := map[string]interface{}{
		"id":             m.ID,
		"media_type":     m.MediaType,
		"timestamp":      m.Timestamp,
		"like_count":     m.LikeCount,
		"comments_count": m.CommentsCount,
	}
	if m.ProductType != "" {
		out["media_product_type"] = m.ProductType
	}
	if m.MediaURL != "" {
		out["media_url"] = m.MediaURL
	}
	if m.Caption != "" {
		out["caption"] = m.Caption
	}
	if m.Permalink != "" {
		out["permalink"] = m.Permalink
	}
	return out
}

func (s *Server) handleInsights(w http.ResponseWriter, mediaID string) {
	s.mu.Lock()
	body, ok := s.insights[mediaID]
	s.mu.Unlock()

	if !ok {
		body = `{"data":[]}`
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func (s *Server) handleComments(w http.ResponseWriter, mediaID string) {
	s.mu.Lock()
	comments := s.comments[mediaID]
	s.mu.Unlock()

	data := make([]map[string]string, 0, len(comments))
	for _, c := range comments {
		data = append(data, map[string]string{
			"id":        c.ID,
			"username":  c.Username,
			"text":      c.Text,
			"timestamp": c.Timestamp,
		})
	}
	writeJSON(w, map[string]interface{}{"data": data})
}

func (s *Server) handlePostComment(w http.ResponseWriter, mediaID string, query url.Values) {
	message := query.Get("message")
	if message == "" {
		writeGraphError(w, http.StatusBadRequest, 100, "(#100) The parameter message is required")
		return
	}

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("comment-%d", s.nextID)
	s.posted[mediaID] = append(s.posted[mediaID], message)
	s.mu.Unlock()

	writeJSON(w, map[string]string{"id": id})
}

func (s *Server) handleCreateContainer(w http.ResponseWriter, query url.Values) {
	if query.Get("image_url") == "" {
		writeGraphError(w, http.StatusBadRequest, 100, "(#100) The parameter image_url is required")
		return
	}

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("container-%d", s.nextID)
	s.created[id] = true
	s.mu.Unlock()

	writeJSON(w, map[string]string{"id": id})
}

func (s *Server) handlePublish(w http.ResponseWriter, query url.Values) {
	creationID := query.Get("creation_id")

	s.mu.Lock()
	known := s.created[creationID]
	if known {
		s.published = append(s.published, creationID)
		s.nextID++
	}
	id := fmt.Sprintf("media-%d", s.nextID)
	s.mu.Unlock()

	if !known {
		writeGraphError(w, http.StatusBadRequest, 100, "(#100) Invalid creation_id")
		return
	}
	writeJSON(w, map[string]string{"id": id})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeGraphError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"message":    message,
			"type":       "OAuthException",
			"code":       code,
			"fbtrace_id": "AbCdEfGhIjK",
		},
	})
}
