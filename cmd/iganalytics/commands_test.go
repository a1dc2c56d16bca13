package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iganalytics/pkg/auth"
	"iganalytics/pkg/config"
	"iganalytics/pkg/instagram"
	"iganalytics/pkg/instagram/graphtest"
	"iganalytics/pkg/logger"
	"iganalytics/pkg/ui"
)

func newTestApp(t *testing.T, srv *graphtest.Server) (*app, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Instagram.BaseURL = srv.URL
	cfg.Instagram.AccessToken = "test-token"
	cfg.Retry.Enabled = false
	cfg.RateLimit.Enabled = false
	cfg.UI.ColorEnabled = false

	var buf bytes.Buffer
	return newAppWithConfig(cfg, logger.NewTestLogger(), &buf), &buf
}

func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevColor := ui.Output(), ui.ColorEnabled()
	ui.SetOutput(&buf)
	ui.SetColorEnabled(false)
	t.Cleanup(func() {
		ui.SetOutput(prevOut)
		ui.SetColorEnabled(prevColor)
	})
	return &buf
}

func accountServer(t *testing.T) *graphtest.Server {
	srv := graphtest.New(t)
	srv.Token = "test-token"
	srv.SetMedia(
		graphtest.Media{ID: "101", MediaType: "IMAGE", MediaURL: "https://cdn.example/101.jpg", Caption: "Sunset", Timestamp: "2024-05-03T10:00:00+0000", LikeCount: 10, CommentsCount: 1},
		graphtest.Media{ID: "102", MediaType: "VIDEO", ProductType: "REELS", Timestamp: "2024-05-02T10:00:00+0000", LikeCount: 4},
	)
	srv.SetInsights("101", map[string]interface{}{"reach": 200, "likes": 10, "comments": 1, "saved": 5, "shares": 3})
	srv.SetInsights("102", map[string]interface{}{"reach": 50, "likes": 4, "comments": 0, "saved": 1, "shares": 0, "views": 80})
	srv.SetComments("101", graphtest.Comment{ID: "c1", Username: "alice", Text: "great shot", Timestamp: "2024-05-03T11:00:00+0000"})
	return srv
}

func TestRunAnalyze(t *testing.T) {
	srv := accountServer(t)
	a, buf := newTestApp(t, srv)

	require.NoError(t, runAnalyze(context.Background(), a))

	out := buf.String()
	assert.Contains(t, out, "INSTAGRAM COMPLETE ANALYTICS DASHBOARD")
	assert.Contains(t, out, "Username: @testaccount\n")
	assert.Contains(t, out, "📱 POST #1 - IMAGE")
	assert.Contains(t, out, "📱 POST #2 - REELS")
	assert.Contains(t, out, "  @alice: great shot\n")
	assert.Contains(t, out, "  Total Likes: 14\n")
}

func TestRunAnalyzeFatalFailure(t *testing.T) {
	srv := accountServer(t)
	srv.Fail(instagram.AccountPath, http.StatusUnauthorized, 190, 0)
	a, buf := newTestApp(t, srv)

	err := runAnalyze(context.Background(), a)

	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, buf.String(), "Error fetching user info: 401\n")
	assert.Zero(t, srv.RequestCount(http.MethodGet, instagram.MediaPath))
}

func TestRunAnalyzeCancelled(t *testing.T) {
	srv := accountServer(t)
	a, _ := newTestApp(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runAnalyze(ctx, a)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, errReported)
}

func TestRunMe(t *testing.T) {
	srv := accountServer(t)

	t.Run("account", func(t *testing.T) {
		a, buf := newTestApp(t, srv)
		require.NoError(t, runMe(context.Background(), a, false))
		assert.Equal(t, "Username: @testaccount\nUser ID: 17841400000000001\n", buf.String())
	})

	t.Run("raw", func(t *testing.T) {
		a, buf := newTestApp(t, srv)
		require.NoError(t, runMe(context.Background(), a, true))
		assert.True(t, strings.HasPrefix(buf.String(), "Status Code: 200\nHeaders:\n"))
		assert.Contains(t, buf.String(), `"username":"testaccount"`)
	})

	t.Run("bad token", func(t *testing.T) {
		a, buf := newTestApp(t, srv)
		a.cfg.Instagram.AccessToken = "wrong"
		a = newAppWithConfig(a.cfg, a.log, buf)

		err := runMe(context.Background(), a, false)
		assert.ErrorIs(t, err, errReported)
		assert.Contains(t, buf.String(), "Error fetching user info: 400\n")
		assert.Contains(t, buf.String(), "Invalid OAuth access token")
	})

	t.Run("raw shows error responses", func(t *testing.T) {
		srv := accountServer(t)
		srv.Fail(instagram.AccountPath, http.StatusForbidden, 10, 1)
		a, buf := newTestApp(t, srv)
		require.NoError(t, runMe(context.Background(), a, true))
		assert.True(t, strings.HasPrefix(buf.String(), "Status Code: 403\n"))
	})
}

func TestRunMedia(t *testing.T) {
	srv := accountServer(t)
	a, buf := newTestApp(t, srv)

	require.NoError(t, runMedia(context.Background(), a))

	out := buf.String()
	assert.Contains(t, out, "Media ID: 101\nMedia Type: IMAGE\nMedia URL: https://cdn.example/101.jpg\nCaption: Sunset\n")
	assert.Contains(t, out, "Media ID: 102\nMedia Type: VIDEO\nMedia URL: N/A\nCaption: N/A\n")
}

func TestRunMediaAllPages(t *testing.T) {
	srv := accountServer(t)
	srv.SetPageSize(1)
	a, buf := newTestApp(t, srv)
	a.cfg.Analysis.FollowPagination = true

	require.NoError(t, runMedia(context.Background(), a))

	assert.Equal(t, 2, srv.RequestCount(http.MethodGet, instagram.MediaPath))
	assert.Contains(t, buf.String(), "Media ID: 102\n")
}

func TestRunComments(t *testing.T) {
	srv := accountServer(t)
	srv.Fail(instagram.CommentsPath("102"), http.StatusForbidden, 10, 0)
	a, buf := newTestApp(t, srv)

	require.NoError(t, runComments(context.Background(), a, false))

	out := buf.String()
	assert.Contains(t, out, "Comments:\n  - alice: great shot (2024-05-03T11:00:00+0000)\n")
	assert.Contains(t, out, "Error fetching comments: 403\n")
	assert.NotContains(t, out, "POST ID")
}

func TestRunPosts(t *testing.T) {
	srv := accountServer(t)
	a, buf := newTestApp(t, srv)
	a.cfg.Analysis.Concurrency = 2

	require.NoError(t, runComments(context.Background(), a, true))

	out := buf.String()
	assert.Contains(t, out, "POST ID: 101\n")
	assert.Contains(t, out, "Likes: 10\nComments Count: 1\n")
	assert.Contains(t, out, "No comments found.\n")
	assert.Less(t, strings.Index(out, "POST ID: 101"), strings.Index(out, "POST ID: 102"))
}

func TestRunInsights(t *testing.T) {
	srv := accountServer(t)
	a, buf := newTestApp(t, srv)

	require.NoError(t, runInsights(context.Background(), a, "101", nil))

	assert.Equal(t, "reach: 200\nlikes: 10\ncomments: 1\nsaved: 5\nshares: 3\n", buf.String())

	requests := srv.Requests()
	last := requests[len(requests)-1]
	assert.Equal(t, "/101/insights", last.Path)
	assert.Equal(t, strings.Join(instagram.DefaultInsightMetrics, ","), last.Query.Get("metric"))
}

func TestRunInsightsFailure(t *testing.T) {
	srv := accountServer(t)
	srv.Fail(instagram.InsightsPath("101"), http.StatusBadRequest, 100, 0)
	a, buf := newTestApp(t, srv)

	err := runInsights(context.Background(), a, "101", []string{"reach"})
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, buf.String(), "Error fetching insights: 400\n")
}

func TestRunPublish(t *testing.T) {
	srv := accountServer(t)
	a, buf := newTestApp(t, srv)

	require.NoError(t, runPublish(context.Background(), a, "https://example.com/photo.jpg", "Hello"))

	assert.Equal(t, "Container ID: container-1\nSuccessfully published! Media ID: media-2\n", buf.String())
	assert.Equal(t, []string{"container-1"}, srv.Published())
}

func TestRunPublishStopsAfterContainerFailure(t *testing.T) {
	srv := accountServer(t)
	srv.Fail(instagram.MediaPath, http.StatusBadRequest, 9004, 0)
	a, buf := newTestApp(t, srv)

	err := runPublish(context.Background(), a, "https://example.com/photo.jpg", "")

	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, buf.String(), "Error creating media container: 400\n")
	assert.Zero(t, srv.RequestCount(http.MethodPost, instagram.MediaPublishPath))
	assert.Empty(t, srv.Published())
}

func TestRunPublishFailure(t *testing.T) {
	srv := accountServer(t)
	srv.Fail(instagram.MediaPublishPath, http.StatusInternalServerError, 0, 0)
	a, buf := newTestApp(t, srv)

	err := runPublish(context.Background(), a, "https://example.com/photo.jpg", "")

	assert.ErrorIs(t, err, errReported)
	assert.Equal(t, "Container ID: container-1\nError publishing media: 500\nsimulated 500\n", buf.String())
}

func TestRunPublishRequiresImage(t *testing.T) {
	srv := accountServer(t)
	a, _ := newTestApp(t, srv)

	assert.Error(t, runPublish(context.Background(), a, "", "caption"))
	assert.Empty(t, srv.Requests())
}

func TestRunComment(t *testing.T) {
	srv := accountServer(t)
	a, buf := newTestApp(t, srv)

	require.NoError(t, runComment(context.Background(), a, "101", "Thanks!"))

	assert.Equal(t, "Comment posted successfully! Comment ID: comment-1\n", buf.String())
	assert.Equal(t, []string{"Thanks!"}, srv.PostedComments("101"))

	assert.Error(t, runComment(context.Background(), a, "101", ""))
}

func TestVerifyToken(t *testing.T) {
	srv := accountServer(t)
	cfg := config.DefaultConfig()
	cfg.Instagram.BaseURL = srv.URL
	cfg.Retry.Enabled = false

	account, err := verifyToken(context.Background(), cfg, logger.NewNopLogger(), "test-token", "")
	require.NoError(t, err)
	assert.Equal(t, "testaccount", account.Username)
	assert.Equal(t, "17841400000000001", account.UserID)
	assert.Equal(t, "test-token", account.AccessToken)
	assert.Empty(t, cfg.Instagram.AccessToken, "the loaded config is not modified")

	account, err = verifyToken(context.Background(), cfg, logger.NewNopLogger(), "test-token", "brand")
	require.NoError(t, err)
	assert.Equal(t, "brand", account.Username)

	account, err = verifyToken(context.Background(), cfg, logger.NewNopLogger(), "wrong-token", "")
	assert.Error(t, err)
	assert.Empty(t, account.Username)
	assert.Equal(t, "wrong-token", account.AccessToken)
}

func TestPrintAccounts(t *testing.T) {
	buf := captureUI(t)

	printAccounts(ui.Output(), nil)
	assert.Contains(t, buf.String(), "No stored accounts")

	buf.Reset()
	printAccounts(ui.Output(), []*auth.Account{{
		Username:     "brand",
		UserID:       "42",
		AccessToken:  "IGQVJsecret_token_value",
		LastModified: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}})
	out := buf.String()
	assert.Contains(t, out, "1. Username: brand\n")
	assert.Contains(t, out, "   Access Token: IGQV...alue\n")
	assert.Contains(t, out, "   Last Modified: 2024-05-01 12:00:00\n")
	assert.NotContains(t, out, "secret_token")
}

func TestGlobalFlags(t *testing.T) {
	t.Cleanup(func() {
		tokenFlag, logLevel, noColor, verbose = "", "", false, false
	})

	assert.Empty(t, globalFlags())

	tokenFlag, verbose, noColor = "abc", true, true
	flags := globalFlags()
	assert.Equal(t, "abc", flags["token"])
	assert.Equal(t, "debug", flags["log-level"])
	assert.Equal(t, true, flags["no-color"])

	logLevel = "error"
	assert.Equal(t, "error", globalFlags()["log-level"])
}

func TestWriteExampleConfig(t *testing.T) {
	buf := captureUI(t)
	path := filepath.Join(t.TempDir(), "iganalytics.yaml")

	require.NoError(t, writeExampleConfig(path))
	assert.Contains(t, buf.String(), "Configuration file created: "+path)

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))
	assert.Equal(t, config.DefaultConfig(), cfg, "the example matches the defaults")

	assert.ErrorIs(t, writeExampleConfig(path), errReported)
	assert.Contains(t, buf.String(), "Configuration file already exists")
}

func TestValidateConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		buf := captureUI(t)
		path := filepath.Join(dir, "valid.yaml")
		require.NoError(t, os.WriteFile(path, []byte(exampleConfig), 0600))

		require.NoError(t, validateConfig(path))
		assert.Contains(t, buf.String(), "Configuration is valid")
		assert.Contains(t, buf.String(), "  Rate limit: 200 requests/hour\n")
	})

	t.Run("out of range", func(t *testing.T) {
		buf := captureUI(t)
		path := filepath.Join(dir, "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("analysis:\n  concurrency: 99\n"), 0600))

		assert.ErrorIs(t, validateConfig(path), errReported)
		assert.Contains(t, buf.String(), "concurrency must be between 1 and 16")
	})

	t.Run("syntax error", func(t *testing.T) {
		buf := captureUI(t)
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("analysis: [\n"), 0600))

		assert.ErrorIs(t, validateConfig(path), errReported)
		assert.Contains(t, buf.String(), "Configuration validation failed")
	})
}

func TestShowConfigMasksToken(t *testing.T) {
	buf := captureUI(t)
	cfg := config.DefaultConfig()
	cfg.Instagram.AccessToken = "IGQVJsecret_token_value"

	require.NoError(t, showConfig(cfg))

	out := buf.String()
	assert.Contains(t, out, "access_token: IGQV...alue")
	assert.NotContains(t, out, "secret_token")
}
