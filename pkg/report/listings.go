package report

import (
	"fmt"
	"sort"
	"strings"

	errs "iganalytics/pkg/errors"
	"iganalytics/pkg/instagram"
)

// MediaComments is a media object with the result of its comments call
type MediaComments struct {
	Media    instagram.Media
	Comments []instagram.Comment
	Err      error
}

// fetchFailure writes "<what>: <status>" and the response body
func (r *Renderer) fetchFailure(what, status, body string) {
	r.println(r.failure.Render(fmt.Sprintf("%s: %s", what, status)))
	if body != "" {
		r.println(body)
	}
}

// APIError writes a failed call as "Error <action>: <status>" followed by
// the response body
func (r *Renderer) APIError(action string, err error) error {
	status := err.Error()
	body := ""
	if apiErr, ok := errs.As(err); ok {
		body = apiErr.Body
		if apiErr.Code > 0 {
			status = fmt.Sprintf("%d", apiErr.Code)
		}
	}
	r.fetchFailure("Error "+action, status, body)
	return r.err
}

// Account writes the handle and id of an account
func (r *Renderer) Account(account *instagram.Account) error {
	r.printf("Username: @%s\n", account.Username)
	r.printf("User ID: %s\n", account.Identifier())
	return r.err
}

// Raw writes a response verbatim with headers in name order
func (r *Renderer) Raw(raw *instagram.RawResponse) error {
	r.printf("Status Code: %d\n", raw.StatusCode)
	r.println("Headers:")

	names := make([]string, 0, len(raw.Headers))
	for name := range raw.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.printf("%s: %s\n", name, strings.Join(raw.Headers[name], ", "))
	}

	r.println("\nBody:")
	r.println(string(raw.Body))
	return r.err
}

// MediaList writes the plain media listing
func (r *Renderer) MediaList(items []instagram.Media) error {
	r.println(r.section.Render("Media Items:"))
	for _, m := range items {
		r.mediaFields("Media ID", m)
		r.ruleLine("-", narrowRule)
	}
	return r.err
}

// MediaWithComments writes every media object followed by all of its
// comments. withCounts adds like and comment counts.
func (r *Renderer) MediaWithComments(entries []MediaComments, withCounts bool) error {
	r.println(r.section.Render("Media Items:"))
	for _, e := range entries {
		idLabel := "Media ID"
		if withCounts {
			idLabel = "POST ID"
		}
		r.mediaFields(idLabel, e.Media)
		if withCounts {
			r.printf("Likes: %d\n", e.Media.LikeCount)
			r.printf("Comments Count: %d\n", e.Media.CommentsCount)
		}

		switch {
		case e.Err != nil:
			r.APIError("fetching comments", e.Err)
		case len(e.Comments) == 0:
			r.println("No comments found.")
		default:
			r.println("Comments:")
			for _, c := range e.Comments {
				r.printf("  - %s: %s (%s)\n",
					orDefault(c.Username, "Unknown"), orDefault(c.Text, "N/A"), orDefault(c.Timestamp, "N/A"))
			}
		}
		r.ruleLine("-", narrowRule)
	}
	return r.err
}

func (r *Renderer) mediaFields(idLabel string, m instagram.Media) {
	r.printf("%s: %s\n", idLabel, m.ID)
	r.printf("Media Type: %s\n", m.MediaType)
	r.printf("Media URL: %s\n", orDefault(m.MediaURL, "N/A"))
	r.printf("Caption: %s\n", orDefault(m.Caption, "N/A"))
	r.printf("Timestamp: %s\n", m.Timestamp)
}

// Insights writes "name: value" lines, requested metrics first in the
// order asked for, then anything else the API returned
func (r *Renderer) Insights(set instagram.InsightSet, requested []string) error {
	printed := make(map[string]bool, len(set))
	for _, name := range requested {
		if v, ok := set.Get(name); ok && !printed[name] {
			r.printf("%s: %s\n", name, formatValue(v))
			printed[name] = true
		}
	}

	var rest []string
	for name := range set {
		if !printed[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		r.printf("%s: %s\n", name, formatValue(set[name]))
	}
	return r.err
}

// ContainerCreated writes the id of a new media container
func (r *Renderer) ContainerCreated(container *instagram.Container) error {
	r.printf("Container ID: %s\n", container.ID)
	return r.err
}

// Published writes the outcome of a publish
func (r *Renderer) Published(container *instagram.Container, media *instagram.PublishedMedia) error {
	r.ContainerCreated(container)
	r.println(r.success.Render("Successfully published! Media ID: " + media.ID))
	return r.err
}

// CommentPosted writes the id of a new comment
func (r *Renderer) CommentPosted(comment *instagram.PostedComment) error {
	r.println(r.success.Render("Comment posted successfully! Comment ID: " + comment.ID))
	return r.err
}
