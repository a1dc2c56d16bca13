package report

import (
	"fmt"

	"iganalytics/pkg/analytics"
	"iganalytics/pkg/instagram"
)

// Dashboard writes the complete analytics transcript
func (r *Renderer) Dashboard(rep *analytics.Report) error {
	r.dashboardHeader()
	r.accountDetails(rep.Account)

	r.blank()
	r.println(r.section.Render(fmt.Sprintf("📈 POSTS ANALYSIS (%d posts)", len(rep.Items))))
	if rep.HasMore {
		if rep.Pages <= 1 {
			r.println(r.notice.Render("(first page only, more available)"))
		} else {
			r.println(r.notice.Render(fmt.Sprintf("(%d pages read, more available)", rep.Pages)))
		}
	}
	r.ruleLine("-", wideRule)

	for _, item := range rep.Items {
		r.post(item)
	}

	r.summary(rep.Totals)
	return r.err
}

// DashboardFailure writes the transcript of a run that stopped at the
// account or media list fetch
func (r *Renderer) DashboardFailure(err *analytics.FetchError) error {
	r.dashboardHeader()
	if err.Account != nil {
		r.accountDetails(*err.Account)
	}
	r.fetchFailure("Error fetching "+err.Stage, err.Status(), err.Body())
	return r.err
}

func (r *Renderer) dashboardHeader() {
	r.ruleLine("=", wideRule)
	r.println(r.title.Render("INSTAGRAM COMPLETE ANALYTICS DASHBOARD"))
	r.ruleLine("=", wideRule)
}

func (r *Renderer) accountDetails(account instagram.Account) {
	r.blank()
	r.println(r.section.Render("📊 ACCOUNT DETAILS"))
	r.printf("Username: @%s\n", account.Username)
	r.printf("User ID: %s\n", account.Identifier())
	r.ruleLine("-", wideRule)
}

func (r *Renderer) post(item *analytics.Item) {
	m := item.Media

	r.blank()
	r.println(r.section.Render(fmt.Sprintf("📱 POST #%d - %s", item.Number, m.DisplayKind())))
	r.printf("ID: %s\n", m.ID)
	r.printf("Posted: %s\n", m.Timestamp)
	r.printf("Permalink: %s\n", orDefault(m.Permalink, "N/A"))
	r.printf("Caption: %s\n", truncate(orDefault(m.Caption, "No caption"), r.opts.CaptionWidth))
	r.printf("❤️  Likes: %d\n", m.LikeCount)
	r.printf("💬 Comments: %d\n", m.CommentsCount)

	if diag := item.InsightsDiagnostic(); diag != "" {
		r.println(r.notice.Render(diag))
	}

	if item.HasInsights() {
		r.printf("👥 Reach: %s\n", formatValue(item.Metric(instagram.MetricReach)))
		r.printf("💾 Saved: %s\n", formatValue(item.Metric(instagram.MetricSaved)))
		r.printf("🔄 Shares: %s\n", formatValue(item.Metric(instagram.MetricShares)))

		if m.IsVideo() {
			r.printf("👁️  Views: %s\n", formatValue(item.Metric(instagram.MetricViews)))
		}
		if m.IsReel() {
			r.reelWatchTime(item)
		}

		if rate, ok := item.EngagementRate(); ok {
			r.printf("📈 Engagement Rate: %.2f%%\n", rate)
		}
	}

	if m.CommentsCount > 0 {
		r.commentPreview(item.Comments)
	}

	r.ruleLine("-", narrowRule)
}

func (r *Renderer) reelWatchTime(item *analytics.Item) {
	if total := item.Metric(instagram.MetricReelsTotalTime); total > 0 {
		r.printf("⏱️  Total Watch Time: %s\n", analytics.FormatDuration(total))
	}
	if avg := item.Metric(instagram.MetricReelsAvgTime); avg > 0 {
		r.printf("⏱️  Avg Watch Time: %s\n", analytics.FormatDuration(avg))
	}
	if _, rate, ok := item.Completion(); ok {
		r.printf("✅ Completion Rate: %.2f%%\n", rate)
		r.printf("📊 Watch Percentage: %.2f%%\n", rate)
	}
}

func (r *Renderer) commentPreview(comments []instagram.Comment) {
	r.blank()
	r.println(r.section.Render(fmt.Sprintf("💬 COMMENTS (%d):", len(comments))))

	shown := comments
	if preview := r.opts.CommentPreview; preview >= 0 && len(shown) > preview {
		shown = shown[:preview]
	}
	for _, c := range shown {
		r.printf("  @%s: %s\n", orDefault(c.Username, "Unknown"), truncate(orDefault(c.Text, "N/A"), r.opts.CommentWidth))
	}
	if rest := len(comments) - len(shown); rest > 0 {
		r.printf("  ... and %d more comments\n", rest)
	}
}

func (r *Renderer) summary(t analytics.Totals) {
	r.blank()
	r.println(r.section.Render("📊 COMPREHENSIVE STATISTICS"))
	r.ruleLine("=", wideRule)

	r.println("📱 Content Breakdown:")
	for _, kc := range t.KindCounts() {
		r.printf("  %s: %d posts\n", kc.Kind, kc.Count)
	}

	r.blank()
	r.println("📈 Engagement Totals:")
	r.printf("  Total Likes: %d\n", t.Likes)
	r.printf("  Total Comments: %d\n", t.Comments)
	r.printf("  Total Reach: %s\n", formatValue(t.Reach))
	r.printf("  Total Saved: %s\n", formatValue(t.Saved))
	r.printf("  Total Shares: %s\n", formatValue(t.Shares))

	if t.Views > 0 {
		r.blank()
		r.println("🎬 Video/Reel Performance:")
		r.printf("  Total Views: %s\n", formatValue(t.Views))
	}

	if t.Posts > 0 {
		r.blank()
		r.println("📊 Averages per Post:")
		r.average("Likes", float64(t.Likes), t)
		r.average("Comments", float64(t.Comments), t)
		if t.Reach > 0 {
			r.average("Reach", t.Reach, t)
			r.average("Saved", t.Saved, t)
			r.average("Shares", t.Shares, t)
		}
	}

	r.blank()
	r.ruleLine("=", wideRule)
}

func (r *Renderer) average(label string, sum float64, t analytics.Totals) {
	if avg, ok := t.PerPost(sum); ok {
		r.printf("  %s: %.1f\n", label, avg)
	}
}
