// Package report renders a user's posts and their sentiment breakdown as a
// shareable page.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"time"
	"unicode/utf8"

	"github.com/ibeckermayer/sentiview/internal/sentiment"
	"github.com/ibeckermayer/sentiview/internal/types"
)

// TimeLayout is how post timestamps appear in reports.
const TimeLayout = "Jan 2, 2006, 3:04 PM"

// ErrNoPosts is returned by Build when there is nothing to report on.
var ErrNoPosts = errors.New("no posts to include in report")

// Builder creates reports from labelled posts
type Builder struct {
	maxPosts int
	template *template.Template
}

// New creates a new report builder. maxPosts <= 0 means no limit.
func New(maxPosts int) (*Builder, error) {
	tmpl, err := template.New("report").Parse(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &Builder{
		maxPosts: maxPosts,
		template: tmpl,
	}, nil
}

// Report represents a compiled report ready for saving or sending
type Report struct {
	Username  string
	Subject   string
	HTMLBody  string
	PlainBody string
	PostIDs   []string
	Result    sentiment.Result
	CreatedAt time.Time
}

// ReportData is the template data structure
type ReportData struct {
	Title     string
	Date      string
	Analytics AnalyticsData
	Posts     []PostData
	Stats     StatsData
}

// AnalyticsData holds the breakdown bars
type AnalyticsData struct {
	Positive int
	Negative int
	Neutral  int
	Summary  string
	Dominant string
}

// PostData represents a post in the report template
type PostData struct {
	Username  string
	Content   string
	Sentiment string
	Time      string
}

// StatsData contains report statistics
type StatsData struct {
	TotalPosts    int
	TotalIncluded int
}

// Build creates a report for username from posts, which are shown in the
// order given. An empty username titles the report for all users.
func (b *Builder) Build(username string, posts []types.Post, result sentiment.Result, now time.Time) (*Report, error) {
	if len(posts) == 0 {
		return nil, ErrNoPosts
	}

	total := len(posts)
	if b.maxPosts > 0 && len(posts) > b.maxPosts {
		posts = posts[:b.maxPosts]
	}

	data := ReportData{
		Title: title(username),
		Date:  now.Format("Monday, January 2"),
		Analytics: AnalyticsData{
			Positive: result.Positive,
			Negative: result.Negative,
			Neutral:  result.Neutral,
			Summary:  result.Summary(),
			Dominant: string(result.Dominant()),
		},
		Posts: make([]PostData, len(posts)),
		Stats: StatsData{
			TotalPosts:    total,
			TotalIncluded: len(posts),
		},
	}

	postIDs := make([]string, len(posts))
	for i, p := range posts {
		data.Posts[i] = PostData{
			Username:  p.Username,
			Content:   p.Content,
			Sentiment: string(sentiment.Classify(p.Sentiment)),
			Time:      FormatTime(p.Timestamp),
		}
		postIDs[i] = p.ID
	}

	var htmlBuf bytes.Buffer
	if err := b.template.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &Report{
		Username:  username,
		Subject:   fmt.Sprintf("%s - %s", data.Title, now.Format("Jan 2")),
		HTMLBody:  htmlBuf.String(),
		PlainBody: buildPlainText(data),
		PostIDs:   postIDs,
		Result:    result,
		CreatedAt: now,
	}, nil
}

// FormatTime renders a post timestamp, or "Unknown time" when it is missing.
func FormatTime(ts time.Time) string {
	if ts.IsZero() {
		return "Unknown time"
	}
	return ts.Format(TimeLayout)
}

func title(username string) string {
	if username == "" {
		return "Sentiment Report"
	}
	return "Sentiment Report: " + username
}

// truncate shortens s to at most maxLen runes, ending in "..." when cut.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}

func buildPlainText(data ReportData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s\n%s\n\n", data.Title, data.Date))
	buf.WriteString(fmt.Sprintf("Positive %d%% · Neutral %d%% · Negative %d%%\n%s\n\n",
		data.Analytics.Positive, data.Analytics.Neutral, data.Analytics.Negative, data.Analytics.Summary))

	for i, p := range data.Posts {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s: %s\n", i+1, p.Sentiment, p.Username, truncate(p.Content, 280)))
		buf.WriteString(fmt.Sprintf("   %s\n\n", p.Time))
	}

	return buf.String()
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 700px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .container { background: white; border-radius: 8px; padding: 20px; }
        h1 { color: #333; margin-bottom: 5px; }
        .date { color: #666; margin-bottom: 20px; }
        .analytics { margin-bottom: 20px; }
        .bar-row { display: flex; align-items: center; margin: 6px 0; font-size: 14px; }
        .bar-label { width: 80px; color: #555; }
        .bar-track { flex: 1; background: #eee; border-radius: 4px; height: 12px; margin: 0 10px; }
        .bar { height: 12px; border-radius: 4px; }
        .bar-positive { background: #2e7d32; }
        .bar-neutral { background: #9e9e9e; }
        .bar-negative { background: #c62828; }
        .summary { font-weight: bold; margin-top: 10px; }
        .post { border-bottom: 1px solid #eee; padding: 15px 0; }
        .post:last-child { border-bottom: none; }
        .author { font-weight: bold; color: #333; }
        .content { margin: 10px 0; line-height: 1.4; white-space: pre-wrap; }
        .time { color: #666; font-size: 13px; }
        .badge { padding: 2px 8px; border-radius: 12px; font-size: 12px; margin-left: 6px; color: white; }
        .badge-positive { background: #2e7d32; }
        .badge-neutral { background: #9e9e9e; }
        .badge-negative { background: #c62828; }
        .footer { margin-top: 20px; padding-top: 15px; border-top: 1px solid #eee; color: #999; font-size: 12px; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div class="date">{{.Date}}</div>

        <div class="analytics">
            <div class="bar-row"><span class="bar-label">Positive</span><div class="bar-track"><div class="bar bar-positive" style="width: {{.Analytics.Positive}}%"></div></div><span>{{.Analytics.Positive}}%</span></div>
            <div class="bar-row"><span class="bar-label">Neutral</span><div class="bar-track"><div class="bar bar-neutral" style="width: {{.Analytics.Neutral}}%"></div></div><span>{{.Analytics.Neutral}}%</span></div>
            <div class="bar-row"><span class="bar-label">Negative</span><div class="bar-track"><div class="bar bar-negative" style="width: {{.Analytics.Negative}}%"></div></div><span>{{.Analytics.Negative}}%</span></div>
            <div class="summary">{{.Analytics.Summary}}</div>
        </div>

        {{range .Posts}}
        <div class="post">
            <div class="author">{{.Username}}<span class="badge badge-{{.Sentiment}}">{{.Sentiment}}</span></div>
            <div class="content">{{.Content}}</div>
            <div class="time">{{.Time}}</div>
        </div>
        {{end}}

        <div class="footer">
            Included {{.Stats.TotalIncluded}} of {{.Stats.TotalPosts}} posts · Generated by sentiview
        </div>
    </div>
</body>
</html>`
