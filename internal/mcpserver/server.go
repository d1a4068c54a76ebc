package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"daily-btc/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultDays = 7

type Source interface {
	Report(ctx context.Context) (*domain.DashboardReport, error)
}

type DashboardInput struct {
	Days int `json:"days,omitempty" jsonschema:"number of most recent daily aggregates to include, default 7"`
}

type DailyRow struct {
	Date   string             `json:"date"`
	Values map[string]float64 `json:"values"`
}

type DashboardOutput struct {
	Ready          bool       `json:"ready"`
	MarketCapRank  int64      `json:"market_cap_rank"`
	PriceUSD       float64    `json:"price_usd"`
	ATHUSD         float64    `json:"ath_usd"`
	ATHDate        string     `json:"ath_date"`
	ATLUSD         float64    `json:"atl_usd"`
	ATLDate        string     `json:"atl_date"`
	LastUpdated    string     `json:"last_updated"`
	DatasetVersion uint64     `json:"dataset_version"`
	AsOf           string     `json:"as_of"`
	Days           []DailyRow `json:"days"`
}

type NewsInput struct {
	Window string `json:"window,omitempty" jsonschema:"today, this_week or this_month; empty returns all three"`
}

type NewsItem struct {
	Window         string  `json:"window"`
	Empty          bool    `json:"empty"`
	Title          string  `json:"title,omitempty"`
	Subtitle       string  `json:"subtitle,omitempty"`
	URL            string  `json:"url,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	PublishedDate  string  `json:"published_date,omitempty"`
	SentimentLabel string  `json:"sentiment_label,omitempty"`
	SentimentScore float64 `json:"sentiment_score,omitempty"`
}

type NewsOutput struct {
	Ready bool       `json:"ready"`
	Picks []NewsItem `json:"picks"`
}

type tools struct {
	source Source
	tracer trace.Tracer
}

// New builds the MCP server exposing get_dashboard and get_top_news.
func New(source Source, tracer trace.Tracer, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "daily-btc", Version: version}, nil)
	t := &tools{source: source, tracer: tracer}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Headline stats and the latest daily aggregates (mean price, EMA 50/200, market cap, volume, follower and GitHub counters) of the tracked coin.",
	}, t.getDashboard)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_top_news",
		Description: "Highest-sentiment news article for today, this week and this month.",
	}, t.getTopNews)
	return server
}

func (t *tools) getDashboard(ctx context.Context, _ *mcp.CallToolRequest, in DashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.get-dashboard")
	defer span.End()

	report, err := t.source.Report(ctx)
	if err != nil {
		return nil, DashboardOutput{}, fmt.Errorf("load report: %w", err)
	}
	if report == nil {
		return nil, DashboardOutput{Days: []DailyRow{}}, nil
	}

	days := in.Days
	if days <= 0 {
		days = defaultDays
	}
	span.SetAttributes(attribute.Int("days", days))

	h := report.Headline
	out := DashboardOutput{
		Ready:          true,
		MarketCapRank:  h.MarketCapRank,
		PriceUSD:       h.PriceUSD,
		ATHUSD:         h.ATHUSD,
		ATHDate:        h.ATHDate,
		ATLUSD:         h.ATLUSD,
		ATLDate:        h.ATLDate,
		LastUpdated:    formatTime(h.LastUpdated),
		DatasetVersion: report.DatasetVersion,
		AsOf:           formatTime(report.AsOf),
		Days:           recentDays(report.Days, days),
	}
	return nil, out, nil
}

func (t *tools) getTopNews(ctx context.Context, _ *mcp.CallToolRequest, in NewsInput) (*mcp.CallToolResult, NewsOutput, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.get-top-news")
	defer span.End()

	window := strings.ToLower(strings.TrimSpace(in.Window))
	span.SetAttributes(attribute.String("window", window))
	if window != "" && window != "today" && window != "this_week" && window != "this_month" {
		return nil, NewsOutput{}, fmt.Errorf("unknown window %q: want today, this_week or this_month", in.Window)
	}

	report, err := t.source.Report(ctx)
	if err != nil {
		return nil, NewsOutput{}, fmt.Errorf("load report: %w", err)
	}
	if report == nil {
		return nil, NewsOutput{Picks: []NewsItem{}}, nil
	}

	all := []NewsItem{
		newsItem("today", report.News.Today),
		newsItem("this_week", report.News.ThisWeek),
		newsItem("this_month", report.News.ThisMonth),
	}
	out := NewsOutput{Ready: true, Picks: all}
	if window != "" {
		out.Picks = nil
		for _, item := range all {
			if item.Window == window {
				out.Picks = append(out.Picks, item)
			}
		}
	}
	return nil, out, nil
}

func recentDays(days []domain.DailyAggregate, n int) []DailyRow {
	if len(days) > n {
		days = days[len(days)-n:]
	}
	rows := make([]DailyRow, 0, len(days))
	for _, day := range days {
		values := make(map[string]float64, len(day.Values))
		for metric, v := range day.Values {
			values[string(metric)] = v
		}
		rows = append(rows, DailyRow{Date: day.Date, Values: values})
	}
	return rows
}

func newsItem(window string, pick domain.NewsPick) NewsItem {
	if pick.IsEmpty() {
		return NewsItem{Window: window, Empty: true}
	}
	return NewsItem{
		Window:         window,
		Title:          pick.Title,
		Subtitle:       pick.Subtitle,
		URL:            pick.URLToPost,
		ImageURL:       pick.URLToImage,
		PublishedDate:  pick.PublishedDate,
		SentimentLabel: string(pick.SentimentLabel),
		SentimentScore: pick.SentimentScore,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
