package tui

import (
	"fmt"
	"strings"

	"daily-btc/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// chromeHeight is the number of lines taken by the header, tabs, status
// line and help.
const chromeHeight = 6

const overviewDays = 14

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F7931A")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("245"))
	activeTabStyle = tabStyle.Foreground(lipgloss.Color("#F7931A")).Underline(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle     = lipgloss.NewStyle().Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	positiveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	negativeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

func renderFrame(m *Model) string {
	header := titleStyle.Render("THE DAILY BTC")
	if m.username != "" {
		header += labelStyle.Render("  signed in as " + m.username)
	}

	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if tab(i) == m.tab {
			tabs[i] = activeTabStyle.Render(name)
		} else {
			tabs[i] = tabStyle.Render(name)
		}
	}

	status := labelStyle.Render("waiting for report")
	switch {
	case m.err != nil:
		status = errorStyle.Render("reload failed: " + m.err.Error())
	case m.loading:
		status = labelStyle.Render("loading...")
	case m.report != nil:
		status = labelStyle.Render(fmt.Sprintf("dataset v%d as of %s", m.report.DatasetVersion, m.report.AsOf.UTC().Format("Jan 02 15:04 MST")))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		m.view.View(),
		status,
		m.help.View(m.keys),
	)
}

func renderOverview(report *domain.DashboardReport, width int) string {
	if report == nil {
		return labelStyle.Render("No data yet. The first ingestion cycle has not completed.")
	}
	h := report.Headline
	cells := []string{
		stat("RANK", fmt.Sprintf("#%d", h.MarketCapRank)),
		stat("PRICE", usd(h.PriceUSD)),
		stat(strings.TrimSpace("ATH "+h.ATHDate), extreme(h.ATHUSD)),
		stat(strings.TrimSpace("ATL "+h.ATLDate), extreme(h.ATLUSD)),
	}
	headline := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	if width > 0 && lipgloss.Width(headline) > width {
		headline = lipgloss.JoinVertical(lipgloss.Left, cells...)
	}

	var sb strings.Builder
	sb.WriteString(headline)
	sb.WriteString("\n")
	sb.WriteString(labelStyle.Render("last updated " + h.LastUpdated.UTC().Format("Jan 02, 2006 15:04 MST")))
	sb.WriteString("\n\n")
	sb.WriteString(headingStyle.Render("DAILY AVERAGES"))
	sb.WriteString("\n")
	sb.WriteString(dailyTable(report.Days))
	return sb.String()
}

func dailyTable(days []domain.DailyAggregate) string {
	if len(days) > overviewDays {
		days = days[len(days)-overviewDays:]
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-10s  %14s  %14s  %18s  %12s\n", "DATE", "PRICE", "EMA 50", "VOLUME", "FOLLOWERS")
	for i := len(days) - 1; i >= 0; i-- {
		day := days[i]
		fmt.Fprintf(&sb, "%-10s  %14s  %14s  %18s  %12s\n",
			day.Date,
			metric(day, domain.MetricPriceUSD, usd),
			metric(day, domain.EMAMetric(50), usd),
			metric(day, domain.MetricTotalVolumeUSD, func(v float64) string { return "$" + humanize.Comma(int64(v)) }),
			metric(day, domain.MetricTwitterFollowers, func(v float64) string { return humanize.Comma(int64(v)) }),
		)
	}
	return sb.String()
}

func renderNews(report *domain.DashboardReport, width int) string {
	if report == nil {
		return labelStyle.Render("No data yet. The first ingestion cycle has not completed.")
	}
	boxWidth := width - 4
	if boxWidth < 20 {
		boxWidth = 20
	}
	sections := []struct {
		heading string
		pick    domain.NewsPick
	}{
		{"TODAY", report.News.Today},
		{"THIS WEEK", report.News.ThisWeek},
		{"THIS MONTH", report.News.ThisMonth},
	}

	boxes := make([]string, 0, len(sections))
	for _, s := range sections {
		var body string
		if s.pick.IsEmpty() {
			body = labelStyle.Render("No story in this window.")
		} else {
			body = strings.Join([]string{
				valueStyle.Render(s.pick.Title),
				labelStyle.Render(s.pick.Subtitle),
				sentiment(s.pick),
				s.pick.URLToPost,
			}, "\n")
		}
		boxes = append(boxes, boxStyle.Width(boxWidth).Render(headingStyle.Render(s.heading)+"\n"+body))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func sentiment(p domain.NewsPick) string {
	text := fmt.Sprintf("%s %.2f", p.SentimentLabel, p.SentimentScore)
	switch p.SentimentLabel {
	case domain.SentimentPositive:
		return positiveStyle.Render(text)
	case domain.SentimentNegative:
		return negativeStyle.Render(text)
	default:
		return labelStyle.Render(text)
	}
}

func stat(label, value string) string {
	return boxStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

func metric(day domain.DailyAggregate, m domain.Metric, format func(float64) string) string {
	v, ok := day.Value(m)
	if !ok {
		return "-"
	}
	return format(v)
}

// extreme is usd for all-time highs and lows, where zero means unreported.
func extreme(v float64) string {
	if v == 0 {
		return "n/a"
	}
	return usd(v)
}

func usd(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}
