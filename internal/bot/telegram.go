package bot

import (
	"fmt"
	"strings"
	"time"

	"daily-btc/internal/domain"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const noDataReply = "No dashboard yet, the first ingestion cycle has not completed."

type ReportSource interface {
	Current() *domain.DashboardReport
}

var newBot = tele.NewBot

// StartTelegramBot serves /ping, /dashboard and /news from the current
// report. An empty token disables the bot and returns nil.
func StartTelegramBot(token string, reports ReportSource, logger *zap.Logger) (*tele.Bot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(token) == "" {
		logger.Info("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}

	b, err := newBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Warn("telegram handler error", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})
	b.Handle("/dashboard", func(c tele.Context) error {
		return c.Send(formatDashboard(reports.Current()))
	})
	b.Handle("/news", func(c tele.Context) error {
		return c.Send(formatNews(reports.Current()), &tele.SendOptions{DisableWebPagePreview: true})
	})

	logger.Info("Telegram bot started")
	go b.Start()
	return b, nil
}

func formatDashboard(report *domain.DashboardReport) string {
	if report == nil {
		return noDataReply
	}
	h := report.Headline
	var sb strings.Builder
	fmt.Fprintf(&sb, "The Daily BTC (dataset v%d)\n", report.DatasetVersion)
	fmt.Fprintf(&sb, "Rank: #%d\n", h.MarketCapRank)
	fmt.Fprintf(&sb, "Price: $%s\n", humanize.CommafWithDigits(h.PriceUSD, 2))
	fmt.Fprintf(&sb, "ATH: %s\n", extreme(h.ATHUSD, h.ATHDate))
	fmt.Fprintf(&sb, "ATL: %s\n", extreme(h.ATLUSD, h.ATLDate))
	if n := len(report.Days); n > 0 {
		day := report.Days[n-1]
		if v, ok := day.Value(domain.MetricTotalVolumeUSD); ok {
			fmt.Fprintf(&sb, "Volume (%s): $%s\n", day.Date, humanize.Comma(int64(v)))
		}
		if v, ok := day.Value(domain.MetricTwitterFollowers); ok {
			fmt.Fprintf(&sb, "Followers: %s\n", humanize.Comma(int64(v)))
		}
	}
	fmt.Fprintf(&sb, "Last updated: %s", h.LastUpdated.UTC().Format("Jan 02, 2006 15:04 MST"))
	return sb.String()
}

// extreme renders an all-time high or low. A zero value means the upstream
// never reported it.
func extreme(value float64, date string) string {
	if value == 0 {
		return "n/a"
	}
	out := "$" + humanize.CommafWithDigits(value, 2)
	if date != "" {
		out += " on " + date
	}
	return out
}

func formatNews(report *domain.DashboardReport) string {
	if report == nil {
		return noDataReply
	}
	sections := []struct {
		heading string
		pick    domain.NewsPick
	}{
		{"Today", report.News.Today},
		{"This week", report.News.ThisWeek},
		{"This month", report.News.ThisMonth},
	}

	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.pick.IsEmpty() {
			parts = append(parts, s.heading+": nothing yet")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s\n%s\n%s %.2f\n%s",
			s.heading, s.pick.Title, s.pick.Subtitle, s.pick.SentimentLabel, s.pick.SentimentScore, s.pick.URLToPost))
	}
	return strings.Join(parts, "\n\n")
}
