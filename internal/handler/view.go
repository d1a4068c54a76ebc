package handler

import (
	"embed"
	"html/template"
	"time"

	"daily-btc/internal/domain"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"comma": func(v int64) string { return humanize.Comma(v) },
	"usd":   func(v float64) string { return "$" + humanize.CommafWithDigits(v, 2) },
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format("Jan 02, 2006 15:04 MST")
	},
}

type pickView struct {
	Heading string
	Pick    domain.NewsPick
}

type homePage struct {
	Ready   bool
	Message string
	Report  *domain.DashboardReport
	Picks   []pickView
	Charts  []domain.Chart
}

func homeView(report *domain.DashboardReport) homePage {
	if report == nil {
		return homePage{Message: noDataMessage}
	}
	return homePage{
		Ready:  true,
		Report: report,
		Charts: report.Charts.All(),
		Picks: []pickView{
			{Heading: "TODAY", Pick: report.News.Today},
			{Heading: "THIS WEEK", Pick: report.News.ThisWeek},
			{Heading: "THIS MONTH", Pick: report.News.ThisMonth},
		},
	}
}
