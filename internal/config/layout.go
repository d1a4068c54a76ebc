package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Layout describes how the dashboard folds snapshots into daily rows and
// which recency windows the news picks are drawn from.
type Layout struct {
	Reducers map[string]string `yaml:"reducers"`
	EMASpans []int             `yaml:"ema_spans"`
	Windows  []WindowSpec      `yaml:"windows"`
}

// WindowSpec bounds a pick window as offsets back from the dataset time.
// An empty Newest means the window is open ended towards the future.
type WindowSpec struct {
	Name   string `yaml:"name"`
	Oldest string `yaml:"oldest"`
	Newest string `yaml:"newest"`
}

func DefaultLayout() Layout {
	return Layout{
		Reducers: map[string]string{
			"price_usd":                              "mean",
			"market_cap_usd":                         "mean",
			"fully_diluted_valuation_usd":            "mean",
			"total_volume_usd":                       "mean",
			"twitter_followers_count":                "max",
			"github_total_issues_count":              "max",
			"github_closed_issues_count":             "max",
			"github_pull_requests_merged_count":      "max",
			"github_pull_request_contributors_count": "max",
		},
		EMASpans: []int{50, 200},
		Windows: []WindowSpec{
			{Name: "today", Oldest: "24h"},
			{Name: "this_week", Oldest: "168h", Newest: "24h"},
			{Name: "this_month", Oldest: "720h", Newest: "168h"},
		},
	}
}

// LoadLayout reads a YAML layout file. Keys absent from the file keep their
// defaults; an empty path returns DefaultLayout.
func LoadLayout(path string) (Layout, error) {
	layout := DefaultLayout()
	if path == "" {
		return layout, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return layout, fmt.Errorf("read layout %s: %w", path, err)
	}

	var parsed Layout
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return layout, fmt.Errorf("parse layout %s: %w", path, err)
	}

	if len(parsed.Reducers) > 0 {
		layout.Reducers = parsed.Reducers
	}
	if len(parsed.EMASpans) > 0 {
		layout.EMASpans = parsed.EMASpans
	}
	if len(parsed.Windows) > 0 {
		layout.Windows = parsed.Windows
	}
	if err := layout.Validate(); err != nil {
		return DefaultLayout(), fmt.Errorf("layout %s: %w", path, err)
	}
	return layout, nil
}

func (l Layout) Validate() error {
	for metric, reducer := range l.Reducers {
		switch reducer {
		case "mean", "max", "min", "last":
		default:
			return fmt.Errorf("metric %s: unknown reducer %q", metric, reducer)
		}
	}
	for _, span := range l.EMASpans {
		if span <= 0 {
			return fmt.Errorf("ema span must be positive, got %d", span)
		}
	}
	if len(l.Windows) != 3 {
		return fmt.Errorf("expected 3 pick windows, got %d", len(l.Windows))
	}
	for _, w := range l.Windows {
		oldest, newest, err := w.Bounds()
		if err != nil {
			return err
		}
		if newest >= oldest {
			return fmt.Errorf("window %s: newest offset %s must be smaller than oldest %s", w.Name, newest, oldest)
		}
	}
	return nil
}

// Bounds parses the window offsets. Newest defaults to zero.
func (w WindowSpec) Bounds() (oldest, newest time.Duration, err error) {
	oldest, err = time.ParseDuration(w.Oldest)
	if err != nil {
		return 0, 0, fmt.Errorf("window %s: oldest: %w", w.Name, err)
	}
	if w.Newest != "" {
		newest, err = time.ParseDuration(w.Newest)
		if err != nil {
			return 0, 0, fmt.Errorf("window %s: newest: %w", w.Name, err)
		}
	}
	return oldest, newest, nil
}
