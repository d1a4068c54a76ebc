package dashboard

import (
	"fmt"
	"sort"
	"time"

	"daily-btc/internal/config"
	"daily-btc/internal/domain"
	"daily-btc/internal/ta"
)

type metricReducer struct {
	metric domain.Metric
	reduce ta.Reducer
}

// Window is a half-open interval [asOf-Oldest, asOf-Newest). A zero Newest
// leaves the window open towards the future.
type Window struct {
	Name   string
	Oldest time.Duration
	Newest time.Duration
}

func (w Window) Contains(asOf, published time.Time) bool {
	if published.Before(asOf.Add(-w.Oldest)) {
		return false
	}
	if w.Newest > 0 && !published.Before(asOf.Add(-w.Newest)) {
		return false
	}
	return true
}

// Layout is the parameter set of the one aggregation function: which
// reducer folds each metric per day, which EMA spans are derived from the
// daily price, and the three pick windows (today, this week, this month).
type Layout struct {
	reducers []metricReducer
	emaSpans []int
	windows  [3]Window
}

func DefaultLayout() Layout {
	layout, err := NewLayout(config.DefaultLayout())
	if err != nil {
		panic(err)
	}
	return layout
}

// LoadLayout reads the YAML layout at path. On error it returns the default
// layout together with the error so callers can log and carry on.
func LoadLayout(path string) (Layout, error) {
	cfg, err := config.LoadLayout(path)
	if err != nil {
		return DefaultLayout(), err
	}
	layout, err := NewLayout(cfg)
	if err != nil {
		return DefaultLayout(), err
	}
	return layout, nil
}

func NewLayout(cfg config.Layout) (Layout, error) {
	if err := cfg.Validate(); err != nil {
		return Layout{}, err
	}

	var layout Layout
	for name, reducerName := range cfg.Reducers {
		metric := domain.Metric(name)
		if !metric.IsKnown() {
			return Layout{}, fmt.Errorf("unknown metric %q", name)
		}
		reduce, err := ta.ReducerByName(reducerName)
		if err != nil {
			return Layout{}, fmt.Errorf("metric %s: %w", name, err)
		}
		layout.reducers = append(layout.reducers, metricReducer{metric: metric, reduce: reduce})
	}
	sort.Slice(layout.reducers, func(i, j int) bool {
		return layout.reducers[i].metric < layout.reducers[j].metric
	})

	layout.emaSpans = append([]int(nil), cfg.EMASpans...)

	for i, spec := range cfg.Windows {
		oldest, newest, err := spec.Bounds()
		if err != nil {
			return Layout{}, err
		}
		layout.windows[i] = Window{Name: spec.Name, Oldest: oldest, Newest: newest}
	}
	return layout, nil
}

func (l Layout) Windows() [3]Window {
	return l.windows
}

func (l Layout) EMASpans() []int {
	return append([]int(nil), l.emaSpans...)
}
