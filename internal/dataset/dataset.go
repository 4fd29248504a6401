// Package dataset holds the daily store and ad channel history that the
// forecasting and budgeting commands work on. Datasets come from JSON or
// YAML files or from the deterministic mock generator.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iwvelando/commerce-analytics/internal/config"
	"github.com/iwvelando/commerce-analytics/pkg/budget"
	"github.com/iwvelando/commerce-analytics/pkg/constants"
	"github.com/iwvelando/commerce-analytics/pkg/datetime"
	"github.com/iwvelando/commerce-analytics/pkg/forecast"
	"github.com/iwvelando/commerce-analytics/pkg/mathutil"
	"github.com/iwvelando/commerce-analytics/pkg/validation"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Supported file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Dataset is daily store revenue and orders plus per-channel ad history.
type Dataset struct {
	Revenue  []forecast.TimePoint `json:"revenue" yaml:"revenue"`
	Orders   []forecast.TimePoint `json:"orders" yaml:"orders"`
	Channels budget.History       `json:"channels" yaml:"channels"`
}

// Load reads a dataset file. The format follows the file extension.
func Load(path string) (*Dataset, error) {
	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		format = FormatJSON
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("unsupported dataset file extension %q: expected .json, .yaml or .yml", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", path, err)
	}
	defer f.Close()

	d, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset %s: %w", path, err)
	}
	return d, nil
}

// FromConfig loads the dataset selected by the configuration: generated
// mock data or a dataset file.
func FromConfig(conf config.DatasetConfig) (*Dataset, error) {
	switch conf.Source {
	case "", constants.DatasetSourceMock:
		return Generate(MockOptions{Seed: conf.Seed, Days: conf.Days, Start: conf.Start})
	case constants.DatasetSourceFile:
		if conf.Path == "" {
			return nil, fmt.Errorf("dataset source is file but no path is set")
		}
		return Load(conf.Path)
	default:
		return nil, fmt.Errorf("unsupported dataset source %q", conf.Source)
	}
}

// Decode reads a dataset in the given format and validates it.
func Decode(r io.Reader, format string) (*Dataset, error) {
	var d Dataset
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return nil, fmt.Errorf("invalid JSON dataset: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&d); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid YAML dataset: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
	d.normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Encode writes the dataset in the given format.
func (d *Dataset) Encode(w io.Writer, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported dataset format %q", format)
	}
}

func (d *Dataset) normalize() {
	if d.Channels == nil {
		d.Channels = budget.History{}
		return
	}
	keys := make([]string, 0, len(d.Channels))
	for ch := range d.Channels {
		keys = append(keys, ch)
	}
	sort.Strings(keys)
	normalized := make(budget.History, len(d.Channels))
	for _, ch := range keys {
		name := strings.ToLower(strings.TrimSpace(ch))
		normalized[name] = append(normalized[name], d.Channels[ch]...)
	}
	d.Channels = normalized
}

// Validate reports every malformed series: unparsable or out of order
// dates and negative channel spend or conversions. Revenue may be negative
// on refund days.
func (d *Dataset) Validate() error {
	var err error
	err = multierr.Append(err, validateSeries(constants.MetricRevenue, d.Revenue))
	err = multierr.Append(err, validateSeries(constants.MetricOrders, d.Orders))
	for _, ch := range d.ChannelNames() {
		err = multierr.Append(err, validateRecords(ch, d.Channels[ch]))
	}
	return err
}

func validateSeries(name string, points []forecast.TimePoint) error {
	var err error
	previous := ""
	for i, p := range points {
		if _, parseErr := datetime.OffsetDate(p.Date, 0); parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("%s[%d]: invalid date %q", name, i, p.Date))
			continue
		}
		if previous != "" && !after(previous, p.Date) {
			err = multierr.Append(err, fmt.Errorf("%s[%d]: date %s is not after %s", name, i, p.Date, previous))
		}
		previous = p.Date
	}
	return err
}

func validateRecords(channel string, records []budget.ChannelRecord) error {
	var err error
	previous := ""
	for i, r := range records {
		if r.Spend < 0 || r.Purchases < 0 || r.Conversions < 0 {
			err = multierr.Append(err, fmt.Errorf("channel %s[%d]: negative spend or conversions are not allowed", channel, i))
		}
		if r.Date == "" {
			continue
		}
		if _, parseErr := datetime.OffsetDate(r.Date, 0); parseErr != nil {
			err = multierr.Append(err, fmt.Errorf("channel %s[%d]: invalid date %q", channel, i, r.Date))
			continue
		}
		if previous != "" && !after(previous, r.Date) {
			err = multierr.Append(err, fmt.Errorf("channel %s[%d]: date %s is not after %s", channel, i, r.Date, previous))
		}
		previous = r.Date
	}
	return err
}

func after(previous, date string) bool {
	before, err := datetime.DateBeforeDate(previous, date)
	return err == nil && before
}

// ChannelNames returns the channels with history, sorted.
func (d *Dataset) ChannelNames() []string {
	names := make([]string, 0, len(d.Channels))
	for ch := range d.Channels {
		names = append(names, ch)
	}
	sort.Strings(names)
	return names
}

// Series returns a copy of the daily series named by metric: revenue,
// orders, or spend/revenue/roas of a channel written as "spend:meta".
// Channel records without a date are left out.
func (d *Dataset) Series(metric string) ([]forecast.TimePoint, error) {
	if err := validation.ValidateMetric(metric); err != nil {
		return nil, err
	}
	name, channel, hasChannel := strings.Cut(metric, constants.MetricSeparator)

	if !hasChannel {
		switch name {
		case constants.MetricRevenue:
			return clonePoints(d.Revenue), nil
		default:
			return clonePoints(d.Orders), nil
		}
	}

	records, ok := d.Channels[channel]
	if !ok {
		return nil, fmt.Errorf("no history for channel %q", channel)
	}
	points := make([]forecast.TimePoint, 0, len(records))
	for _, r := range records {
		if r.Date == "" {
			continue
		}
		var value float64
		switch name {
		case constants.MetricSpend:
			value = r.Spend
		case constants.MetricRevenue:
			value = r.Revenue
		case constants.MetricROAS:
			value = mathutil.SafeDivide(r.Revenue, r.Spend)
		}
		points = append(points, forecast.TimePoint{Date: r.Date, Value: value})
	}
	return points, nil
}

// History returns a copy of the channel history.
func (d *Dataset) History() budget.History {
	history := make(budget.History, len(d.Channels))
	for ch, records := range d.Channels {
		history[ch] = append([]budget.ChannelRecord(nil), records...)
	}
	return history
}

// Window returns the dataset restricted to the last days days of every
// series. A non-positive days returns the full dataset.
func (d *Dataset) Window(days int) *Dataset {
	if days <= 0 {
		return d
	}
	out := &Dataset{
		Revenue:  clonePoints(tail(d.Revenue, days)),
		Orders:   clonePoints(tail(d.Orders, days)),
		Channels: make(budget.History, len(d.Channels)),
	}
	for ch, records := range d.Channels {
		out.Channels[ch] = append([]budget.ChannelRecord(nil), tail(records, days)...)
	}
	return out
}

func tail[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func clonePoints(points []forecast.TimePoint) []forecast.TimePoint {
	return append([]forecast.TimePoint{}, points...)
}
