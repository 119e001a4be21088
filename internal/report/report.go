// Package report computes the dashboard's fixed battery of aggregates over
// a (usually filtered) record set. Every aggregate is a pure transform:
// same input, same output. An aggregate whose required columns are missing
// returns nil so the caller can drop it from the view instead of erroring.
package report

import (
	"sort"

	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
)

// TopURLLimit caps the URL frequency aggregate.
const TopURLLimit = 10

// HourCount is a distinct-IP tally for one hour of the day.
type HourCount struct {
	Hour int `json:"hour"`
	IPs  int `json:"ips"`
}

// NameCount is a distinct-IP tally keyed by a single string dimension.
type NameCount struct {
	Name string `json:"name"`
	IPs  int    `json:"ips"`
}

// GeoCount is a distinct-IP tally for one (country, city) pair.
type GeoCount struct {
	Country string `json:"country"`
	City    string `json:"city"`
	IPs     int    `json:"ips"`
}

// DateBotCount is a distinct-count tally for one (date, bot type) pair.
type DateBotCount struct {
	Date    string `json:"date"` // YYYY-MM-DD
	BotType string `json:"bot_type"`
	Count   int    `json:"count"`
}

// URLCount is a raw visit tally for one URL.
type URLCount struct {
	URL    string `json:"url"`
	Visits int    `json:"visits"`
}

// BotAgentCount is a distinct user-agent tally per bot type.
type BotAgentCount struct {
	BotType string `json:"bot_type"`
	Agents  int    `json:"agents"`
}

// HourlyIPs counts distinct IPs per hour, ascending by hour.
// Requires hour and ip columns; rows with a null hour are skipped.
func HourlyIPs(t *dataset.Table) []HourCount {
	if t.HourColumn() == "" || !t.HasColumn(dataset.ColIP) {
		return nil
	}

	groups := make(map[int]map[string]bool)
	for _, r := range t.Rows() {
		if r.Hour == nil {
			continue
		}
		addDistinct(groups, *r.Hour, r.Get(dataset.ColIP))
	}

	out := make([]HourCount, 0, len(groups))
	for hour, ips := range groups {
		out = append(out, HourCount{Hour: hour, IPs: len(ips)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// CountryIPs counts distinct IPs per country, ascending by count.
func CountryIPs(t *dataset.Table) []NameCount {
	return ipsByName(t, dataset.ColCountry, func(a, b NameCount) bool {
		return a.IPs < b.IPs
	})
}

// CityIPs counts distinct IPs per city, descending by count.
func CityIPs(t *dataset.Table) []NameCount {
	return ipsByName(t, dataset.ColCity, func(a, b NameCount) bool {
		return a.IPs > b.IPs
	})
}

func ipsByName(t *dataset.Table, col string, less func(a, b NameCount) bool) []NameCount {
	if !t.HasColumn(col) || !t.HasColumn(dataset.ColIP) {
		return nil
	}

	groups := make(map[string]map[string]bool)
	var order []string
	for _, r := range t.Rows() {
		name := r.Get(col)
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		addDistinct(groups, name, r.Get(dataset.ColIP))
	}

	out := make([]NameCount, 0, len(order))
	for _, name := range order {
		out = append(out, NameCount{Name: name, IPs: len(groups[name])})
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// GeoIPs counts distinct IPs per (country, city) pair, sorted by country
// then city.
func GeoIPs(t *dataset.Table) []GeoCount {
	if !t.HasColumn(dataset.ColCountry) || !t.HasColumn(dataset.ColCity) || !t.HasColumn(dataset.ColIP) {
		return nil
	}

	type key struct{ country, city string }
	groups := make(map[key]map[string]bool)
	for _, r := range t.Rows() {
		addDistinct(groups, key{r.Get(dataset.ColCountry), r.Get(dataset.ColCity)}, r.Get(dataset.ColIP))
	}

	out := make([]GeoCount, 0, len(groups))
	for k, ips := range groups {
		out = append(out, GeoCount{Country: k.country, City: k.city, IPs: len(ips)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].City < out[j].City
	})
	return out
}

// VisitorsByDate counts distinct visitors per (date, bot type) pair.
// Requires date, bottype and visiteur columns; null dates are skipped.
func VisitorsByDate(t *dataset.Table) []DateBotCount {
	return byDateAndBot(t, dataset.ColVisitor)
}

// IPsByDate counts distinct IPs per (date, bot type) pair.
func IPsByDate(t *dataset.Table) []DateBotCount {
	return byDateAndBot(t, dataset.ColIP)
}

func byDateAndBot(t *dataset.Table, valueCol string) []DateBotCount {
	if !t.HasColumn(dataset.ColDate) || !t.HasColumn(dataset.ColBotType) || !t.HasColumn(valueCol) {
		return nil
	}

	type key struct{ date, bot string }
	groups := make(map[key]map[string]bool)
	for _, r := range t.Rows() {
		date := r.DateKey()
		if date == "" {
			continue
		}
		addDistinct(groups, key{date, r.Get(dataset.ColBotType)}, r.Get(valueCol))
	}

	out := make([]DateBotCount, 0, len(groups))
	for k, vals := range groups {
		out = append(out, DateBotCount{Date: k.date, BotType: k.bot, Count: len(vals)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].BotType < out[j].BotType
	})
	return out
}

// TopURLs tallies raw visits per URL and keeps the top entries, descending
// by count, ties broken by first appearance in the input.
func TopURLs(t *dataset.Table) []URLCount {
	if !t.HasColumn(dataset.ColURL) {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, r := range t.Rows() {
		url := r.Get(dataset.ColURL)
		if _, ok := counts[url]; !ok {
			order = append(order, url)
		}
		counts[url]++
	}

	out := make([]URLCount, 0, len(order))
	for _, url := range order {
		out = append(out, URLCount{URL: url, Visits: counts[url]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Visits > out[j].Visits })
	if len(out) > TopURLLimit {
		out = out[:TopURLLimit]
	}
	return out
}

// UserAgentsByBot counts distinct user-agent strings per bot type, sorted
// by bot type.
func UserAgentsByBot(t *dataset.Table) []BotAgentCount {
	if !t.HasColumn(dataset.ColBotType) || !t.HasColumn(dataset.ColUserAgent) {
		return nil
	}

	groups := make(map[string]map[string]bool)
	for _, r := range t.Rows() {
		addDistinct(groups, r.Get(dataset.ColBotType), r.Get(dataset.ColUserAgent))
	}

	out := make([]BotAgentCount, 0, len(groups))
	for bot, agents := range groups {
		out = append(out, BotAgentCount{BotType: bot, Agents: len(agents)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BotType < out[j].BotType })
	return out
}

// Overview bundles every aggregate that applies to the table. Missing-column
// aggregates stay nil and marshal as absent.
type Overview struct {
	HourlyIPs      []HourCount     `json:"hourly_ips,omitempty"`
	CountryIPs     []NameCount     `json:"country_ips,omitempty"`
	CityIPs        []NameCount     `json:"city_ips,omitempty"`
	GeoIPs         []GeoCount      `json:"geo_ips,omitempty"`
	VisitorsByDate []DateBotCount  `json:"visitors_by_date,omitempty"`
	IPsByDate      []DateBotCount  `json:"ips_by_date,omitempty"`
	TopURLs        []URLCount      `json:"top_urls,omitempty"`
	UserAgents     []BotAgentCount `json:"user_agents_by_bot,omitempty"`
}

// Build computes the full overview for a table.
func Build(t *dataset.Table) *Overview {
	return &Overview{
		HourlyIPs:      HourlyIPs(t),
		CountryIPs:     CountryIPs(t),
		CityIPs:        CityIPs(t),
		GeoIPs:         GeoIPs(t),
		VisitorsByDate: VisitorsByDate(t),
		IPsByDate:      IPsByDate(t),
		TopURLs:        TopURLs(t),
		UserAgents:     UserAgentsByBot(t),
	}
}

func addDistinct[K comparable](groups map[K]map[string]bool, key K, value string) {
	set, ok := groups[key]
	if !ok {
		set = make(map[string]bool)
		groups[key] = set
	}
	set[value] = true
}
