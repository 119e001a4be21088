// Package filter narrows a normalized record set by a conjunction of
// optional criteria. Applying is pure: the input table is untouched and
// row order is preserved.
package filter

import (
	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
	"github.com/hasdouaaa/dashboard-autops/internal/enrichment"
)

// BotFilter selects traffic by visitor kind.
type BotFilter string

const (
	BotAll    BotFilter = "all"
	BotHumans BotFilter = "humans"
	BotBots   BotFilter = "bots"
)

// Valid reports whether the value is a known bot filter. The empty string
// counts as valid and means "all".
func (b BotFilter) Valid() bool {
	switch b {
	case "", BotAll, BotHumans, BotBots:
		return true
	}
	return false
}

// Criteria is a set of optional constraints. An empty slice or zero value
// imposes no restriction on its field; active constraints combine with AND.
type Criteria struct {
	Dates     []string // YYYY-MM-DD keys
	Countries []string
	Hours     []int
	Bots      BotFilter
}

// IsZero reports whether no constraint is active.
func (c Criteria) IsZero() bool {
	return len(c.Dates) == 0 && len(c.Countries) == 0 && len(c.Hours) == 0 &&
		(c.Bots == "" || c.Bots == BotAll)
}

// Apply returns the view of t matching every active criterion. Records with
// a null value in a constrained field are excluded. The bot criterion is
// skipped entirely when the table has no bottype column.
func Apply(t *dataset.Table, c Criteria) *dataset.Table {
	if c.IsZero() {
		return t
	}

	dates := toSet(c.Dates)
	countries := toSet(c.Countries)
	hours := make(map[int]bool, len(c.Hours))
	for _, h := range c.Hours {
		hours[h] = true
	}

	botFilter := c.Bots
	if !t.HasColumn(dataset.ColBotType) {
		botFilter = ""
	}

	var kept []dataset.Record
	for _, r := range t.Rows() {
		if len(dates) > 0 {
			key := r.DateKey()
			if key == "" || !dates[key] {
				continue
			}
		}
		if len(countries) > 0 && !countries[r.Get(dataset.ColCountry)] {
			continue
		}
		if len(hours) > 0 {
			if r.Hour == nil || !hours[*r.Hour] {
				continue
			}
		}
		switch botFilter {
		case BotHumans:
			if !enrichment.IsHuman(r.Get(dataset.ColBotType)) {
				continue
			}
		case BotBots:
			if enrichment.IsHuman(r.Get(dataset.ColBotType)) {
				continue
			}
		}
		kept = append(kept, r)
	}

	return t.WithRows(kept)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = true
		}
	}
	return set
}
