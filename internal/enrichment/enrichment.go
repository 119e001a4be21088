package enrichment

import (
	"github.com/hasdouaaa/dashboard-autops/internal/dataset"
)

// Enricher derives columns on a freshly ingested table: bot classification
// and browser/OS from the user-agent, and optional country/city backfill
// from a GeoIP database when the upload carries IPs but no geo columns.
type Enricher struct {
	geoIP *GeoIP
}

// New creates an Enricher. geoipPath may be empty, in which case geo
// backfill is disabled.
func New(geoipPath string) *Enricher {
	geoIP, _ := NewGeoIP(geoipPath)
	return &Enricher{geoIP: geoIP}
}

// ReloadGeoIP swaps the GeoIP database for a new path.
func (e *Enricher) ReloadGeoIP(path string) error {
	geoIP, err := NewGeoIP(path)
	if err != nil {
		return err
	}
	e.geoIP.Close()
	e.geoIP = geoIP
	return nil
}

// Close releases the GeoIP handle.
func (e *Enricher) Close() error {
	return e.geoIP.Close()
}

// Enrich returns a table extended with derived columns. The input table is
// never modified. An uploaded bottype column is preserved verbatim rather
// than recomputed, so exports round-trip.
func (e *Enricher) Enrich(t *dataset.Table) *dataset.Table {
	out := t

	if out.HasColumn(dataset.ColUserAgent) {
		rows := out.Rows()

		if !out.HasColumn(dataset.ColBotType) {
			botTypes := make([]string, len(rows))
			for i, r := range rows {
				botTypes[i] = string(ClassifyBot(r.Get(dataset.ColUserAgent)))
			}
			out = out.AppendColumn(dataset.ColBotType, botTypes)
		}

		needBrowser := !out.HasColumn(dataset.ColBrowser)
		needOS := !out.HasColumn(dataset.ColOS)
		if needBrowser || needOS {
			rows = out.Rows()
			browsers := make([]string, len(rows))
			oses := make([]string, len(rows))
			for i, r := range rows {
				ua := ParseUserAgent(r.Get(dataset.ColUserAgent))
				browsers[i] = ua.Browser
				oses[i] = ua.OS
			}
			if needBrowser {
				out = out.AppendColumn(dataset.ColBrowser, browsers)
			}
			if needOS {
				out = out.AppendColumn(dataset.ColOS, oses)
			}
		}
	}

	if e.geoIP != nil && out.HasColumn(dataset.ColIP) {
		needCountry := !out.HasColumn(dataset.ColCountry)
		needCity := !out.HasColumn(dataset.ColCity)
		if needCountry || needCity {
			rows := out.Rows()
			countries := make([]string, len(rows))
			cities := make([]string, len(rows))
			for i, r := range rows {
				if geo := e.geoIP.Lookup(r.Get(dataset.ColIP)); geo != nil {
					countries[i] = geo.Country
					cities[i] = geo.City
				}
			}
			if needCountry {
				out = out.AppendColumn(dataset.ColCountry, countries)
			}
			if needCity {
				out = out.AppendColumn(dataset.ColCity, cities)
			}
		}
	}

	return out
}
