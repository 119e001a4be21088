package enrichment

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// GeoResult contains geolocation data for one IP.
type GeoResult struct {
	Country string
	City    string
}

// GeoIP provides IP geolocation from a MaxMind database.
type GeoIP struct {
	db *geoip2.Reader
}

// NewGeoIP opens a GeoIP database. An empty path yields a nil instance,
// which every method treats as "no geo data".
func NewGeoIP(path string) (*GeoIP, error) {
	if path == "" {
		return nil, nil
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoIP{db: db}, nil
}

// Close closes the underlying database.
func (g *GeoIP) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}

// Lookup resolves an IP to country and city names. Returns nil for
// unparsable IPs or lookup misses.
func (g *GeoIP) Lookup(ipStr string) *GeoResult {
	if g == nil || g.db == nil {
		return nil
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return nil
	}

	record, err := g.db.City(ip)
	if err != nil {
		return nil
	}

	result := &GeoResult{}
	if name, ok := record.Country.Names["en"]; ok {
		result.Country = name
	}
	if name, ok := record.City.Names["en"]; ok {
		result.City = name
	}
	if result.Country == "" && result.City == "" {
		return nil
	}
	return result
}
