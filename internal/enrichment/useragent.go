package enrichment

import (
	"github.com/mssola/useragent"
)

// UAResult contains the browser and OS names extracted from a user-agent.
type UAResult struct {
	Browser string
	OS      string
}

// ParseUserAgent extracts browser and OS names. Unrecognizable agents
// (crawlers, custom clients) come back with empty fields.
func ParseUserAgent(uaString string) UAResult {
	ua := useragent.New(uaString)
	browser, _ := ua.Browser()
	return UAResult{
		Browser: browser,
		OS:      ua.OS(),
	}
}
