package domain

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// SearchCriteria is the navigation context handed to the results view.
type SearchCriteria struct {
	Origin      string
	Destination string
	Date        time.Time
}

// ParseCriteria builds criteria from raw form values. A malformed date is
// treated as absent so the caller falls into the no-search-data state.
func ParseCriteria(from, to, date string, loc *time.Location) SearchCriteria {
	c := SearchCriteria{
		Origin:      strings.ToUpper(strings.TrimSpace(from)),
		Destination: strings.ToUpper(strings.TrimSpace(to)),
	}
	if parsed, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc); err == nil {
		c.Date = parsed
	}
	return c
}

func (c SearchCriteria) Complete() bool {
	return c.Origin != "" && c.Destination != "" && !c.Date.IsZero()
}

func (c SearchCriteria) DateString() string {
	if c.Date.IsZero() {
		return ""
	}
	return c.Date.Format(DateLayout)
}

func (c SearchCriteria) Equal(other SearchCriteria) bool {
	return c.Origin == other.Origin && c.Destination == other.Destination && c.DateString() == other.DateString()
}

func (c SearchCriteria) Key() string {
	return c.Origin + "|" + c.Destination + "|" + c.DateString()
}
