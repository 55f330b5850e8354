package domain

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

func (p *Package) HasDate(date string) bool {
	for _, d := range p.AvailableDates {
		if d.Date == date {
			return true
		}
	}
	return false
}

func (p *Package) Summary() *PackageSummary {
	return &PackageSummary{Title: p.Title, Duration: p.Duration, PricePerHead: p.PricePerHead}
}

// Validate checks a package at the catalog boundary and normalizes the
// free-form lists in place.
func (p *Package) Validate() error {
	verr := NewValidationError()

	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		verr.Add("title", "required")
	}
	if p.PricePerHead < 0 {
		verr.Add("price_per_head", "must not be negative")
	}
	for i, day := range p.Itinerary {
		if day.Day <= 0 {
			verr.Add(fmt.Sprintf("itinerary[%d].day", i), "must be a positive integer")
		}
		if strings.TrimSpace(day.Title) == "" {
			verr.Add(fmt.Sprintf("itinerary[%d].title", i), "required")
		}
	}
	seen := map[string]bool{}
	for i, d := range p.AvailableDates {
		if _, err := time.Parse(DateLayout, d.Date); err != nil {
			verr.Add(fmt.Sprintf("available_dates[%d].date", i), "must be YYYY-MM-DD")
		} else if seen[d.Date] {
			verr.Add(fmt.Sprintf("available_dates[%d].date", i), "duplicate date")
		}
		seen[d.Date] = true
		if d.SlotsAvailable < 0 {
			verr.Add(fmt.Sprintf("available_dates[%d].slots_available", i), "must not be negative")
		}
	}

	p.Images = compact(p.Images)
	p.Inclusions = compact(p.Inclusions)
	p.Exclusions = compact(p.Exclusions)
	return verr.OrNil()
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
