// README: ZIP-code based timezone lookup and local-instant resolution.
package timeaddr

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed timezone_mapper.json
var mappingJSON []byte

// OpenTime is the sentinel pickup-time value meaning "no fixed time".
const OpenTime = "OPEN"

var (
	// ErrUnresolvable is returned when the address or the date/time strings
	// cannot be turned into an instant. Callers are expected to degrade the
	// booking to "no fixed pickup time" rather than fail the request.
	ErrUnresolvable = errors.New("unresolvable date/time/address")
)

// zoneRange maps an inclusive ZIP range to an IANA timezone.
// Field names match the timezone_mapper.json asset.
type zoneRange struct {
	StateCode  string `json:"stateCode"`
	State      string `json:"state"`
	ZipStart   int    `json:"zipcodeStart"`
	ZipEnd     int    `json:"zipcodeEnd"`
	TimezoneID string `json:"timezoneId"`
}

// Resolver converts (date, time, address) triples into timezone-aware
// instants. The ZIP→timezone table is loaded once at construction and is
// immutable afterwards, so a single Resolver is safe for concurrent use.
type Resolver struct {
	ranges []zoneRange
	zones  map[string]*time.Location
}

// NewResolver builds a Resolver from the embedded ZIP range table.
func NewResolver() (*Resolver, error) {
	var ranges []zoneRange
	if err := json.Unmarshal(mappingJSON, &ranges); err != nil {
		return nil, fmt.Errorf("parse timezone mapping: %w", err)
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].ZipStart < ranges[j].ZipStart })

	zones := make(map[string]*time.Location)
	for _, r := range ranges {
		if _, ok := zones[r.TimezoneID]; ok {
			continue
		}
		loc, err := time.LoadLocation(r.TimezoneID)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", r.TimezoneID, err)
		}
		zones[r.TimezoneID] = loc
	}
	return &Resolver{ranges: ranges, zones: zones}, nil
}

// Resolve combines a date string, a clock-time string, and a street address
// whose final whitespace-delimited token is a 5-digit ZIP into an instant in
// the address's timezone. The OPEN sentinel and empty time strings are
// unresolvable by definition.
func (r *Resolver) Resolve(dateStr, timeStr, address string) (time.Time, error) {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" || strings.EqualFold(timeStr, OpenTime) {
		return time.Time{}, fmt.Errorf("%w: no fixed time", ErrUnresolvable)
	}

	tzID, ok := r.TimezoneID(address)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: no timezone for address %q", ErrUnresolvable, address)
	}
	loc := r.zones[tzID]

	date, err := parseDate(dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}
	clock, err := parseClock(timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrUnresolvable, err)
	}

	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// TimezoneID returns the IANA timezone for the ZIP at the end of the address.
func (r *Resolver) TimezoneID(address string) (string, bool) {
	entry, ok := r.lookupZip(lastToken(address))
	if !ok {
		return "", false
	}
	return entry.TimezoneID, true
}

// StateCode returns the two-letter state code for a ZIP string.
func (r *Resolver) StateCode(zip string) (string, bool) {
	entry, ok := r.lookupZip(zip)
	if !ok {
		return "", false
	}
	return entry.StateCode, true
}

func (r *Resolver) lookupZip(zip string) (zoneRange, bool) {
	if len(zip) != 5 {
		return zoneRange{}, false
	}
	n, err := strconv.Atoi(zip)
	if err != nil {
		return zoneRange{}, false
	}
	// First range starting after n; the candidate is the one before it.
	i := sort.Search(len(r.ranges), func(i int) bool { return r.ranges[i].ZipStart > n })
	if i == 0 {
		return zoneRange{}, false
	}
	entry := r.ranges[i-1]
	if n > entry.ZipEnd {
		return zoneRange{}, false
	}
	return entry, true
}

func lastToken(address string) string {
	fields := strings.Fields(address)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"2006-01-02",
}

var clockLayouts = []string{
	"3:04 PM",
	"03:04 PM",
	"3:04PM",
	"15:04",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseClock(s string) (time.Time, error) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// To12Hour formats an instant as "03:04 PM" in its own location.
func To12Hour(t time.Time) string { return t.Format("03:04 PM") }

// To24Hour formats an instant as "15:04" in its own location.
func To24Hour(t time.Time) string { return t.Format("15:04") }
