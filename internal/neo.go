package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
)

// See https://api.nasa.gov/ (Asteroids - NeoWs) for further explanations of the fields.

// DateLayout is the calendar date format used by the feed for both query parameters and
// bucket keys.
const DateLayout = "2006-01-02"

// feedResponse mirrors the JSON returned by the NeoWs feed endpoint.
type feedResponse struct {
	ElementCount     int                    `json:"element_count"`      // total count of objects returned
	NearEarthObjects map[string][]neoRecord `json:"near_earth_objects"` // objects grouped by approach date
}

// neoRecord is a single object as it appears on the wire. It is also the shape of a serialized
// selection, so a blob can be read back with the same ingestion path.
type neoRecord struct {
	ID                     string                `json:"id"`
	Name                   string                `json:"name"`
	NasaJplURL             string                `json:"nasa_jpl_url"`
	IsPotentiallyHazardous bool                  `json:"is_potentially_hazardous_asteroid"`
	EstimatedDiameter      estimatedDiameter     `json:"estimated_diameter"`
	CloseApproachData      []closeApproachRecord `json:"close_approach_data"`
}

type estimatedDiameter struct {
	Kilometers diameterRecord `json:"kilometers"`
}

type diameterRecord struct {
	Min float64 `json:"estimated_diameter_min"` // in [km]
	Max float64 `json:"estimated_diameter_max"` // in [km]
}

type closeApproachRecord struct {
	CloseApproachDate     string           `json:"close_approach_date"`      // YYYY-MM-DD
	CloseApproachDateFull string           `json:"close_approach_date_full"` // e.g. 2024-Jan-01 12:34
	RelativeVelocity      relativeVelocity `json:"relative_velocity"`
	MissDistance          missDistance     `json:"miss_distance"`
	OrbitingBody          string           `json:"orbiting_body"`
}

type relativeVelocity struct {
	KilometersPerHour string `json:"kilometers_per_hour"` // numeric string in [km/h]
}

type missDistance struct {
	Kilometers string `json:"kilometers"` // numeric string in [km]
}

// DiameterRange is the estimated size of an object in kilometers.
type DiameterRange struct {
	MinKm float64
	MaxKm float64
}

// MeanKm returns the average of the estimated minimum and maximum diameter.
func (d DiameterRange) MeanKm() float64 {
	return (d.MinKm + d.MaxKm) / 2 //nolint: mnd // mean of two values
}

// CloseApproach is one recorded pass of an object near a body.
// Velocity and distance are NaN when the feed sent a malformed number.
type CloseApproach struct {
	Date           string
	DateFull       string
	VelocityKmh    float64
	MissDistanceKm float64
	OrbitingBody   string
}

// NearEarthObject is an immutable record created from a single feed response.
type NearEarthObject struct {
	ID              string
	Name            string
	IsHazardous     bool
	Diameter        DiameterRange
	CloseApproaches []CloseApproach
	DetailURL       string
}

// FirstApproach returns the canonical close approach used for sorting and display.
// The feed is assumed to list the approach of the requested window first.
func (neo *NearEarthObject) FirstApproach() (CloseApproach, bool) {
	if len(neo.CloseApproaches) == 0 {
		return CloseApproach{}, false
	}

	return neo.CloseApproaches[0], true
}

// MissDistanceKm returns the miss distance of the first close approach, or NaN.
func (neo *NearEarthObject) MissDistanceKm() float64 {
	approach, ok := neo.FirstApproach()
	if !ok {
		return math.NaN()
	}

	return approach.MissDistanceKm
}

// VelocityKmh returns the relative velocity of the first close approach, or NaN.
func (neo *NearEarthObject) VelocityKmh() float64 {
	approach, ok := neo.FirstApproach()
	if !ok {
		return math.NaN()
	}

	return approach.VelocityKmh
}

// ApproachDate returns the calendar date of the first close approach as a unix timestamp in
// seconds, or NaN when there is no approach or the date can't be parsed.
func (neo *NearEarthObject) ApproachDate() float64 {
	approach, ok := neo.FirstApproach()
	if !ok {
		return math.NaN()
	}

	date, err := ParseDate(approach.Date)
	if err != nil {
		return math.NaN()
	}

	return float64(date.Unix())
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	date, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parseDate: %w", err)
	}

	return date, nil
}

// FormatDate renders the calendar date of t in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Today returns the current calendar date at midnight UTC.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour) //nolint: mnd // one day
}

// parseNumeric converts a numeric string from the feed. Malformed input yields NaN.
func parseNumeric(value string) float64 {
	num, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return math.NaN()
	}

	return num
}

func formatNumeric(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// toNeo converts the wire record into the domain type. Numeric strings are parsed here and
// nowhere else.
func (rec *neoRecord) toNeo() NearEarthObject {
	approaches := make([]CloseApproach, 0, len(rec.CloseApproachData))
	for _, cad := range rec.CloseApproachData {
		approaches = append(approaches, CloseApproach{
			Date:           cad.CloseApproachDate,
			DateFull:       cad.CloseApproachDateFull,
			VelocityKmh:    parseNumeric(cad.RelativeVelocity.KilometersPerHour),
			MissDistanceKm: parseNumeric(cad.MissDistance.Kilometers),
			OrbitingBody:   cad.OrbitingBody,
		})
	}

	return NearEarthObject{
		ID:          rec.ID,
		Name:        rec.Name,
		IsHazardous: rec.IsPotentiallyHazardous,
		Diameter: DiameterRange{
			MinKm: rec.EstimatedDiameter.Kilometers.Min,
			MaxKm: rec.EstimatedDiameter.Kilometers.Max,
		},
		CloseApproaches: approaches,
		DetailURL:       rec.NasaJplURL,
	}
}

// toRecord converts the domain type back into its wire shape.
func toRecord(neo *NearEarthObject) neoRecord {
	approaches := make([]closeApproachRecord, 0, len(neo.CloseApproaches))
	for _, ca := range neo.CloseApproaches {
		approaches = append(approaches, closeApproachRecord{
			CloseApproachDate:     ca.Date,
			CloseApproachDateFull: ca.DateFull,
			RelativeVelocity:      relativeVelocity{KilometersPerHour: formatNumeric(ca.VelocityKmh)},
			MissDistance:          missDistance{Kilometers: formatNumeric(ca.MissDistanceKm)},
			OrbitingBody:          ca.OrbitingBody,
		})
	}

	return neoRecord{
		ID:                     neo.ID,
		Name:                   neo.Name,
		NasaJplURL:             neo.DetailURL,
		IsPotentiallyHazardous: neo.IsHazardous,
		EstimatedDiameter: estimatedDiameter{
			Kilometers: diameterRecord{Min: neo.Diameter.MinKm, Max: neo.Diameter.MaxKm},
		},
		CloseApproachData: approaches,
	}
}

// parseFeed turns a feed response body into an aggregate. Date buckets are inserted in
// chronological key order since JSON object order is lost during decoding.
func parseFeed(body []byte) (*Aggregate, error) {
	var data feedResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parseFeed: failed to unmarshal JSON: %w", err)
	}

	if data.NearEarthObjects == nil {
		return nil, fmt.Errorf("parseFeed: %w", ErrMissingFeed)
	}

	dates := make([]string, 0, len(data.NearEarthObjects))
	for date := range data.NearEarthObjects {
		dates = append(dates, date)
	}
	slices.Sort(dates)

	agg := NewAggregate()
	for _, date := range dates {
		records := data.NearEarthObjects[date]
		neos := make([]NearEarthObject, 0, len(records))
		for i := range records {
			neos = append(neos, records[i].toNeo())
		}
		agg.Add(date, neos)
	}

	return agg, nil
}
