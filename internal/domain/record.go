package domain

import (
	"math"
	"time"
)

// Reading is a current weather sample for a city.
type Reading struct {
	Temperature float64 // °C
	Humidity    float64 // relative humidity, %
}

// Observation is a validated crop and city paired with a weather reading.
type Observation struct {
	Crop        string
	City        string
	Temperature float64
	Humidity    float64
	Timestamp   time.Time
}

// NewObservation stamps a reading for a validated input with the current time.
func NewObservation(in ValidInput, r Reading) Observation {
	return Observation{
		Crop:        in.Crop.Name,
		City:        in.City,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Timestamp:   clock.Now(),
	}
}

// RiskAssessment is the classified tier and its recommendation.
type RiskAssessment struct {
	Tier           RiskTier
	Recommendation string
}

// AlertRecord is the reportable result of one evaluation.
type AlertRecord struct {
	Crop           string    `json:"crop"`
	City           string    `json:"city"`
	Date           time.Time `json:"date"`
	Temperature    float64   `json:"temperature"`
	Humidity       float64   `json:"humidity"`
	Risk           *RiskTier `json:"risk"` // nil when no rule matched
	Recommendation string    `json:"recommendation"`
}

// Tier returns the record's risk tier, TierUnknown when Risk is nil.
func (r AlertRecord) Tier() RiskTier {
	if r.Risk == nil {
		return TierUnknown
	}
	return *r.Risk
}

// Aggregate builds the display-normalized record for an assessed observation.
func Aggregate(obs Observation, a RiskAssessment) AlertRecord {
	var risk *RiskTier
	if a.Tier != TierUnknown {
		t := a.Tier
		risk = &t
	}
	return AlertRecord{
		Crop:           capitalize(obs.Crop),
		City:           titleCase(obs.City),
		Date:           obs.Timestamp,
		Temperature:    math.Round(obs.Temperature*100) / 100,
		Humidity:       obs.Humidity,
		Risk:           risk,
		Recommendation: a.Recommendation,
	}
}

// Report is the caller-owned working set of records awaiting emission.
// The zero value is ready to use.
type Report struct {
	records []AlertRecord
}

// Append adds a record at the end.
func (r *Report) Append(rec AlertRecord) {
	r.records = append(r.records, rec)
}

// Records returns a copy of the records in insertion order.
func (r *Report) Records() []AlertRecord {
	out := make([]AlertRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Latest returns the most recently appended record.
func (r *Report) Latest() (AlertRecord, bool) {
	if len(r.records) == 0 {
		return AlertRecord{}, false
	}
	return r.records[len(r.records)-1], true
}

func (r *Report) Len() int { return len(r.records) }

// Reset drops every record.
func (r *Report) Reset() {
	r.records = nil
}
