package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 12, 14, 30, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(testNow))
	t.Cleanup(func() { SetClock(nil) })
}

func TestNewObservation(t *testing.T) {
	freezeClock(t)
	soja, _ := DefaultCatalog().Lookup("soja")

	obs := NewObservation(ValidInput{Crop: soja, City: "são paulo"}, Reading{Temperature: 32.456, Humidity: 75})

	assert.Equal(t, "soja", obs.Crop)
	assert.Equal(t, "são paulo", obs.City)
	assert.InDelta(t, 32.456, obs.Temperature, 0.0001)
	assert.InDelta(t, 75.0, obs.Humidity, 0.0001)
	assert.Equal(t, testNow, obs.Timestamp)
}

func TestAggregate(t *testing.T) {
	obs := Observation{Crop: "soja", City: "são paulo", Temperature: 32.456, Humidity: 75, Timestamp: testNow}

	rec := Aggregate(obs, RiskAssessment{Tier: TierHigh, Recommendation: "spray"})

	assert.Equal(t, "Soja", rec.Crop)
	assert.Equal(t, "São Paulo", rec.City)
	assert.Equal(t, testNow, rec.Date)
	assert.InDelta(t, 32.46, rec.Temperature, 0.0001)
	assert.InDelta(t, 75.0, rec.Humidity, 0.0001)
	require.NotNil(t, rec.Risk)
	assert.Equal(t, TierHigh, rec.Tier())
	assert.Equal(t, "spray", rec.Recommendation)
}

func TestAggregate_UnknownTierSerializesNull(t *testing.T) {
	obs := Observation{Crop: "milho", City: "CURITIBA", Temperature: 10, Humidity: 20, Timestamp: testNow}

	rec := Aggregate(obs, RiskAssessment{Tier: TierUnknown, Recommendation: FallbackRecommendation})

	assert.Nil(t, rec.Risk)
	assert.Equal(t, TierUnknown, rec.Tier())
	assert.Equal(t, "Curitiba", rec.City)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"risk":null`)
	assert.Contains(t, string(data), `"crop":"Milho"`)
}

func TestReport(t *testing.T) {
	var r Report
	_, ok := r.Latest()
	assert.False(t, ok)

	r.Append(AlertRecord{Crop: "Soja"})
	r.Append(AlertRecord{Crop: "Milho"})

	assert.Equal(t, 2, r.Len())
	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, "Milho", latest.Crop)

	records := r.Records()
	records[0].Crop = "changed"
	assert.Equal(t, "Soja", r.Records()[0].Crop, "Records returns a copy")

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Records())
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Feijão", capitalize("fEIJÃO"))
	assert.Equal(t, "Café", capitalize("café"))
	assert.Equal(t, "", capitalize(""))
}
