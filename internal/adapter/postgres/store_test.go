package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/pest-risk/internal/domain"
)

func TestAlertArgs(t *testing.T) {
	recorded := time.Date(2024, time.March, 12, 14, 30, 0, 0, time.UTC)
	high := domain.TierHigh
	rec := domain.AlertRecord{
		Crop:           "Soja",
		City:           "Londrina",
		Date:           recorded,
		Temperature:    32.46,
		Humidity:       75,
		Risk:           &high,
		Recommendation: "spray",
	}

	args := alertArgs(rec)

	require.Len(t, args, 7)
	assert.Equal(t, "Soja", args[0])
	assert.InDelta(t, 32.46, args[1], 0.0001)
	assert.InDelta(t, 75.0, args[2], 0.0001)
	require.IsType(t, (*string)(nil), args[3])
	assert.Equal(t, "alto", *args[3].(*string))
	assert.Equal(t, "spray", args[4])
	assert.Equal(t, recorded, args[5])
	assert.Equal(t, "Londrina", args[6])
}

func TestAlertArgs_UnknownTierIsNull(t *testing.T) {
	args := alertArgs(domain.AlertRecord{Crop: "Milho", Recommendation: domain.FallbackRecommendation})

	assert.Nil(t, args[3].(*string))
	assert.Equal(t, domain.FallbackRecommendation, args[4])
}

func TestStoreWrite_EmptyIsNoop(t *testing.T) {
	// A zero Store has no pool; an empty batch must return before touching it.
	var s Store
	assert.NoError(t, s.Write(context.Background(), nil))
	assert.Equal(t, "postgres", s.Name())
}
