//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/couchcryptid/pest-risk/internal/domain"
)

func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pest"),
		tcpostgres.WithUsername("pest"),
		tcpostgres.WithPassword("pest"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

func TestStore_WriteThenReadBack(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s, err := NewStore(ctx, startPostgres(ctx, t))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx), "schema creation is idempotent")

	recorded := time.Date(2024, time.March, 12, 14, 30, 0, 0, time.UTC)
	high := domain.TierHigh
	low := domain.TierLow
	records := []domain.AlertRecord{
		{Crop: "Soja", City: "Londrina", Date: recorded, Temperature: 32, Humidity: 75, Risk: &high, Recommendation: "spray"},
		{Crop: "Milho", City: "Curitiba", Date: recorded.Add(time.Minute), Temperature: 10, Humidity: 20, Recommendation: domain.FallbackRecommendation},
		{Crop: "Trigo", City: "Cascavel", Date: recorded.Add(2 * time.Minute), Temperature: 18.5, Humidity: 55, Risk: &low, Recommendation: "monitor"},
	}
	require.NoError(t, s.Write(ctx, records))
	require.NoError(t, s.Ping(ctx))

	rows, err := s.pool.Query(ctx,
		`SELECT crop, temperature, humidity, risk, recommendation, recorded_at, city FROM pest_alerts ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()

	type row struct {
		crop, recommendation, city string
		temperature, humidity      float64
		risk                       *string
		recordedAt                 time.Time
	}
	var got []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.crop, &r.temperature, &r.humidity, &r.risk, &r.recommendation, &r.recordedAt, &r.city))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, len(records))

	for i, rec := range records {
		assert.Equal(t, rec.Crop, got[i].crop)
		assert.Equal(t, rec.City, got[i].city)
		assert.InDelta(t, rec.Temperature, got[i].temperature, 0.01)
		assert.InDelta(t, rec.Humidity, got[i].humidity, 0.01)
		assert.Equal(t, rec.Recommendation, got[i].recommendation)
		assert.True(t, rec.Date.Equal(got[i].recordedAt), "recorded_at %v", got[i].recordedAt)
	}
	assert.Nil(t, got[1].risk, "unknown tier stored as NULL")
	require.NotNil(t, got[0].risk)
	assert.Equal(t, string(high), *got[0].risk)
	require.NotNil(t, got[2].risk)
	assert.Equal(t, string(low), *got[2].risk)
}
