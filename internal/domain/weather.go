package domain

import "context"

// WeatherProvider reports current conditions for a city.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (Reading, error)
}
