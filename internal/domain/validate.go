package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrEmptyInput      = errors.New("empty input")
	ErrUnknownCrop     = errors.New("unknown crop")
	ErrInvalidCityName = errors.New("invalid city name")
)

// ValidInput is a crop and city that passed validation.
type ValidInput struct {
	Crop CropProfile
	City string
}

// Validate checks the crop against the catalog and the city shape. The crop
// is checked first; a bad crop is reported even if the city is also bad.
func Validate(c *Catalog, cropInput, cityInput string) (ValidInput, error) {
	crop, err := ValidateCrop(c, cropInput)
	if err != nil {
		return ValidInput{}, err
	}
	city, err := ValidateCity(cityInput)
	if err != nil {
		return ValidInput{}, err
	}
	return ValidInput{Crop: crop, City: city}, nil
}

// ValidateCrop resolves a crop name against the catalog.
func ValidateCrop(c *Catalog, input string) (CropProfile, error) {
	name := strings.TrimSpace(input)
	if name == "" {
		return CropProfile{}, ErrEmptyInput
	}
	p, ok := c.Lookup(name)
	if !ok {
		return CropProfile{}, fmt.Errorf("%w: %q", ErrUnknownCrop, name)
	}
	return p, nil
}

// ValidateCity trims the city and requires that, with spaces removed, it is
// made only of letters. Accented letters are allowed.
func ValidateCity(input string) (string, error) {
	city := strings.TrimSpace(input)
	compact := strings.ReplaceAll(city, " ", "")
	if compact == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidCityName, input)
	}
	for _, r := range compact {
		if !unicode.IsLetter(r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidCityName, city)
		}
	}
	return city, nil
}
