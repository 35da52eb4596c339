package llm

import (
	"context"
	"errors"
)

// PlaceIntent is the structured output the language model must produce
// for a travel query. It is validated before anything trusts it.
type PlaceIntent struct {
	Place        string `json:"place"`
	WantsWeather bool   `json:"wants_weather"`
	WantsPlaces  bool   `json:"wants_places"`
}

// ErrNoPlace is returned when the model reports that the input mentions
// no place at all.
var ErrNoPlace = errors.New("no place mentioned in input")

// Client extracts a place reference and requested data categories from
// free-form user text.
type Client interface {
	ExtractPlaceIntent(ctx context.Context, userText string) (*PlaceIntent, error)
}
