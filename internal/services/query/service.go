package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"tourism-system/internal/geodata"
	"tourism-system/internal/services/intent"
)

// Outcome is the terminal state of one query.
type Outcome string

const (
	OutcomeResolved       Outcome = "resolved"
	OutcomeAmbiguous      Outcome = "ambiguous"
	OutcomeNotFound       Outcome = "not_found"
	OutcomePartialFailure Outcome = "partial_failure"
)

// Category names one data source as surfaced to callers.
type Category string

const (
	CategoryGeocoding Category = "geocoding"
	CategoryWeather   Category = "weather"
	CategoryPlaces    Category = "places"
)

// ErrorKind is the abstract failure classification carried per category.
type ErrorKind string

const (
	KindInvalidInput        ErrorKind = "invalid_input"
	KindNotFound            ErrorKind = "not_found"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
)

// Result fully captures the outcome of one query. It is the only object
// the composer sees; no provider-level detail leaks past it. A non-nil
// Place with empty data distinguishes "no data" from "place not found".
type Result struct {
	Outcome   Outcome                   `json:"outcome"`
	PlaceText string                    `json:"place_text"`
	Place     *geodata.PlaceCandidate   `json:"place,omitempty"`
	Weather   *geodata.WeatherSnapshot  `json:"weather,omitempty"`
	Places    []geodata.PointOfInterest `json:"places,omitempty"`
	Errors    map[Category]ErrorKind    `json:"errors,omitempty"`
}

// WeatherRequested reports whether the weather category was dispatched.
func (r *Result) WeatherRequested() bool {
	if _, failed := r.Errors[CategoryWeather]; failed {
		return true
	}
	return r.Weather != nil
}

// PlacesRequested reports whether the places category was dispatched.
func (r *Result) PlacesRequested() bool {
	if _, failed := r.Errors[CategoryPlaces]; failed {
		return true
	}
	return r.Places != nil
}

// GeoResolver resolves a free-text place to ranked candidates.
type GeoResolver interface {
	Resolve(ctx context.Context, placeText string) ([]geodata.PlaceCandidate, error)
}

// WeatherProvider returns current conditions for a coordinate.
type WeatherProvider interface {
	GetWeather(ctx context.Context, lat, lon float64) (*geodata.WeatherSnapshot, error)
}

// PlaceProvider returns nearby points of interest for a coordinate.
type PlaceProvider interface {
	GetAttractions(ctx context.Context, lat, lon float64, limit int) ([]geodata.PointOfInterest, error)
}

// Service coordinates one query: resolve the place, fan out to the
// requested providers, merge partial results. Providers are stateless
// collaborators injected at construction; the service holds no
// per-request state.
type Service struct {
	geo      GeoResolver
	weather  WeatherProvider
	places   PlaceProvider
	poiLimit int
}

func NewService(geo GeoResolver, weather WeatherProvider, places PlaceProvider, poiLimit int) *Service {
	if poiLimit <= 0 || poiLimit > 5 {
		poiLimit = 5
	}
	return &Service{
		geo:      geo,
		weather:  weather,
		places:   places,
		poiLimit: poiLimit,
	}
}

// HandleQuery runs the query pipeline for one intent.
//
// Terminal outcomes: Resolved when every requested provider succeeded,
// Ambiguous when the top geocoding candidate is low confidence (no
// provider is invoked speculatively), NotFound when geocoding resolves
// nothing after the relaxed retry, PartialFailure when geocoding itself
// is unreachable or at least one requested provider failed.
//
// Only an invalid place text returns an error; every provider failure is
// folded into the Result instead.
func (s *Service) HandleQuery(ctx context.Context, it intent.Intent) (*Result, error) {
	placeText := strings.TrimSpace(it.PlaceText)
	if placeText == "" {
		return nil, fmt.Errorf("%w: empty place text", geodata.ErrInvalidInput)
	}

	// At least one category must be dispatched.
	if !it.WantsWeather && !it.WantsPlaces {
		it.WantsWeather = true
		it.WantsPlaces = true
	}

	result := &Result{PlaceText: placeText}

	candidates, err := s.geo.Resolve(ctx, placeText)
	switch {
	case errors.Is(err, geodata.ErrInvalidInput):
		return nil, err
	case errors.Is(err, geodata.ErrNotFound):
		result.Outcome = OutcomeNotFound
		return result, nil
	case err != nil:
		// Cannot proceed without coordinates.
		log.Warn().Str("place", placeText).Err(err).Msg("geocoding unavailable")
		result.Outcome = OutcomePartialFailure
		result.Errors = map[Category]ErrorKind{CategoryGeocoding: KindProviderUnavailable}
		return result, nil
	case len(candidates) == 0:
		result.Outcome = OutcomeNotFound
		return result, nil
	}

	top := candidates[0]
	result.Place = &top

	if top.Confidence == geodata.ConfidenceLow {
		// Best guess carried for caller-side confirmation; weather and
		// places are not fetched for a likely-wrong location.
		result.Outcome = OutcomeAmbiguous
		return result, nil
	}

	var (
		weather    *geodata.WeatherSnapshot
		weatherErr error
		pois       []geodata.PointOfInterest
		poisErr    error
	)

	g, gctx := errgroup.WithContext(ctx)
	if it.WantsWeather {
		g.Go(func() error {
			weather, weatherErr = s.weather.GetWeather(gctx, top.Latitude, top.Longitude)
			return nil
		})
	}
	if it.WantsPlaces {
		g.Go(func() error {
			pois, poisErr = s.places.GetAttractions(gctx, top.Latitude, top.Longitude, s.poiLimit)
			return nil
		})
	}
	_ = g.Wait()

	errs := make(map[Category]ErrorKind)
	if it.WantsWeather {
		if weatherErr != nil {
			log.Warn().Str("place", top.Name).Err(weatherErr).Msg("weather provider failed")
			errs[CategoryWeather] = kindOf(weatherErr)
		} else {
			result.Weather = weather
		}
	}
	if it.WantsPlaces {
		if poisErr != nil {
			log.Warn().Str("place", top.Name).Err(poisErr).Msg("place provider failed")
			errs[CategoryPlaces] = kindOf(poisErr)
		} else {
			if pois == nil {
				pois = []geodata.PointOfInterest{}
			}
			result.Places = pois
		}
	}

	if len(errs) > 0 {
		result.Outcome = OutcomePartialFailure
		result.Errors = errs
	} else {
		result.Outcome = OutcomeResolved
	}
	return result, nil
}

func kindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, geodata.ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, geodata.ErrNotFound):
		return KindNotFound
	default:
		return KindProviderUnavailable
	}
}
