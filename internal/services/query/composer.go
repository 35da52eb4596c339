package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"tourism-system/internal/geodata"
)

// Translator is a pluggable text transform applied to the composed
// response as a final step.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Composer renders a Result into user-facing text. Composition itself is
// a pure function of the Result; translation is post-processing that
// degrades to the source text when the collaborator is unavailable.
type Composer struct {
	translator Translator
}

// NewComposer creates a Composer. translator may be nil to always return
// source-language text.
func NewComposer(translator Translator) *Composer {
	return &Composer{translator: translator}
}

// Compose renders the result, then applies the optional language
// transform. Calling it twice with the same arguments yields identical
// output.
func (c *Composer) Compose(ctx context.Context, r *Result, language string) string {
	text := c.render(r)

	if c.translator == nil || language == "" || language == "en" {
		return text
	}
	translated, err := c.translator.Translate(ctx, text, language)
	if err != nil {
		log.Warn().Str("language", language).Err(err).Msg("translation unavailable, returning source text")
		return text
	}
	return translated
}

func (c *Composer) render(r *Result) string {
	switch r.Outcome {
	case OutcomeNotFound:
		return fmt.Sprintf("I couldn't find a place called %q. Could you check the spelling or provide more details about the location?", r.PlaceText)

	case OutcomeAmbiguous:
		name := r.PlaceText
		if r.Place != nil {
			name = r.Place.DisplayName
		}
		return fmt.Sprintf("I'm not sure I found the right place for %q. Did you mean %s? Please confirm and I'll look it up.", r.PlaceText, name)

	case OutcomeResolved, OutcomePartialFailure:
		if r.Place == nil {
			// Geocoding itself was unreachable.
			return fmt.Sprintf("I couldn't look up %q right now because the location service is unavailable. Please try again later.", r.PlaceText)
		}
		return c.renderData(r)

	default:
		return fmt.Sprintf("I couldn't process the request for %q.", r.PlaceText)
	}
}

// renderData presents every succeeded category normally and appends one
// sentence per failed category, naming the category only.
func (c *Composer) renderData(r *Result) string {
	place := r.Place.Name
	if place == "" {
		place = r.PlaceText
	}

	var parts []string

	if r.Weather != nil {
		parts = append(parts, weatherLine(place, r.Weather))
	}
	if r.Places != nil {
		parts = append(parts, placesLines(place, r.Places))
	}
	if _, failed := r.Errors[CategoryWeather]; failed {
		parts = append(parts, fmt.Sprintf("I couldn't retrieve the weather for %s right now.", place))
	}
	if _, failed := r.Errors[CategoryPlaces]; failed {
		parts = append(parts, fmt.Sprintf("I couldn't retrieve tourist attractions for %s right now.", place))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("I found %s, but couldn't retrieve any information. Please try again.", place)
	}
	return strings.Join(parts, "\n")
}

func weatherLine(place string, w *geodata.WeatherSnapshot) string {
	var b strings.Builder
	if w.PrecipitationChance != nil {
		fmt.Fprintf(&b, "In %s it's currently %.1f°C (%s) with a chance of %.0f%% to rain.",
			place, w.TemperatureC, w.ConditionText, *w.PrecipitationChance)
	} else {
		fmt.Fprintf(&b, "In %s it's currently %.1f°C (%s).", place, w.TemperatureC, w.ConditionText)
	}
	for _, day := range w.Forecast {
		fmt.Fprintf(&b, "\n%s: %.0f°C / %.0f°C, %s.", day.Day, day.HighC, day.LowC, day.Condition)
	}
	return b.String()
}

func placesLines(place string, pois []geodata.PointOfInterest) string {
	if len(pois) == 0 {
		return fmt.Sprintf("In %s these are the places you can go:\n(No tourist attractions found nearby)", place)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "In %s these are the places you can go:", place)
	for _, poi := range pois {
		fmt.Fprintf(&b, "\n- %s (%s, %.1f km away)", poi.Name, poi.Category, poi.DistanceMeters/1000)
	}
	return b.String()
}
