package intent

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"tourism-system/internal/services/llm"
)

// Intent is what the rest of the pipeline dispatches on: a place
// reference plus the requested data categories.
type Intent struct {
	PlaceText    string
	WantsWeather bool
	WantsPlaces  bool
}

// Extractor turns free-form user text into an Intent. A language-model
// collaborator is optional; when it is absent or fails, a deterministic
// keyword rule takes over so extraction never fails the whole query.
type Extractor struct {
	llm llm.Client
}

// NewExtractor creates an Extractor. client may be nil to run on the
// keyword fallback alone.
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{llm: client}
}

var weatherKeywords = []string{
	"weather", "temperature", "rain", "forecast", "hot", "cold", "sunny", "snow",
}

var placesKeywords = []string{
	"places", "visit", "attractions", "attraction", "tourist", "sights", "see", "go", "trip",
}

// Trigger and filler words removed when recovering a place name from raw
// text in fallback mode.
var triggerWords = map[string]struct{}{
	"what": {}, "whats": {}, "what's": {}, "is": {}, "are": {}, "the": {}, "a": {}, "an": {},
	"in": {}, "at": {}, "for": {}, "of": {}, "to": {}, "me": {}, "my": {}, "i": {},
	"weather": {}, "temperature": {}, "rain": {}, "forecast": {}, "like": {},
	"places": {}, "place": {}, "visit": {}, "attractions": {}, "attraction": {},
	"tourist": {}, "sights": {}, "see": {}, "go": {}, "can": {}, "should": {},
	"want": {}, "plan": {}, "trip": {}, "there": {}, "and": {}, "tell": {}, "about": {},
	"show": {}, "near": {}, "how": {}, "it": {}, "please": {}, "will": {}, "would": {},
	"does": {}, "do": {},
}

// Extract produces an Intent for userText. It always succeeds: when the
// model is unavailable or returns something invalid, the fallback rule
// treats the trimmed input minus trigger words as the place.
func (e *Extractor) Extract(ctx context.Context, userText string) Intent {
	trimmed := strings.TrimSpace(userText)

	if e.llm != nil {
		extracted, err := e.llm.ExtractPlaceIntent(ctx, trimmed)
		if err == nil {
			return Intent{
				PlaceText:    extracted.Place,
				WantsWeather: extracted.WantsWeather,
				WantsPlaces:  extracted.WantsPlaces,
			}
		}
		log.Warn().Err(err).Msg("llm extraction unavailable, using keyword fallback")
	}

	return fallbackExtract(trimmed)
}

// fallbackExtract is the deterministic rule used without a model. The
// categories default to both when no keyword matches, so the intent is
// always dispatchable.
func fallbackExtract(text string) Intent {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[strings.Trim(w, ".,!?;:\"'")] = struct{}{}
	}

	it := Intent{
		WantsWeather: containsAny(words, weatherKeywords),
		WantsPlaces:  containsAny(words, placesKeywords),
	}
	if !it.WantsWeather && !it.WantsPlaces {
		it.WantsWeather = true
		it.WantsPlaces = true
	}

	var kept []string
	for _, word := range strings.Fields(text) {
		key := strings.ToLower(strings.Trim(word, ".,!?;:\"'"))
		if _, skip := triggerWords[key]; skip || key == "" {
			continue
		}
		kept = append(kept, strings.Trim(word, ".,!?;:\"'"))
	}
	it.PlaceText = strings.Join(kept, " ")
	if it.PlaceText == "" {
		it.PlaceText = text
	}
	return it
}

func containsAny(words map[string]struct{}, keywords []string) bool {
	for _, kw := range keywords {
		if _, ok := words[kw]; ok {
			return true
		}
	}
	return false
}
