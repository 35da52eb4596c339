package geodata

// Confidence signals how well a geocoding match fits the original query.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// PlaceCandidate is a single geocoding match. Immutable once created.
type PlaceCandidate struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"display_name"`
	Country     string     `json:"country,omitempty"`
	PlaceType   string     `json:"place_type,omitempty"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Confidence  Confidence `json:"confidence"`
}

// WeatherSnapshot holds current conditions plus a short daily forecast.
// Fetched fresh per query, never cached.
type WeatherSnapshot struct {
	TemperatureC        float64       `json:"temperature_c"`
	ConditionText       string        `json:"condition"`
	PrecipitationChance *float64      `json:"precipitation_chance,omitempty"`
	Forecast            []ForecastDay `json:"forecast,omitempty"`
}

// ForecastDay is one day of the forecast window.
type ForecastDay struct {
	Day       string  `json:"day"`
	HighC     float64 `json:"high_c"`
	LowC      float64 `json:"low_c"`
	Condition string  `json:"condition"`
}

// PointOfInterest is a named attraction near the query coordinate.
// DistanceMeters is computed by this system, not taken from provider order.
type PointOfInterest struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	DistanceMeters float64 `json:"distance_meters"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}
