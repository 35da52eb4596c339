package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"tourism-system/internal/geodata"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const forecastDays = 3

// Client fetches current conditions and a short forecast from Open-Meteo.
// No API key is required. The client never retries; the orchestrator
// reports a failed weather call immediately as a partial result.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetWeather returns a snapshot for the given coordinate. Out-of-range
// coordinates fail with ErrInvalidInput before any network call; a
// malformed response body is the provider's fault and surfaces as
// ErrUnavailable.
func (c *Client) GetWeather(ctx context.Context, lat, lon float64) (*geodata.WeatherSnapshot, error) {
	if !geodata.ValidCoordinate(lat, lon) {
		return nil, fmt.Errorf("%w: coordinate out of range (%f, %f)", geodata.ErrInvalidInput, lat, lon)
	}

	params := url.Values{
		"latitude":      {strconv.FormatFloat(lat, 'f', 6, 64)},
		"longitude":     {strconv.FormatFloat(lon, 'f', 6, 64)},
		"current":       {"temperature_2m,precipitation_probability,weather_code"},
		"daily":         {"temperature_2m_max,temperature_2m_min,weather_code"},
		"forecast_days": {strconv.Itoa(forecastDays)},
		"timezone":      {"auto"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: open-meteo request: %v", geodata.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: open-meteo status %d", geodata.ErrUnavailable, resp.StatusCode)
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode open-meteo response: %v", geodata.ErrUnavailable, err)
	}
	if decoded.Current == nil {
		return nil, fmt.Errorf("%w: open-meteo response missing current block", geodata.ErrUnavailable)
	}

	snapshot := &geodata.WeatherSnapshot{
		TemperatureC:        decoded.Current.Temperature,
		ConditionText:       conditionText(decoded.Current.WeatherCode),
		PrecipitationChance: decoded.Current.PrecipitationProbability,
	}

	for i, day := range decoded.Daily.Time {
		if i >= len(decoded.Daily.TemperatureMax) || i >= len(decoded.Daily.TemperatureMin) {
			break
		}
		condition := ""
		if i < len(decoded.Daily.WeatherCode) {
			condition = conditionText(decoded.Daily.WeatherCode[i])
		}
		snapshot.Forecast = append(snapshot.Forecast, geodata.ForecastDay{
			Day:       day,
			HighC:     decoded.Daily.TemperatureMax[i],
			LowC:      decoded.Daily.TemperatureMin[i],
			Condition: condition,
		})
	}

	return snapshot, nil
}

// conditionText maps WMO weather interpretation codes to a short phrase.
func conditionText(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 2:
		return "partly cloudy"
	case code == 3:
		return "overcast"
	case code == 45 || code == 48:
		return "foggy"
	case code >= 51 && code <= 57:
		return "drizzle"
	case code >= 61 && code <= 67:
		return "rain"
	case code >= 71 && code <= 77:
		return "snow"
	case code >= 80 && code <= 82:
		return "rain showers"
	case code == 85 || code == 86:
		return "snow showers"
	case code >= 95:
		return "thunderstorm"
	default:
		return "unknown conditions"
	}
}

// Open-Meteo /v1/forecast response, reduced to the fields used.

type forecastResponse struct {
	Current *struct {
		Temperature              float64  `json:"temperature_2m"`
		PrecipitationProbability *float64 `json:"precipitation_probability"`
		WeatherCode              int      `json:"weather_code"`
	} `json:"current"`
	Daily struct {
		Time           []string  `json:"time"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
		WeatherCode    []int     `json:"weather_code"`
	} `json:"daily"`
}
