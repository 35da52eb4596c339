package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"tourism-system/internal/geodata"
)

const defaultBaseURL = "https://overpass-api.de/api/interpreter"

// Attractions are searched within a fixed radius of the query coordinate.
const searchRadiusMeters = 10000

// MaxAttractions caps how many points of interest one query may return.
const MaxAttractions = 5

// Client queries OpenStreetMap tourist attractions through the Overpass
// API. Distances are computed here, not taken from provider ordering.
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

// GetAttractions returns up to limit named tourism POIs around the
// coordinate, strictly ascending by distance. An empty list is a valid
// outcome; only transport/decoding problems produce ErrUnavailable.
// Truncation happens after sorting, so a closer POI is never dropped in
// favor of one the provider happened to return first.
func (c *Client) GetAttractions(ctx context.Context, lat, lon float64, limit int) ([]geodata.PointOfInterest, error) {
	if !geodata.ValidCoordinate(lat, lon) {
		return nil, fmt.Errorf("%w: coordinate out of range (%f, %f)", geodata.ErrInvalidInput, lat, lon)
	}
	if limit <= 0 || limit > MaxAttractions {
		limit = MaxAttractions
	}

	query := fmt.Sprintf(`[out:json][timeout:25];
(
  node["tourism"]["name"](around:%d,%f,%f);
  way["tourism"]["name"](around:%d,%f,%f);
);
out center 100;`, searchRadiusMeters, lat, lon, searchRadiusMeters, lat, lon)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: overpass request: %v", geodata.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: overpass status %d", geodata.ErrUnavailable, resp.StatusCode)
	}

	var decoded overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode overpass response: %v", geodata.ErrUnavailable, err)
	}

	pois := make([]geodata.PointOfInterest, 0, len(decoded.Elements))
	seen := make(map[string]struct{})
	for _, el := range decoded.Elements {
		name := elementName(el.Tags)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}

		elLat, elLon, ok := el.coordinate()
		if !ok {
			continue
		}

		category := el.Tags["tourism"]
		if category == "" {
			category = "attraction"
		}

		seen[name] = struct{}{}
		pois = append(pois, geodata.PointOfInterest{
			Name:           name,
			Category:       category,
			DistanceMeters: geodata.HaversineMeters(lat, lon, elLat, elLon),
			Latitude:       elLat,
			Longitude:      elLon,
		})
	}

	// Stable so ties keep the provider's natural return order.
	sort.SliceStable(pois, func(i, j int) bool {
		return pois[i].DistanceMeters < pois[j].DistanceMeters
	})
	if len(pois) > limit {
		pois = pois[:limit]
	}
	return pois, nil
}

func elementName(tags map[string]string) string {
	for _, key := range []string{"name", "name:en", "name:en-GB"} {
		if v := tags[key]; v != "" {
			return v
		}
	}
	return ""
}

// Overpass interpreter response, reduced to the fields used.

type overpassResponse struct {
	Elements []element `json:"elements"`
}

type element struct {
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"center"`
	Tags map[string]string `json:"tags"`
}

// coordinate returns the element position: nodes carry lat/lon directly,
// ways only a computed center.
func (e element) coordinate() (lat, lon float64, ok bool) {
	if e.Lat != 0 || e.Lon != 0 {
		return e.Lat, e.Lon, true
	}
	if e.Center != nil {
		return e.Center.Lat, e.Center.Lon, true
	}
	return 0, 0, false
}
