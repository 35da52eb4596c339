package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tourism-system/internal/geodata"
)

const defaultBaseURL = "https://nominatim.openstreetmap.org/search"

// maxResults bounds how many candidates a single lookup may return.
const maxResults = 5

// Place types Nominatim may return for matches that are usually not what
// a traveller meant when naming a city. A top candidate of one of these
// types gets low confidence so the caller can ask for confirmation.
var alternateTypes = map[string]struct{}{
	"neighbourhood":     {},
	"suburb":            {},
	"quarter":           {},
	"hamlet":            {},
	"locality":          {},
	"isolated_dwelling": {},
}

// Client resolves free-text place names against the Nominatim search API.
// It is stateless; one instance can serve concurrent requests.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a Nominatim client. baseURL may be empty to use the
// public endpoint; Nominatim's usage policy requires a descriptive
// User-Agent, so userAgent must not be empty.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Resolve geocodes placeText to a ranked list of candidates, best first.
// If the first lookup yields nothing, one relaxed retry (qualifiers
// dropped, diacritics folded) is made before giving up with ErrNotFound.
// Transport failures surface as ErrUnavailable, never as an empty list.
func (c *Client) Resolve(ctx context.Context, placeText string) ([]geodata.PlaceCandidate, error) {
	query := strings.TrimSpace(placeText)
	if query == "" {
		return nil, fmt.Errorf("%w: empty place text", geodata.ErrInvalidInput)
	}

	results, err := c.search(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		relaxed := relaxQuery(query)
		if relaxed != query {
			log.Debug().Str("query", query).Str("relaxed", relaxed).Msg("retrying geocode with relaxed query")
		}
		results, err = c.search(ctx, relaxed)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("%w: %q", geodata.ErrNotFound, placeText)
		}
	}

	candidates := make([]geodata.PlaceCandidate, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lon, lonErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		candidates = append(candidates, geodata.PlaceCandidate{
			Name:        r.Name,
			DisplayName: r.DisplayName,
			Country:     r.Address.Country,
			PlaceType:   r.Type,
			Latitude:    lat,
			Longitude:   lon,
			Confidence:  classify(query, r),
		})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: unparseable coordinates", geodata.ErrUnavailable)
	}
	return candidates, nil
}

func (c *Client) search(ctx context.Context, query string) ([]searchResult, error) {
	params := url.Values{
		"q":              {query},
		"format":         {"jsonv2"},
		"limit":          {strconv.Itoa(maxResults)},
		"addressdetails": {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: nominatim request: %v", geodata.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: nominatim status %d", geodata.ErrUnavailable, resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: decode nominatim response: %v", geodata.ErrUnavailable, err)
	}
	return results, nil
}

// classify decides match confidence: low when the core token of the
// returned display name does not contain the query's core token, or when
// the match is an alternate place type.
func classify(query string, r searchResult) geodata.Confidence {
	if _, ok := alternateTypes[strings.ToLower(r.Type)]; ok {
		return geodata.ConfidenceLow
	}

	core := r.Name
	if core == "" {
		core = r.DisplayName
		if i := strings.Index(core, ","); i >= 0 {
			core = core[:i]
		}
	}
	queryCore := query
	if i := strings.Index(queryCore, ","); i >= 0 {
		queryCore = queryCore[:i]
	}
	queryCore = strings.TrimSpace(queryCore)

	if strings.Contains(foldToLower(core), foldToLower(queryCore)) {
		return geodata.ConfidenceHigh
	}
	return geodata.ConfidenceLow
}

// relaxQuery drops comma-separated qualifiers and folds diacritics, the
// two sources of lookup noise a traveller most commonly introduces.
func relaxQuery(query string) string {
	if i := strings.Index(query, ","); i >= 0 {
		query = query[:i]
	}
	return strings.TrimSpace(stripDiacritics(query))
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}

func foldToLower(s string) string {
	return strings.ToLower(stripDiacritics(s))
}

// Nominatim /search response, reduced to the fields used.

type searchResult struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		Country string `json:"country"`
	} `json:"address"`
}
