package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourism-system/internal/geodata"
	"tourism-system/internal/services/intent"
)

// --- mock providers ---

type mockGeo struct {
	candidates []geodata.PlaceCandidate
	err        error
	calls      int
}

func (m *mockGeo) Resolve(_ context.Context, _ string) ([]geodata.PlaceCandidate, error) {
	m.calls++
	return m.candidates, m.err
}

type mockWeather struct {
	snapshot *geodata.WeatherSnapshot
	err      error
	calls    int
}

func (m *mockWeather) GetWeather(_ context.Context, _, _ float64) (*geodata.WeatherSnapshot, error) {
	m.calls++
	return m.snapshot, m.err
}

type mockPlaces struct {
	pois  []geodata.PointOfInterest
	err   error
	calls int
}

func (m *mockPlaces) GetAttractions(_ context.Context, _, _ float64, _ int) ([]geodata.PointOfInterest, error) {
	m.calls++
	return m.pois, m.err
}

func highCandidate() geodata.PlaceCandidate {
	return geodata.PlaceCandidate{
		Name:        "Bangalore",
		DisplayName: "Bangalore, Karnataka, India",
		Country:     "India",
		PlaceType:   "city",
		Latitude:    12.9716,
		Longitude:   77.5946,
		Confidence:  geodata.ConfidenceHigh,
	}
}

func sampleWeather() *geodata.WeatherSnapshot {
	chance := 35.0
	return &geodata.WeatherSnapshot{
		TemperatureC:        24.5,
		ConditionText:       "rain",
		PrecipitationChance: &chance,
	}
}

func samplePOIs() []geodata.PointOfInterest {
	return []geodata.PointOfInterest{
		{Name: "Lalbagh Botanical Garden", Category: "garden", DistanceMeters: 1200},
		{Name: "Bangalore Palace", Category: "castle", DistanceMeters: 4300},
	}
}

func bothIntent() intent.Intent {
	return intent.Intent{PlaceText: "Bangalore", WantsWeather: true, WantsPlaces: true}
}

// --- tests ---

func TestHandleQuery_Resolved(t *testing.T) {
	geo := &mockGeo{candidates: []geodata.PlaceCandidate{highCandidate()}}
	weather := &mockWeather{snapshot: sampleWeather()}
	places := &mockPlaces{pois: samplePOIs()}
	svc := NewService(geo, weather, places, 5)

	result, err := svc.HandleQuery(context.Background(), bothIntent())

	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, result.Outcome)
	require.NotNil(t, result.Place)
	assert.Equal(t, "Bangalore", result.Place.Name)
	assert.NotNil(t, result.Weather)
	assert.Len(t, result.Places, 2)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, weather.calls)
	assert.Equal(t, 1, places.calls)
}

func TestHandleQuery_EmptyPlaceTextIsInvalidInput(t *testing.T) {
	geo := &mockGeo{}
	svc := NewService(geo, &mockWeather{}, &mockPlaces{}, 5)

	_, err := svc.HandleQuery(context.Background(), intent.Intent{PlaceText: "  "})

	assert.ErrorIs(t, err, geodata.ErrInvalidInput)
	assert.Equal(t, 0, geo.calls)
}

func TestHandleQuery_NotFound(t *testing.T) {
	geo := &mockGeo{err: fmt.Errorf("%w: %q", geodata.ErrNotFound, "Xyzzqplace123")}
	weather := &mockWeather{}
	places := &mockPlaces{}
	svc := NewService(geo, weather, places, 5)

	result, err := svc.HandleQuery(context.Background(), intent.Intent{
		PlaceText: "Xyzzqplace123", WantsWeather: true, WantsPlaces: true,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeNotFound, result.Outcome)
	assert.Nil(t, result.Place)
	assert.Nil(t, result.Weather)
	assert.Nil(t, result.Places)
	assert.Equal(t, 0, weather.calls)
	assert.Equal(t, 0, places.calls)
}

func TestHandleQuery_GeocodingUnavailableIsPartialFailure(t *testing.T) {
	geo := &mockGeo{err: fmt.Errorf("%w: timeout", geodata.ErrUnavailable)}
	svc := NewService(geo, &mockWeather{}, &mockPlaces{}, 5)

	result, err := svc.HandleQuery(context.Background(), bothIntent())

	require.NoError(t, err)
	assert.Equal(t, OutcomePartialFailure, result.Outcome)
	assert.Nil(t, result.Place)
	assert.Equal(t, map[Category]ErrorKind{CategoryGeocoding: KindProviderUnavailable}, result.Errors)
}

func TestHandleQuery_LowConfidenceIsAmbiguousWithoutDispatch(t *testing.T) {
	low := highCandidate()
	low.Confidence = geodata.ConfidenceLow
	geo := &mockGeo{candidates: []geodata.PlaceCandidate{low}}
	weather := &mockWeather{snapshot: sampleWeather()}
	places := &mockPlaces{pois: samplePOIs()}
	svc := NewService(geo, weather, places, 5)

	result, err := svc.HandleQuery(context.Background(), bothIntent())

	require.NoError(t, err)
	assert.Equal(t, OutcomeAmbiguous, result.Outcome)
	require.NotNil(t, result.Place, "best guess carried for confirmation")
	assert.Equal(t, 0, weather.calls, "no speculative weather fetch")
	assert.Equal(t, 0, places.calls, "no speculative places fetch")
}

func TestHandleQuery_WeatherFailsPlacesSucceed(t *testing.T) {
	geo := &mockGeo{candidates: []geodata.PlaceCandidate{highCandidate()}}
	weather := &mockWeather{err: fmt.Errorf("%w: status 502", geodata.ErrUnavailable)}
	places := &mockPlaces{pois: samplePOIs()}
	svc := NewService(geo, weather, places, 5)

	result, err := svc.HandleQuery(context.Background(), bothIntent())

	require.NoError(t, err)
	assert.Equal(t, OutcomePartialFailure, result.Outcome)
	assert.Len(t, result.Places, 2, "succeeded category is never discarded")
	assert.Nil(t, result.Weather)
	assert.Equal(t, map[Category]ErrorKind{CategoryWeather: KindProviderUnavailable}, result.Errors)
}

func TestHandleQuery_AllRequestedProvidersFail(t *testing.T) {
	geo := &mockGeo{candidates: []geodata.PlaceCandidate{highCandidate()}}
	weather := &mockWeather{err: fmt.Errorf("%w", geodata.ErrUnavailable)}
	places := &mockPlaces{err: fmt.Errorf("%w", geodata.ErrUnavailable)}
	svc := NewService(geo, weather, places, 5)

	result, err := svc.HandleQuery(context.Background(), bothIntent())

	require.NoError(t, err)
	assert.Equal(t, OutcomePartialFailure, result.Outcome)
	assert.NotNil(t, result.Place, "place stays populated so callers can tell this from not-found")
	assert.Equal(t, map[Category]ErrorKind{
		CategoryWeather: KindProviderUnavailable,
		CategoryPlaces:  KindProviderUnavailable,
	}, result.Errors)
}

func TestHandleQuery_UnrequestedCategoryIsAbsentNotError(t *testing.T) {
	geo := &mockGeo{candidates: []geodata.PlaceCandidate{highCandidate()}}
	weather := &mockWeather{snapshot: sampleWeather()}
	places := &mockPlaces{pois: samplePOIs()}
	svc := NewService(geo, weather, places, 5)

	result, err := svc.HandleQuery(context.Background(), intent.Intent{
		PlaceText: "Bangalore", WantsWeather: true,
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, result.Outcome)
	assert.NotNil(t, result.Weather)
	assert.Nil(t, result.Places)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, places.calls)
	assert.False(t, result.PlacesRequested())
	assert.True(t, result.WeatherRequested())
}

func TestHandleQuery_NoCategoryDefaultsToBoth(t *testing.T) {
	geo := &mockGeo{candidates: []geodata.PlaceCandidate{highCandidate()}}
	weather := &mockWeather{snapshot: sampleWeather()}
	places := &mockPlaces{pois: samplePOIs()}
	svc := NewService(geo, weather, places, 5)

	result, err := svc.HandleQuery(context.Background(), intent.Intent{PlaceText: "Bangalore"})

	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, result.Outcome)
	assert.Equal(t, 1, weather.calls)
	assert.Equal(t, 1, places.calls)
}

func TestHandleQuery_EmptyPOIListIsResolved(t *testing.T) {
	geo := &mockGeo{candidates: []geodata.PlaceCandidate{highCandidate()}}
	places := &mockPlaces{pois: nil}
	svc := NewService(geo, &mockWeather{snapshot: sampleWeather()}, places, 5)

	result, err := svc.HandleQuery(context.Background(), bothIntent())

	require.NoError(t, err)
	assert.Equal(t, OutcomeResolved, result.Outcome)
	require.NotNil(t, result.Places, "empty but requested, distinguishable from unrequested")
	assert.Empty(t, result.Places)
	assert.True(t, result.PlacesRequested())
}
