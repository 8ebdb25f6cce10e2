package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sandevgo/carebot/internal/config"
	"github.com/sandevgo/carebot/pkg/retry"
)

const geocodeEndpoint = "https://maps.googleapis.com/maps/api/geocode/json"

// Location is a resolved street address.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ErrNoResults is returned when the geocoding API recognizes the
// request but finds nothing for the address.
type ErrNoResults struct {
	Address string
}

func (e *ErrNoResults) Error() string {
	return fmt.Sprintf("no geocoding results for address %q", e.Address)
}

// Geocoder resolves addresses through the Google Maps Geocoding API.
// Lookups are idempotent, so transient failures are retried with
// backoff.
type Geocoder struct {
	client  *http.Client
	apiKey  string
	retrier *retry.Retrier
	baseURL string
}

func NewGeocoder(cfg *config.MapsConfig) *Geocoder {
	return &Geocoder{
		client:  &http.Client{Timeout: 10 * time.Second},
		apiKey:  cfg.APIKey,
		retrier: retry.NewDefaultRetrier(),
		baseURL: geocodeEndpoint,
	}
}

func (g *Geocoder) Geocode(ctx context.Context, address string) (Location, error) {
	var loc Location

	err := g.retrier.Do(ctx, func() error {
		var opErr error
		loc, opErr = g.geocodeOnce(ctx, address)
		// Empty result sets are authoritative, retrying will not
		// conjure a match.
		var noResults *ErrNoResults
		if errors.As(opErr, &noResults) {
			return nil
		}
		return opErr
	})
	if err != nil {
		return Location{}, err
	}
	if loc == (Location{}) {
		return Location{}, &ErrNoResults{Address: address}
	}
	return loc, nil
}

func (g *Geocoder) geocodeOnce(ctx context.Context, address string) (Location, error) {
	query := url.Values{}
	query.Set("address", address)
	query.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return Location{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Location{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return Location{}, fmt.Errorf("decode: %w", err)
	}

	if result.Status == "ZERO_RESULTS" || len(result.Results) == 0 {
		return Location{}, &ErrNoResults{Address: address}
	}
	if result.Status != "OK" {
		return Location{}, fmt.Errorf("geocode status %s", result.Status)
	}

	return Location{
		Address:   address,
		Latitude:  result.Results[0].Geometry.Location.Lat,
		Longitude: result.Results[0].Geometry.Location.Lng,
	}, nil
}
