package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/airquality-advisor/internal/domain/airquality"
)

const (
	defaultGeocodeURL   = "http://api.openweathermap.org/geo/1.0/direct"
	defaultPollutionURL = "http://api.openweathermap.org/data/2.5/air_pollution"
)

// Client talks to the OpenWeather geocoding and air pollution APIs.
type Client struct {
	apiKey       string
	geocodeURL   string
	pollutionURL string
	httpClient   *http.Client
}

// NewClient builds an API client. Blank URLs fall back to the public endpoints.
func NewClient(apiKey, geocodeURL, pollutionURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openweather api key cannot be empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:       apiKey,
		geocodeURL:   strings.TrimRight(orDefault(geocodeURL, defaultGeocodeURL), "/"),
		pollutionURL: strings.TrimRight(orDefault(pollutionURL, defaultPollutionURL), "/"),
		httpClient:   &http.Client{Timeout: timeout},
	}, nil
}

// Geocode returns up to limit locations matching the query.
func (c *Client) Geocode(ctx context.Context, query string, limit int) ([]airquality.Location, error) {
	if limit <= 0 {
		limit = 1
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("appid", c.apiKey)

	body, err := c.get(ctx, c.geocodeURL, params)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}

	var raw []geoRecord
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	locations := make([]airquality.Location, 0, len(raw))
	for _, rec := range raw {
		locations = append(locations, airquality.Location{
			Name:    rec.Name,
			State:   rec.State,
			Country: rec.Country,
			Coordinates: airquality.Coordinates{
				Latitude:  rec.Lat,
				Longitude: rec.Lon,
			},
		})
	}
	return locations, nil
}

// CurrentPollution fetches the latest air pollution reading for the coordinates.
func (c *Client) CurrentPollution(ctx context.Context, coords airquality.Coordinates) (airquality.PollutantReading, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	params.Set("appid", c.apiKey)

	body, err := c.get(ctx, c.pollutionURL, params)
	if err != nil {
		return airquality.PollutantReading{}, fmt.Errorf("air pollution: %w", err)
	}

	var raw pollutionResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return airquality.PollutantReading{}, fmt.Errorf("decode air pollution response: %w", err)
	}
	if len(raw.List) == 0 {
		return airquality.PollutantReading{}, errors.New("air pollution response has no entries")
	}
	return normalizeEntry(raw.List[0]), nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("request error: status=%d body=%s", resp.StatusCode, string(payload))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

type geoRecord struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

type pollutionResponse struct {
	List []pollutionEntry `json:"list"`
}

type pollutionEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		AQI int `json:"aqi"`
	} `json:"main"`
	Components struct {
		CO   float64 `json:"co"`
		NO   float64 `json:"no"`
		NO2  float64 `json:"no2"`
		O3   float64 `json:"o3"`
		SO2  float64 `json:"so2"`
		PM25 float64 `json:"pm2_5"`
		PM10 float64 `json:"pm10"`
		NH3  float64 `json:"nh3"`
	} `json:"components"`
}

func normalizeEntry(entry pollutionEntry) airquality.PollutantReading {
	reading := airquality.PollutantReading{
		AQI:  entry.Main.AQI,
		CO:   entry.Components.CO,
		NO:   entry.Components.NO,
		NO2:  entry.Components.NO2,
		O3:   entry.Components.O3,
		SO2:  entry.Components.SO2,
		PM25: entry.Components.PM25,
		PM10: entry.Components.PM10,
		NH3:  entry.Components.NH3,
	}
	if entry.Dt > 0 {
		reading.MeasuredAt = time.Unix(entry.Dt, 0).UTC()
	}
	return reading
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}
