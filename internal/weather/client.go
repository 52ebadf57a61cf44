// Package weather fetches current conditions from OpenWeather.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kisansarathi/pkg/types"
)

const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client at another endpoint.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

type currentResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

func (c *Client) Current(ctx context.Context, loc types.Location) (*types.Weather, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("weather request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var data currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	if len(data.Weather) == 0 {
		return nil, errors.New("weather response has no conditions")
	}

	return &types.Weather{
		Temperature: data.Main.Temp,
		Humidity:    data.Main.Humidity,
		Condition:   data.Weather[0].Main,
	}, nil
}
