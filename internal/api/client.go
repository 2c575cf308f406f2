// Package api is a client for the Al Adhan prayer times API. The service is
// used as an independent reference for the locally computed times.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a new API client with sensible defaults.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

// FetchByCoordinates fetches prayer times for the given date and coordinates.
// A negative method or school leaves the choice to the API.
func (c *Client) FetchByCoordinates(ctx context.Context, date time.Time, lat, lon float64, method, school int) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, date.Format("02-01-2006"))

	var resp Response
	if err := c.get(ctx, endpoint, coordinateParams(lat, lon, method, school), &resp); err != nil {
		return nil, err
	}
	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("API error: code=%d status=%s", resp.Code, resp.Status)
	}
	return &resp, nil
}

// FetchByCity fetches prayer times for the given date, city, and country.
func (c *Client) FetchByCity(ctx context.Context, date time.Time, city, country string, method, school int) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timingsByCity/%s", c.BaseURL, date.Format("02-01-2006"))

	var resp Response
	if err := c.get(ctx, endpoint, cityParams(city, country, method, school), &resp); err != nil {
		return nil, err
	}
	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("API error: code=%d status=%s", resp.Code, resp.Status)
	}
	return &resp, nil
}

// FetchCalendarByCoordinates fetches a whole month of prayer times.
func (c *Client) FetchCalendarByCoordinates(ctx context.Context, year int, month time.Month, lat, lon float64, method, school int) (*CalendarResponse, error) {
	endpoint := fmt.Sprintf("%s/calendar/%d/%d", c.BaseURL, year, int(month))
	return c.calendar(ctx, endpoint, coordinateParams(lat, lon, method, school))
}

// FetchCalendarByCity fetches a whole month of prayer times for a city.
func (c *Client) FetchCalendarByCity(ctx context.Context, year int, month time.Month, city, country string, method, school int) (*CalendarResponse, error) {
	endpoint := fmt.Sprintf("%s/calendarByCity/%d/%d", c.BaseURL, year, int(month))
	return c.calendar(ctx, endpoint, cityParams(city, country, method, school))
}

func (c *Client) calendar(ctx context.Context, endpoint string, params url.Values) (*CalendarResponse, error) {
	var resp CalendarResponse
	if err := c.get(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("API error: code=%d status=%s", resp.Code, resp.Status)
	}
	return &resp, nil
}

func coordinateParams(lat, lon float64, method, school int) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 6, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 6, 64))
	setMethodSchool(params, method, school)
	return params
}

func cityParams(city, country string, method, school int) url.Values {
	params := url.Values{}
	params.Set("city", city)
	params.Set("country", country)
	setMethodSchool(params, method, school)
	return params
}

func setMethodSchool(params url.Values, method, school int) {
	if method >= 0 {
		params.Set("method", strconv.Itoa(method))
	}
	if school >= 0 {
		params.Set("school", strconv.Itoa(school))
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())
	log.Debug().Str("url", reqURL).Msg("al adhan request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build API request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}
	return nil
}
