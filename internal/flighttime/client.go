package flighttime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Upstream names the flight time service for rate limiting and errors.
const Upstream = "flight-time"

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// LegInput is one leg of a remote estimate request.
type LegInput struct {
	OriginICAO      string  `json:"originIcao"`
	DestinationICAO string  `json:"destinationIcao"`
	DepartDate      string  `json:"departDate"`
	DepartTime      string  `json:"departTime,omitempty"`
	OriginLat       float64 `json:"originLat"`
	OriginLon       float64 `json:"originLon"`
	DestinationLat  float64 `json:"destinationLat"`
	DestinationLon  float64 `json:"destinationLon"`
}

type flightTimeRequest struct {
	FlightLegs []LegInput `json:"flightLegs"`
	Aircraft   struct {
		Models []string `json:"models"`
	} `json:"aircraft"`
}

type flightTimeResponse struct {
	Data *struct {
		Results []struct {
			ModelID    string `json:"modelId"`
			FlightLegs []struct {
				FlightTime *struct {
					FlightTimeSec *float64 `json:"flightTimeSec"`
				} `json:"flightTime"`
			} `json:"flightLegs"`
		} `json:"results"`
	} `json:"data"`
}

// Remote is the transport to the flight-time service.
type Remote interface {
	FlightTimes(ctx context.Context, legs []LegInput, modelIDs []string) (map[string][]float64, error)
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// Client calls POST {baseURL}/flight_time.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FlightTimes returns per-leg seconds keyed by model ID. Only models whose
// result covers every leg are included.
func (c *Client) FlightTimes(ctx context.Context, legs []LegInput, modelIDs []string) (map[string][]float64, error) {
	body := flightTimeRequest{FlightLegs: legs}
	body.Aircraft.Models = modelIDs

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, NewEstimatorError(Upstream, fmt.Errorf("encoding request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/flight_time", bytes.NewReader(payload))
	if err != nil {
		return nil, NewEstimatorError(Upstream, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewEstimatorError(Upstream, fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, NewEstimatorError(Upstream, fmt.Errorf("unexpected status: %d", resp.StatusCode))
	}

	var decoded flightTimeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&decoded); err != nil {
		return nil, NewEstimatorError(Upstream, fmt.Errorf("decoding response: %w", err))
	}
	if decoded.Data == nil {
		return nil, NewEstimatorError(Upstream, fmt.Errorf("response has no data"))
	}

	out := make(map[string][]float64, len(decoded.Data.Results))
	for _, r := range decoded.Data.Results {
		if r.ModelID == "" || len(r.FlightLegs) != len(legs) {
			continue
		}
		seconds := make([]float64, 0, len(legs))
		for _, leg := range r.FlightLegs {
			if leg.FlightTime == nil || leg.FlightTime.FlightTimeSec == nil || *leg.FlightTime.FlightTimeSec < 0 {
				break
			}
			seconds = append(seconds, *leg.FlightTime.FlightTimeSec)
		}
		if len(seconds) == len(legs) {
			out[r.ModelID] = seconds
		}
	}
	return out, nil
}
