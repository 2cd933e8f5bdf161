package mapping

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fieldtrack.com/fieldtrack/attendance/model"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	// MaxPairsPerRequest keeps a square request within the 100 element limit.
	MaxPairsPerRequest = 10

	statusOK = "OK"
)

type Client struct {
	transport *Transport
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{transport: NewTransport(strings.TrimRight(baseURL, "/"), apiKey, timeout)}
}

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

type distanceMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Text  string  `json:"text"`
				Value float64 `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

func latlng(loc model.Location) string {
	return strconv.FormatFloat(loc.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(loc.Lng, 'f', -1, 64)
}

func joinLocations(locs []model.Location) string {
	parts := make([]string, len(locs))
	for i, l := range locs {
		parts[i] = latlng(l)
	}
	return strings.Join(parts, "|")
}

// ReverseGeocode returns the street address nearest to loc.
func (c *Client) ReverseGeocode(ctx context.Context, loc model.Location) (string, error) {
	var res geocodeResponse
	err := c.transport.GetJSON(ctx, "/geocode/json", map[string]string{
		"latlng":      latlng(loc),
		"result_type": "street_address",
	}, &res)
	if err != nil {
		return "", err
	}
	if res.Status != statusOK {
		return "", fmt.Errorf("geocoding API error: %s %s", res.Status, res.ErrorMessage)
	}
	if len(res.Results) == 0 {
		return "", fmt.Errorf("no results found")
	}
	return res.Results[0].FormattedAddress, nil
}

// PairwiseDistances measures origins[i] -> destinations[i] for every i.
// Pairs are sent in batches; within a batch the answer for pair i is the
// i-th element of the i-th row.
func (c *Client) PairwiseDistances(ctx context.Context, origins, destinations []model.Location) ([]model.PairDistance, error) {
	if len(origins) != len(destinations) {
		return nil, fmt.Errorf("origins and destinations differ in length: %d != %d", len(origins), len(destinations))
	}

	out := make([]model.PairDistance, 0, len(origins))
	for start := 0; start < len(origins); start += MaxPairsPerRequest {
		end := min(start+MaxPairsPerRequest, len(origins))
		batch, err := c.distanceBatch(ctx, origins[start:end], destinations[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (c *Client) distanceBatch(ctx context.Context, origins, destinations []model.Location) ([]model.PairDistance, error) {
	var res distanceMatrixResponse
	err := c.transport.GetJSON(ctx, "/distancematrix/json", map[string]string{
		"origins":      joinLocations(origins),
		"destinations": joinLocations(destinations),
	}, &res)
	if err != nil {
		return nil, err
	}
	if res.Status != statusOK {
		return nil, fmt.Errorf("distance matrix API error: %s %s", res.Status, res.ErrorMessage)
	}

	pairs := make([]model.PairDistance, len(origins))
	for i := range pairs {
		if i >= len(res.Rows) || i >= len(res.Rows[i].Elements) {
			continue
		}
		el := res.Rows[i].Elements[i]
		pairs[i] = model.PairDistance{Status: el.Status, DistanceText: el.Distance.Text}
	}
	return pairs, nil
}
