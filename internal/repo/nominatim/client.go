package nominatim

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

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
	"github.com/Oohan21/utopia-drafts/internal/infra/httpclient"
)

const (
	defaultBaseURL   = "https://nominatim.openstreetmap.org"
	defaultUserAgent = "utopia-drafts/1.0"
)

type Client struct {
	baseURL    string
	userAgent  string
	language   string
	httpClient *http.Client
}

type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Err != nil && e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s: status=%d", e.Op, e.StatusCode)
	default:
		return e.Op
	}
}

func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewClient(baseURL, userAgent, language string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, &RequestError{Op: "parse nominatim url", Err: err}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, &RequestError{Op: "validate nominatim url", Err: fmt.Errorf("invalid nominatim url: %s", trimmed)}
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		userAgent:  userAgent,
		language:   strings.TrimSpace(language),
		httpClient: httpclient.New(timeout),
	}, nil
}

type reverseResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// ReverseGeocode resolves coordinates into address parts.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (model.GeocodeResult, error) {
	if c == nil || c.httpClient == nil {
		return model.GeocodeResult{}, &RequestError{Op: "reverse geocode", Err: errors.New("nominatim client is not initialized")}
	}

	query := url.Values{}
	query.Set("format", "jsonv2")
	query.Set("lat", strconv.FormatFloat(lat, 'f', 6, 64))
	query.Set("lon", strconv.FormatFloat(lon, 'f', 6, 64))
	query.Set("addressdetails", "1")
	if c.language != "" {
		query.Set("accept-language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return model.GeocodeResult{}, &RequestError{Op: "create http request", Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.GeocodeResult{}, &RequestError{Op: "execute http request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.GeocodeResult{}, &RequestError{Op: "read http response", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return model.GeocodeResult{}, &RequestError{Op: "unexpected http status", StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	var decoded reverseResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return model.GeocodeResult{}, &RequestError{Op: "decode http response", StatusCode: resp.StatusCode, Err: err}
	}
	if decoded.Error != "" {
		return model.GeocodeResult{}, &RequestError{Op: "reverse geocode", StatusCode: resp.StatusCode, Err: errors.New(decoded.Error)}
	}

	return toResult(decoded), nil
}

func toResult(resp reverseResponse) model.GeocodeResult {
	addr := resp.Address
	result := model.GeocodeResult{
		CityCandidates:    pick(addr, "city", "town", "village", "municipality"),
		SubCityCandidates: pick(addr, "city_district", "suburb", "district", "neighbourhood", "quarter"),
		Region:            strings.TrimSpace(addr["state"]),
		FormattedAddress:  strings.TrimSpace(resp.DisplayName),
		Country:           strings.TrimSpace(addr["country"]),
	}

	road := strings.TrimSpace(addr["road"])
	if number := strings.TrimSpace(addr["house_number"]); road != "" && number != "" {
		road = number + " " + road
	}
	result.Street = road

	result.Suburb = strings.TrimSpace(addr["suburb"])
	if result.Suburb == "" {
		result.Suburb = strings.TrimSpace(addr["neighbourhood"])
	}
	return result
}

func pick(addr map[string]string, keys ...string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(addr[key])
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
