package api

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"setram.dev/tram/downloader"
	"setram.dev/tram/model"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxSize        = 1 << 20 // 1 MB
	DefaultTravelCacheTTL = 10 * time.Minute
)

var (
	ErrEmptyResponse     = errors.New("empty response")
	ErrMalformedResponse = errors.New("malformed response")
)

// Set when the API reports a failure in its body.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Endpoint paths, relative to the client's base URL.
type Paths struct {
	Schedule   string
	TravelTime string
	Delay      string
	Status     string
	Contact    string
}

var DefaultPaths = Paths{
	Schedule:   "/get_schedule.php",
	TravelTime: "/get_travel_time.php",
	Delay:      "/apply_delay.php",
	Status:     "/getStatut.php",
	Contact:    "/send_contact.php",
}

// Client talks to the tram API.
type Client struct {
	BaseURL        string
	Paths          Paths
	Headers        map[string]string
	Timeout        time.Duration
	MaxSize        int
	Retries        int
	TravelCacheTTL time.Duration
	Downloader     downloader.Downloader
	TimeNow        func() time.Time
}

// Creates a Client for the API rooted at baseURL.
//
// Travel times are cached in memory for TravelCacheTTL. Schedules and
// statuses are always fetched fresh.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		Paths:          DefaultPaths,
		Headers:        map[string]string{},
		Timeout:        DefaultTimeout,
		MaxSize:        DefaultMaxSize,
		TravelCacheTTL: DefaultTravelCacheTTL,
		Downloader:     downloader.NewMemoryDownloader(),
		TimeNow:        time.Now,
	}
}

// Upcoming arrivals at a station in the given direction.
func (c *Client) ScheduleFor(ctx context.Context, station model.Station, direction model.Direction) (*model.Snapshot, error) {
	body, err := c.Downloader.Get(
		ctx,
		c.url(c.Paths.Schedule, url.Values{
			"station": {string(station)},
			"route":   {direction.Code()},
		}),
		c.Headers,
		c.options(false),
	)
	if err != nil {
		return nil, errors.Wrap(err, "fetching schedule")
	}

	resp := &scheduleResponse{}
	if err := decode(body, resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &APIError{Message: resp.Error}
	}
	if err := check(resp); err != nil {
		return nil, err
	}

	snapshot := &model.Snapshot{
		Selection: model.Selection{Station: station, Direction: direction},
		Route:     resp.Route,
		Arrivals:  make([]model.Arrival, 0, len(resp.NextTrams)),
		FetchedAt: c.TimeNow(),
	}
	for _, tram := range resp.NextTrams {
		snapshot.Arrivals = append(snapshot.Arrivals, model.Arrival{Time: tram.Time})
	}

	return snapshot, nil
}

// Travel time between two stations. Minutes are rounded to the
// nearest integer.
func (c *Client) TravelTime(ctx context.Context, departure model.Station, arrival model.Station) (*model.TravelTime, error) {
	body, err := c.Downloader.Get(
		ctx,
		c.url(c.Paths.TravelTime, url.Values{
			"departure": {string(departure)},
			"arrival":   {string(arrival)},
		}),
		c.Headers,
		c.options(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "fetching travel time")
	}

	resp := &travelTimeResponse{}
	if err := decode(body, resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &APIError{Message: resp.Error}
	}
	if err := check(resp); err != nil {
		return nil, err
	}

	tt := &model.TravelTime{
		Minutes: int(math.Round(*resp.TravelTime)),
		Details: make([]model.TravelStop, 0, len(resp.Details)),
	}
	for _, d := range resp.Details {
		tt.Details = append(tt.Details, model.TravelStop{Station: d.Station, Time: d.Heure})
	}

	return tt, nil
}

// Asks the API to delay the line by the given number of minutes at a
// station. A result with Success false is not an error: the message
// explains what went wrong.
func (c *Client) ApplyDelay(ctx context.Context, station model.Station, direction model.Direction, minutes int) (*model.DelayResult, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"station": station,
		"route":   direction.Code(),
		"delay":   minutes,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding delay")
	}

	body, err := c.Downloader.Post(
		ctx,
		c.url(c.Paths.Delay, nil),
		c.Headers,
		"application/json",
		payload,
		c.options(false),
	)
	if err != nil {
		return nil, errors.Wrap(err, "applying delay")
	}

	resp := &delayResponse{}
	if err := decode(body, resp); err != nil {
		return nil, err
	}
	if err := check(resp); err != nil {
		return nil, err
	}

	result := &model.DelayResult{
		Success: *resp.Success,
		Message: resp.Message,
	}
	if !result.Success {
		return result, nil
	}

	result.Arrivals = make([]model.DelayArrival, 0, len(resp.Data))
	for i, d := range resp.Data {
		result.Arrivals = append(result.Arrivals, model.DelayArrival{
			Ordinal:   i + 1,
			Time:      d.Time,
			Remaining: int(math.Round(*d.RemainingTime)),
		})
	}

	return result, nil
}

// Current status of the network.
func (c *Client) CurrentStatus(ctx context.Context) (*model.Status, error) {
	body, err := c.Downloader.Get(ctx, c.url(c.Paths.Status, nil), c.Headers, c.options(false))
	if err != nil {
		return nil, errors.Wrap(err, "fetching status")
	}

	resp := &statusResponse{}
	if err := decode(body, resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &APIError{Message: resp.Error}
	}
	if err := check(resp); err != nil {
		return nil, err
	}

	return &model.Status{Statut: resp.Statut, ImagePath: resp.ImagePath}, nil
}

// Submits the contact form. Returns the server's acknowledgement
// as is.
func (c *Client) SendContact(ctx context.Context, email string, message string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"email":   email,
		"message": message,
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding contact")
	}

	body, err := c.Downloader.Post(
		ctx,
		c.url(c.Paths.Contact, nil),
		c.Headers,
		"application/json",
		payload,
		c.options(false),
	)
	if err != nil {
		return "", errors.Wrap(err, "sending contact")
	}

	return string(body), nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) options(cache bool) downloader.GetOptions {
	return downloader.GetOptions{
		MaxSize:  c.MaxSize,
		Timeout:  c.Timeout,
		Retries:  c.Retries,
		Cache:    cache && c.TravelCacheTTL > 0,
		CacheTTL: c.TravelCacheTTL,
	}
}
