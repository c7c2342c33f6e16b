package backend

import (
	"bussd-route-service/internal/api/dto"
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/platform/obs"
	"bussd-route-service/internal/ports"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Largest response body the client will read.
const maxResponseBytes = 1 << 20

// Client talks to the Buss'd backend API over HTTP. It implements both
// StopDirectory and RouteRepository and never retries.
type Client struct {
	session *http.Client
	baseURL *url.URL
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("backend client: base url is empty")
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend client: parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("backend client: base url %q must be an absolute http(s) URL", baseURL)
	}

	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		session: &http.Client{Timeout: timeout},
		baseURL: u,
	}, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

type errorBody struct {
	Error  json.RawMessage `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// message extracts a server-supplied error string, if any.
func (e errorBody) message() string {
	for _, raw := range []json.RawMessage{e.Error, e.Detail} {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
			continue
		}
		return strings.TrimSpace(string(raw))
	}
	return ""
}

// call sends one request and decodes a successful body into out.
// A response with a failure status or an error field becomes a RemoteError;
// no response at all becomes a TransportError.
func (c *Client) call(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := obs.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return &domain.TransportError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &domain.TransportError{Message: "request failed", Err: fmt.Errorf("read body: %w", err)}
	}

	var eb errorBody
	_ = json.Unmarshal(raw, &eb)
	msg := eb.message()

	if resp.StatusCode >= 400 || msg != "" {
		return &domain.RemoteError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Warn().Err(err).Str("endpoint", endpoint).Msg("undecodable backend response")
		return &domain.RemoteError{StatusCode: resp.StatusCode}
	}

	return nil
}

func (c *Client) LineStops(ctx context.Context, lineID, direction string) (_ domain.LineStops, err error) {
	defer obs.Time(ctx, "backend.LineStops")(&err)

	var res dto.LineStopsResponse
	q := url.Values{"route_id": {lineID}, "direction": {direction}}
	if err := c.call(ctx, http.MethodGet, c.endpoint("/stops", q), nil, &res); err != nil {
		return domain.LineStops{}, err
	}

	out := domain.LineStops{LineID: lineID, Direction: direction}
	for _, s := range res.Stops {
		out.Stops = append(out.Stops, domain.NewStopReference(s.ID, s.Name))
	}
	return out, nil
}

func (c *Client) StopsBetween(ctx context.Context, lineID, fromStopID, toStopID string) (_ domain.StopSpan, err error) {
	defer obs.Time(ctx, "backend.StopsBetween")(&err)

	var res dto.StopsBetweenResponse
	q := url.Values{"route_id": {lineID}, "from_stop_id": {fromStopID}, "to_stop_id": {toStopID}}
	if err := c.call(ctx, http.MethodGet, c.endpoint("/stops-between", q), nil, &res); err != nil {
		return domain.StopSpan{}, err
	}

	return domain.StopSpan{AllStopIDs: res.AllStopIDs, CoveredCount: res.Count}, nil
}

func firstRecord(res dto.RouteDataResponse) *domain.RouteProgressRecord {
	if len(res.Data) == 0 {
		return nil
	}
	return res.Data[0].Record()
}

func (c *Client) Create(ctx context.Context, d domain.RouteDraft) (_ *domain.RouteProgressRecord, err error) {
	defer obs.Time(ctx, "backend.Create")(&err)

	req := dto.AddRouteRequest{
		BusRoute:    d.RouteIdentifier,
		Percentage:  d.PercentageTravelled,
		UserUUID:    d.UserID,
		UserEmail:   d.UserEmail,
		StartedStop: d.StartStopID,
		EndedStop:   d.EndStopID,
	}

	var res dto.RouteDataResponse
	if err := c.call(ctx, http.MethodPost, c.endpoint("/add-bus-route", nil), req, &res); err != nil {
		return nil, err
	}
	return firstRecord(res), nil
}

func (c *Client) Update(ctx context.Context, id string, d domain.RouteDraft) (_ *domain.RouteProgressRecord, err error) {
	defer obs.Time(ctx, "backend.Update")(&err)

	req := dto.UpdateRouteRequest{
		UserEmail:           d.UserEmail,
		BusRoute:            d.RouteIdentifier,
		PercentageTravelled: d.PercentageTravelled,
		StartedStop:         d.StartStopID,
		EndedStop:           d.EndStopID,
		UserUUID:            d.UserID,
	}

	var res dto.RouteDataResponse
	path := "/update-bus-route/" + url.PathEscape(id)
	if err := c.call(ctx, http.MethodPost, c.endpoint(path, nil), req, &res); err != nil {
		return nil, err
	}
	return firstRecord(res), nil
}

func notFound(err error) error {
	var re *domain.RemoteError
	if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", re.Message, ports.ErrRouteNotFound)
	}
	return err
}

func (c *Client) Get(ctx context.Context, id string) (_ *domain.RouteProgressRecord, err error) {
	defer obs.Time(ctx, "backend.Get")(&err)

	var res dto.RouteDataResponse
	if err := c.call(ctx, http.MethodGet, c.endpoint("/routes/"+url.PathEscape(id), nil), nil, &res); err != nil {
		return nil, notFound(err)
	}

	rec := firstRecord(res)
	if rec == nil {
		return nil, ports.ErrRouteNotFound
	}
	return rec, nil
}

func (c *Client) ListByUser(ctx context.Context, userID string) (_ []*domain.RouteProgressRecord, err error) {
	defer obs.Time(ctx, "backend.ListByUser")(&err)

	var res dto.ListRoutesResponse
	q := url.Values{"user_uuid": {userID}}
	if err := c.call(ctx, http.MethodGet, c.endpoint("/routes", q), nil, &res); err != nil {
		return nil, err
	}

	out := make([]*domain.RouteProgressRecord, 0, len(res.Routes))
	for _, r := range res.Routes {
		out = append(out, r.Record())
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "backend.Delete")(&err)

	if err := c.call(ctx, http.MethodDelete, c.endpoint("/routes/"+url.PathEscape(id), nil), nil, nil); err != nil {
		return notFound(err)
	}
	return nil
}

// Coverage returns how much of the bus network the user has recorded.
func (c *Client) Coverage(ctx context.Context, userID string) (_ domain.NetworkCoverage, err error) {
	defer obs.Time(ctx, "backend.Coverage")(&err)

	var res dto.CoverageResponse
	q := url.Values{"user_uuid": {userID}}
	if err := c.call(ctx, http.MethodGet, c.endpoint("/coverage", q), nil, &res); err != nil {
		return domain.NetworkCoverage{}, err
	}

	return domain.NetworkCoverage{
		UserRouteCount:    res.UserRoutes,
		NetworkRouteCount: res.NetworkRoutes,
		Percentage:        res.Percentage,
	}, nil
}
