package tfl

import (
	"bussd-route-service/internal/adapters/cache"
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/platform/metrics"
	"bussd-route-service/internal/platform/obs"
	"bussd-route-service/internal/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// TfLProvider implements LineSequenceProvider, StopPointProvider and
// BusNetworkProvider using the TfL unified API.
//
// It coordinates:
//   - Line and direction normalization
//   - Optional Redis caching of stop sequences
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type TfLProvider struct {
	session       *http.Client
	apiKey        string
	baseURL       string
	sequenceCache *cache.RedisSequenceCache
	metrics       *metrics.Collector

	retryInitial time.Duration
	maxRetries   uint64
}

func NewTfLProvider(
	baseURL string,
	apiKey string,
	timeout time.Duration,
	sequenceCache *cache.RedisSequenceCache,
	m *metrics.Collector,
) (*TfLProvider, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("TfL base url is empty")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &TfLProvider{
		session:       &http.Client{Timeout: timeout},
		apiKey:        apiKey,
		baseURL:       baseURL,
		sequenceCache: sequenceCache,
		metrics:       m,
		retryInitial:  200 * time.Millisecond,
		maxRetries:    3,
	}, nil
}

type sequenceResponse struct {
	LineName           string              `json:"lineName"`
	Direction          string              `json:"direction"`
	StopPointSequences []stopPointSequence `json:"stopPointSequences"`
}

type stopPointSequence struct {
	BranchID   int         `json:"branchId"`
	StopPoints []stopPoint `json:"stopPoint"`
}

type stopPoint struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func normalizeDirection(direction string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(direction))
	switch d {
	case domain.DirectionOutbound, domain.DirectionInbound:
		return d, nil
	}
	return "", &domain.ValidationError{Reason: fmt.Sprintf("direction must be %s or %s", domain.DirectionOutbound, domain.DirectionInbound)}
}

// RouteSequence returns the stops of the first stop sequence of a line.
// A line with no sequences yields an empty slice.
func (p *TfLProvider) RouteSequence(
	ctx context.Context,
	lineID string,
	direction string,
) (_ []domain.StopReference, err error) {
	defer obs.Time(ctx, "tfl.RouteSequence")(&err)

	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return nil, &domain.ValidationError{Reason: "route_id is required"}
	}

	dir, err := normalizeDirection(direction)
	if err != nil {
		return nil, err
	}

	// Check the sequence cache before issuing external API calls.
	if p.sequenceCache != nil {
		stops, ok, err := p.sequenceCache.Get(ctx, lineID, dir)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("line", lineID).Msg("sequence cache read failed")
		case ok:
			if p.metrics != nil {
				p.metrics.SequenceCacheHits.Inc()
			}
			return stops, nil
		default:
			if p.metrics != nil {
				p.metrics.SequenceCacheMisses.Inc()
			}
		}
	}

	endpoint := fmt.Sprintf("%s/Line/%s/Route/Sequence/%s", p.baseURL, url.PathEscape(lineID), dir)
	resp, err := p.doWithRetry(ctx, "route_sequence", func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodGet, endpoint)
	})
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) && he.Code == http.StatusNotFound {
			return nil, fmt.Errorf("tfl route sequence %q: %w", lineID, ports.ErrLineNotFound)
		}
		return nil, fmt.Errorf("tfl route sequence %q: %w", lineID, err)
	}
	defer resp.Body.Close()

	var seq sequenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&seq); err != nil {
		return nil, fmt.Errorf("tfl route sequence %q: decode: %w", lineID, err)
	}

	if len(seq.StopPointSequences) == 0 {
		return []domain.StopReference{}, nil
	}

	points := seq.StopPointSequences[0].StopPoints
	stops := make([]domain.StopReference, 0, len(points))
	for _, sp := range points {
		if sp.ID == "" {
			continue
		}
		stops = append(stops, domain.NewStopReference(sp.ID, sp.Name))
	}

	if p.sequenceCache != nil {
		if err := p.sequenceCache.Put(ctx, lineID, dir, stops); err != nil {
			log.Warn().Err(err).Str("line", lineID).Msg("sequence cache write failed")
		}
	}

	return stops, nil
}

type stopPointResponse struct {
	NaptanID   string        `json:"naptanId"`
	ID         string        `json:"id"`
	CommonName string        `json:"commonName"`
	Lat        float64       `json:"lat"`
	Lon        float64       `json:"lon"`
	Modes      []string      `json:"modes"`
	Lines      []lineSummary `json:"lines"`
}

// StopPoint looks up one stop by its NaPTAN id.
func (p *TfLProvider) StopPoint(ctx context.Context, stopID string) (_ domain.StopPoint, err error) {
	defer obs.Time(ctx, "tfl.StopPoint")(&err)

	stopID = strings.TrimSpace(stopID)
	if stopID == "" {
		return domain.StopPoint{}, &domain.ValidationError{Reason: "stop_id is required"}
	}

	endpoint := fmt.Sprintf("%s/StopPoint/%s", p.baseURL, url.PathEscape(stopID))
	resp, err := p.doWithRetry(ctx, "stop_point", func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodGet, endpoint)
	})
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) && he.Code == http.StatusNotFound {
			return domain.StopPoint{}, fmt.Errorf("tfl stop point %q: %w", stopID, ports.ErrStopNotFound)
		}
		return domain.StopPoint{}, fmt.Errorf("tfl stop point %q: %w", stopID, err)
	}
	defer resp.Body.Close()

	var sp stopPointResponse
	if err := json.NewDecoder(resp.Body).Decode(&sp); err != nil {
		return domain.StopPoint{}, fmt.Errorf("tfl stop point %q: decode: %w", stopID, err)
	}

	out := domain.StopPoint{
		ID:        sp.NaptanID,
		Name:      sp.CommonName,
		Latitude:  sp.Lat,
		Longitude: sp.Lon,
		Modes:     sp.Modes,
		LineIDs:   make([]string, 0, len(sp.Lines)),
	}
	if out.ID == "" {
		out.ID = sp.ID
	}
	if out.ID == "" {
		out.ID = stopID
	}
	for _, l := range sp.Lines {
		if l.ID != "" {
			out.LineIDs = append(out.LineIDs, l.ID)
		}
	}

	return out, nil
}

type lineSummary struct {
	ID string `json:"id"`
}

// BusLineCount returns the number of distinct bus lines TfL operates.
func (p *TfLProvider) BusLineCount(ctx context.Context) (_ int, err error) {
	defer obs.Time(ctx, "tfl.BusLineCount")(&err)

	endpoint := p.baseURL + "/Line/Mode/bus"
	resp, err := p.doWithRetry(ctx, "line_mode_bus", func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodGet, endpoint)
	})
	if err != nil {
		return 0, fmt.Errorf("tfl bus lines: %w", err)
	}
	defer resp.Body.Close()

	var lines []lineSummary
	if err := json.NewDecoder(resp.Body).Decode(&lines); err != nil {
		return 0, fmt.Errorf("tfl bus lines: decode: %w", err)
	}

	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if l.ID != "" {
			seen[strings.ToLower(l.ID)] = struct{}{}
		}
	}

	return len(seen), nil
}
