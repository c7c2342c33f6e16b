package events

import (
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/platform/metrics"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

const subjectPrefix = "bussd.routes"

// NATSPublisher publishes route events as JSON on bussd.routes.<kind>.<user>.
type NATSPublisher struct {
	nc      *nats.Conn
	metrics *metrics.Collector
}

func NewNATSPublisher(url string, m *metrics.Collector) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("bussd-route-service"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSConnected.Set(0)
			}
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSConnected.Set(1)
			}
			log.Info().Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSConnected.Set(0)
			}
			log.Info().Msg("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %q: %w", url, err)
	}
	if m != nil {
		m.NATSConnected.Set(1)
	}

	return &NATSPublisher{nc: nc, metrics: m}, nil
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

type routeMessage struct {
	ID                  string    `json:"id"`
	BusRoute            string    `json:"bus_route"`
	UserUUID            string    `json:"user_uuid"`
	StartedStop         string    `json:"started_stop"`
	EndedStop           string    `json:"ended_stop"`
	PercentageTravelled int       `json:"percentage_travelled"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type eventMessage struct {
	Kind  string       `json:"kind"`
	Route routeMessage `json:"route"`
	At    time.Time    `json:"at"`
}

// encodeEvent returns the subject and payload of a route event.
// The user's email is not included in the payload.
func encodeEvent(ev domain.RouteEvent) (string, []byte, error) {
	subject := fmt.Sprintf("%s.%s.%s", subjectPrefix, subjectToken(string(ev.Kind)), subjectToken(ev.Route.UserID))

	b, err := json.Marshal(eventMessage{
		Kind: string(ev.Kind),
		Route: routeMessage{
			ID:                  ev.Route.ID,
			BusRoute:            ev.Route.RouteIdentifier,
			UserUUID:            ev.Route.UserID,
			StartedStop:         ev.Route.StartStopID,
			EndedStop:           ev.Route.EndStopID,
			PercentageTravelled: ev.Route.PercentageTravelled,
			UpdatedAt:           ev.Route.UpdatedAt,
		},
		At: ev.At,
	})
	if err != nil {
		return "", nil, fmt.Errorf("encode route event: %w", err)
	}

	return subject, b, nil
}

func (p *NATSPublisher) PublishRouteEvent(ctx context.Context, ev domain.RouteEvent) error {
	subject, b, err := encodeEvent(ev)
	if err != nil {
		return err
	}

	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.NATSPublishErrs.Inc()
		} else {
			p.metrics.NATSPublished.Inc()
		}
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	log.Debug().Str("subject", subject).Msg("route event published")
	return nil
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
