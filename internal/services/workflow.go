package services

import (
	"bussd-route-service/internal/domain"
	"bussd-route-service/internal/platform/obs"
	"bussd-route-service/internal/ports"
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

// Stage is a step of one route submission attempt.
type Stage int

const (
	StageIdle Stage = iota
	StageValidating
	StageFetchingSpan
	StageComputing
	StagePersisting
	StageSuccess
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageValidating:
		return "validating"
	case StageFetchingSpan:
		return "fetching_span"
	case StageComputing:
		return "computing"
	case StagePersisting:
		return "persisting"
	case StageSuccess:
		return "success"
	case StageFailed:
		return "failed"
	}
	return "unknown"
}

// Mode selects between recording a new route and editing an existing one.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

func (m Mode) String() string {
	if m == ModeUpdate {
		return "update"
	}
	return "create"
}

// Messages are the user-facing texts reported when persisting fails.
type Messages struct {
	// Used when the repository fails without a message of its own.
	RemoteFallback string
	// Used when the repository could not be reached at all.
	TransportFailure string
	// Used when the repository reports success without returning a record.
	NotPersisted string
}

type WorkflowConfig struct {
	Create  Messages
	Update  Messages
	OnStage func(Stage)
}

func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		Create: Messages{
			RemoteFallback:   "failed to add route",
			TransportFailure: "something went wrong while adding the route",
			NotPersisted:     "no route was added",
		},
		Update: Messages{
			RemoteFallback:   "failed to update route",
			TransportFailure: "something went wrong while updating the route",
			NotPersisted:     "no route was updated",
		},
	}
}

const (
	msgMissingRoute     = "missing route number"
	msgIncompleteSelect = "incomplete selection"
	msgIncompleteFields = "incomplete fields"
	msgStopsRemote      = "unable to fetch stops"
	msgStopsTransport   = "something went wrong while fetching stops"
	msgSpanRemote       = "failed to find stops between"
	msgSpanTransport    = "something went wrong"
)

// Input of one create or update submission. RouteID is only read in update mode.
type RouteSubmission struct {
	RouteID     string
	LineID      string
	StartStopID string
	EndStopID   string
	UserID      string
	UserEmail   string
}

// RouteProgressWorkflow turns a line and two chosen stops into a persisted
// percentage of the line travelled. It holds no state between invocations
// and never retries; a failed attempt is re-run from the start by the caller.
type RouteProgressWorkflow struct {
	stops  ports.StopDirectory
	routes ports.RouteRepository
	cfg    WorkflowConfig
}

func NewRouteProgressWorkflow(
	stops ports.StopDirectory,
	routes ports.RouteRepository,
	cfg WorkflowConfig,
) (*RouteProgressWorkflow, error) {
	if stops == nil {
		return nil, errors.New("route progress workflow: stop directory is nil")
	}
	if routes == nil {
		return nil, errors.New("route progress workflow: route repository is nil")
	}

	defaults := DefaultWorkflowConfig()
	cfg.Create = fillMessages(cfg.Create, defaults.Create)
	cfg.Update = fillMessages(cfg.Update, defaults.Update)

	return &RouteProgressWorkflow{stops: stops, routes: routes, cfg: cfg}, nil
}

func fillMessages(m, fallback Messages) Messages {
	if m.RemoteFallback == "" {
		m.RemoteFallback = fallback.RemoteFallback
	}
	if m.TransportFailure == "" {
		m.TransportFailure = fallback.TransportFailure
	}
	if m.NotPersisted == "" {
		m.NotPersisted = fallback.NotPersisted
	}
	return m
}

// FetchLineStops returns the outbound stops of a line.
func (w *RouteProgressWorkflow) FetchLineStops(ctx context.Context, lineID string) (_ domain.LineStops, err error) {
	defer obs.Time(ctx, "workflow.FetchLineStops")(&err)
	defer func() { logFailure("fetch_line_stops", err) }()

	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return domain.LineStops{}, &domain.ValidationError{Reason: msgMissingRoute}
	}

	ls, err := w.stops.LineStops(ctx, lineID, domain.DirectionOutbound)
	if err != nil {
		return domain.LineStops{}, classify(err, msgStopsRemote, msgStopsTransport)
	}

	if len(ls.Stops) == 0 {
		return domain.LineStops{}, &domain.NoStopsFoundError{LineID: lineID}
	}

	out := domain.LineStops{
		LineID:    lineID,
		Direction: domain.DirectionOutbound,
		Stops:     make([]domain.StopReference, 0, len(ls.Stops)),
	}
	for _, s := range ls.Stops {
		out.Stops = append(out.Stops, domain.NewStopReference(s.ID, s.DisplayName))
	}

	return out, nil
}

// ComputeSpan asks the directory how many stops lie between start and end.
func (w *RouteProgressWorkflow) ComputeSpan(
	ctx context.Context,
	lineID string,
	startStopID string,
	endStopID string,
) (_ domain.StopSpan, err error) {
	defer obs.Time(ctx, "workflow.ComputeSpan")(&err)
	defer func() { logFailure("compute_span", err) }()

	if blank(lineID, startStopID, endStopID) {
		return domain.StopSpan{}, &domain.ValidationError{Reason: msgIncompleteSelect}
	}

	return w.computeSpan(ctx, lineID, startStopID, endStopID)
}

func (w *RouteProgressWorkflow) computeSpan(ctx context.Context, lineID, startStopID, endStopID string) (domain.StopSpan, error) {
	span, err := w.stops.StopsBetween(ctx, lineID, startStopID, endStopID)
	if err != nil {
		return domain.StopSpan{}, classify(err, msgSpanRemote, msgSpanTransport)
	}
	return span, nil
}

// SubmitNewRoute records the span between two stops as a new route.
func (w *RouteProgressWorkflow) SubmitNewRoute(ctx context.Context, sub RouteSubmission) (*domain.RouteProgressRecord, error) {
	return w.submit(ctx, ModeCreate, sub)
}

// SubmitRouteUpdate replaces the line, stops and percentage of an existing route.
func (w *RouteProgressWorkflow) SubmitRouteUpdate(ctx context.Context, sub RouteSubmission) (*domain.RouteProgressRecord, error) {
	return w.submit(ctx, ModeUpdate, sub)
}

func (w *RouteProgressWorkflow) submit(ctx context.Context, mode Mode, sub RouteSubmission) (_ *domain.RouteProgressRecord, err error) {
	defer obs.Time(ctx, "workflow.Submit."+mode.String())(&err)

	w.stage(StageIdle)
	defer func() {
		if err != nil {
			logFailure("submit_"+mode.String(), err)
			w.stage(StageFailed)
			return
		}
		w.stage(StageSuccess)
	}()

	msgs := w.cfg.Create
	if mode == ModeUpdate {
		msgs = w.cfg.Update
	}

	w.stage(StageValidating)
	if blank(sub.LineID, sub.StartStopID, sub.EndStopID, sub.UserID) {
		return nil, &domain.ValidationError{Reason: msgIncompleteFields}
	}
	if mode == ModeUpdate && blank(sub.RouteID) {
		return nil, &domain.ValidationError{Reason: msgIncompleteFields}
	}

	w.stage(StageFetchingSpan)
	span, err := w.computeSpan(ctx, sub.LineID, sub.StartStopID, sub.EndStopID)
	if err != nil {
		return nil, err
	}

	w.stage(StageComputing)
	pct, err := span.Percentage()
	if err != nil {
		return nil, err
	}

	draft := domain.RouteDraft{
		RouteIdentifier:     sub.LineID,
		UserID:              sub.UserID,
		UserEmail:           sub.UserEmail,
		StartStopID:         sub.StartStopID,
		EndStopID:           sub.EndStopID,
		PercentageTravelled: pct,
	}

	w.stage(StagePersisting)
	var rec *domain.RouteProgressRecord
	if mode == ModeUpdate {
		rec, err = w.routes.Update(ctx, sub.RouteID, draft)
	} else {
		rec, err = w.routes.Create(ctx, draft)
	}
	if err != nil {
		return nil, classify(err, msgs.RemoteFallback, msgs.TransportFailure)
	}
	if rec == nil {
		return nil, &domain.RemoteError{Message: msgs.NotPersisted}
	}

	return rec, nil
}

func (w *RouteProgressWorkflow) stage(s Stage) {
	if w.cfg.OnStage != nil {
		w.cfg.OnStage(s)
	}
}

// classify normalizes a collaborator error into the workflow's taxonomy.
// Remote errors keep the server message when it has one. Anything that is
// not already typed is treated as a transport failure.
func classify(err error, remoteFallback, transportMsg string) error {
	var re *domain.RemoteError
	if errors.As(err, &re) {
		if strings.TrimSpace(re.Message) == "" {
			return &domain.RemoteError{StatusCode: re.StatusCode, Message: remoteFallback}
		}
		return re
	}

	var ve *domain.ValidationError
	var nf *domain.NoStopsFoundError
	var ce *domain.ComputationError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &ce) {
		return err
	}

	var te *domain.TransportError
	if errors.As(err, &te) {
		return &domain.TransportError{Message: transportMsg, Err: te.Err}
	}

	return &domain.TransportError{Message: transportMsg, Err: err}
}

func logFailure(op string, err error) {
	if err == nil {
		return
	}

	var (
		ve *domain.ValidationError
		nf *domain.NoStopsFoundError
		re *domain.RemoteError
		te *domain.TransportError
		ce *domain.ComputationError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &nf):
		log.Debug().Str("op", op).Err(err).Msg("rejected input")
	case errors.As(err, &re):
		log.Warn().Str("op", op).Int("status", re.StatusCode).Err(err).Msg("remote failure")
	case errors.As(err, &te):
		log.Error().Str("op", op).AnErr("cause", te.Err).Msg(te.Message)
	case errors.As(err, &ce):
		log.Error().Str("op", op).Bool("defect", true).Err(err).Msg("invariant violated")
	default:
		log.Error().Str("op", op).Err(err).Msg("unexpected failure")
	}
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
