package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

const (
	ReasonOutOfRegion  = "out of region"
	ReasonLookupFailed = "lookup failed"
	ReasonClosed       = "engine closed"

	defaultDebounce      = 1500 * time.Millisecond
	defaultLookupTimeout = 10 * time.Second
)

var (
	ErrOutOfRegion = errors.New(ReasonOutOfRegion)
	ErrClosed      = errors.New(ReasonClosed)
)

// GeocodeError is a recoverable lookup failure; the form falls back to manual entry.
type GeocodeError struct {
	Reason string
	Err    error
}

func (e *GeocodeError) Error() string {
	if e.Err == nil || e.Err.Error() == e.Reason {
		return "geocode: " + e.Reason
	}
	return fmt.Sprintf("geocode: %s: %v", e.Reason, e.Err)
}

func (e *GeocodeError) Unwrap() error {
	return e.Err
}

type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (model.GeocodeResult, error)
}

type ReferenceSource interface {
	Cities(ctx context.Context) ([]model.City, error)
	SubCities(ctx context.Context, cityID string) ([]model.SubCity, error)
}

type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

type Config struct {
	Debounce      time.Duration
	LookupTimeout time.Duration
	Region        BoundingBox
}

func DefaultConfig() Config {
	return Config{
		Debounce:      defaultDebounce,
		LookupTimeout: defaultLookupTimeout,
		Region:        BoundingBox{MinLat: 3, MaxLat: 15, MinLon: 33, MaxLon: 48},
	}
}

// Outcome reports a state transition for the lookup identified by Token.
type Outcome struct {
	Token       uint64
	Coordinates model.Coordinates
	State       enums.LookupState
	Enrichment  Enrichment
	Err         error
}

// Engine debounces coordinate changes and resolves them to address fields.
// Every change issues a new token; only the outcome carrying the latest token may be applied.
type Engine struct {
	cfg      Config
	geocoder Geocoder
	refs     ReferenceSource
	logger   *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	token   uint64
	state   enums.LookupState
	reason  string
	address string
	timer   *time.Timer
	sink    func(Outcome)
	closed  bool
}

func NewEngine(cfg Config, geocoder Geocoder, refs ReferenceSource, logger *zap.Logger) *Engine {
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	if cfg.LookupTimeout <= 0 {
		cfg.LookupTimeout = defaultLookupTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Engine{
		cfg:      cfg,
		geocoder: geocoder,
		refs:     refs,
		logger:   logger,
		baseCtx:  ctx,
		cancel:   cancel,
		state:    enums.LookupStateIdle,
	}
}

// OnOutcome registers the receiver of debounced lookup completions.
func (e *Engine) OnOutcome(fn func(Outcome)) {
	e.mu.Lock()
	e.sink = fn
	e.mu.Unlock()
}

// Schedule records a coordinate change and arms the debounce timer.
// The returned outcome is the immediate transition (pending, failed or idle).
func (e *Engine) Schedule(c model.Coordinates) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	tok, immediate, ok := e.beginLocked(c)
	if !ok {
		return immediate
	}

	e.timer = time.AfterFunc(e.cfg.Debounce, func() {
		if !e.IsCurrent(tok) {
			return
		}
		out := e.resolve(e.baseCtx, tok, c)

		e.mu.Lock()
		sink := e.sink
		current := tok == e.token && !e.closed
		e.mu.Unlock()

		if !current {
			e.logger.Debug("discarding superseded geocode outcome", zap.Uint64("token", tok))
			return
		}
		if sink != nil {
			sink(out)
		}
	})

	return immediate
}

// LookupNow bypasses the debounce window and resolves synchronously.
func (e *Engine) LookupNow(ctx context.Context, c model.Coordinates) Outcome {
	e.mu.Lock()
	tok, immediate, ok := e.beginLocked(c)
	e.mu.Unlock()
	if !ok {
		return immediate
	}
	return e.resolve(ctx, tok, c)
}

// IsCurrent reports whether token belongs to the most recent coordinate change.
func (e *Engine) IsCurrent(token uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return token == e.token && !e.closed
}

func (e *Engine) Status() model.LocationStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return model.LocationStatus{
		State:   string(e.state),
		Reason:  e.reason,
		Token:   e.token,
		Address: e.address,
	}
}

// Reset invalidates pending and in-flight lookups and returns to idle.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.token++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.setLocked(enums.LookupStateIdle, "", "")
}

// Close stops the timer and invalidates any in-flight lookup.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.token++
	if e.timer != nil {
		e.timer.Stop()
	}
	e.cancel()
}

func (e *Engine) beginLocked(c model.Coordinates) (uint64, Outcome, bool) {
	if e.closed {
		return 0, Outcome{Coordinates: c, State: enums.LookupStateFailed, Err: &GeocodeError{Reason: ReasonClosed, Err: ErrClosed}}, false
	}

	e.token++
	tok := e.token
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}

	if !c.Present() || !finite(c) {
		e.setLocked(enums.LookupStateIdle, "", "")
		return tok, Outcome{Token: tok, Coordinates: c, State: enums.LookupStateIdle}, false
	}
	if !e.cfg.Region.Contains(c.Lat, c.Lon) {
		e.setLocked(enums.LookupStateFailed, ReasonOutOfRegion, "")
		return tok, Outcome{
			Token:       tok,
			Coordinates: c,
			State:       enums.LookupStateFailed,
			Err:         &GeocodeError{Reason: ReasonOutOfRegion, Err: ErrOutOfRegion},
		}, false
	}

	e.setLocked(enums.LookupStatePending, "", "")
	return tok, Outcome{Token: tok, Coordinates: c, State: enums.LookupStatePending}, true
}

func (e *Engine) resolve(ctx context.Context, tok uint64, c model.Coordinates) Outcome {
	out := Outcome{Token: tok, Coordinates: c}

	if e.geocoder == nil {
		out.State = enums.LookupStateFailed
		out.Err = &GeocodeError{Reason: ReasonLookupFailed, Err: errors.New("geocoder is not configured")}
		e.finish(out)
		return out
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.cfg.LookupTimeout)
	defer cancel()

	result, err := e.geocoder.ReverseGeocode(lookupCtx, c.Lat, c.Lon)
	if err != nil {
		e.logger.Warn("reverse geocode failed",
			zap.Error(err),
			zap.Float64("lat", c.Lat),
			zap.Float64("lon", c.Lon),
		)
		out.State = enums.LookupStateFailed
		out.Err = &GeocodeError{Reason: ReasonLookupFailed, Err: err}
		e.finish(out)
		return out
	}

	out.State = enums.LookupStateResolved
	out.Enrichment = e.match(lookupCtx, result)
	e.finish(out)
	return out
}

func (e *Engine) match(ctx context.Context, result model.GeocodeResult) Enrichment {
	enrichment := buildEnrichment(result)
	if e.refs == nil {
		return enrichment
	}

	cities, err := e.refs.Cities(ctx)
	if err != nil {
		e.logger.Warn("load cities for geocode match", zap.Error(err))
		return enrichment
	}
	city, ok := MatchCity(result, cities)
	if !ok {
		return enrichment
	}
	enrichment.CityID = city.ID

	subCities, err := e.refs.SubCities(ctx, city.ID)
	if err != nil {
		e.logger.Warn("load sub-cities for geocode match", zap.Error(err), zap.String("city_id", city.ID))
		return enrichment
	}
	if sub, ok := MatchSubCity(result, subCities); ok {
		enrichment.SubCityID = sub.ID
	}

	return enrichment
}

func (e *Engine) finish(out Outcome) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if out.Token != e.token || e.closed {
		return
	}
	reason := ""
	var gerr *GeocodeError
	if errors.As(out.Err, &gerr) {
		reason = gerr.Reason
	}
	e.setLocked(out.State, reason, out.Enrichment.Result.FormattedAddress)
}

func (e *Engine) setLocked(state enums.LookupState, reason, address string) {
	e.state = state
	e.reason = reason
	e.address = address
}

func finite(c model.Coordinates) bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon) && !math.IsInf(c.Lat, 0) && !math.IsInf(c.Lon, 0)
}
