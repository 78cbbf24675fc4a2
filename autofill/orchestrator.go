package autofill

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jobfill/dom"
	"jobfill/models"
)

const logApplicationTimeout = 10 * time.Second

// ProfileSource supplies the profile a fill pass resolves values from.
type ProfileSource interface {
	Profile(ctx context.Context) (*models.Profile, error)
}

// SettingsSource supplies the typing and logging settings.
type SettingsSource interface {
	Settings(ctx context.Context) (models.Settings, error)
}

// ApplicationLogger records a completed fill pass.
type ApplicationLogger interface {
	LogApplication(ctx context.Context, app *models.Application) error
}

// FieldReport names one filled control. Values are never reported.
type FieldReport struct {
	Field    string   `json:"field"`
	Kind     string   `json:"kind"`
	Category Category `json:"category,omitempty"`
}

// FillResult is the outcome of one Fill call.
type FillResult struct {
	Filled int           `json:"filled"`
	RunID  string        `json:"run_id,omitempty"`
	Fields []FieldReport `json:"fields,omitempty"`
}

// Orchestrator runs fill passes over pages. At most one pass runs at a
// time; a call made while one is running returns an empty result.
type Orchestrator struct {
	filling atomic.Bool

	mu       sync.RWMutex
	profile  *models.Profile
	settings models.Settings

	resolver    *Resolver
	intro       Introspector
	controllers map[WidgetKind]Controller
	clock       Clock
	rng         *rand.Rand
	sink        ApplicationLogger
	logger      *zap.Logger
	now         func() time.Time

	wg sync.WaitGroup
}

type Option func(*Orchestrator)

func WithLogger(l *zap.Logger) Option { return func(o *Orchestrator) { o.logger = l } }

func WithClock(c Clock) Option { return func(o *Orchestrator) { o.clock = c } }

// WithRand fixes the random source behind every delay and jitter.
func WithRand(r *rand.Rand) Option { return func(o *Orchestrator) { o.rng = r } }

func WithSink(s ApplicationLogger) Option { return func(o *Orchestrator) { o.sink = s } }

func WithResolver(r *Resolver) Option { return func(o *Orchestrator) { o.resolver = r } }

// WithController replaces the controller for one widget kind.
func WithController(kind WidgetKind, c Controller) Option {
	return func(o *Orchestrator) { o.controllers[kind] = c }
}

func WithNow(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		settings: models.DefaultSettings(),
		resolver: NewResolver(nil, nil),
		controllers: map[WidgetKind]Controller{
			KindText:         TextController{},
			KindSelect:       SelectController{},
			KindRadioGroup:   RadioController{},
			KindCheckbox:     CheckboxController{},
			KindAutocomplete: AutocompleteController{},
		},
		clock:  RealClock{},
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(o.now().UnixNano()))
	}
	return o
}

// Init loads the profile and settings. A source that fails leaves its
// previous value in place (no profile, default settings) and the error is
// returned for the caller to report; the orchestrator stays usable.
func (o *Orchestrator) Init(ctx context.Context, profiles ProfileSource, settings SettingsSource) error {
	var errs []error
	if profiles != nil {
		p, err := profiles.Profile(ctx)
		if err != nil {
			o.logger.Warn("failed to load profile", zap.Error(err))
			errs = append(errs, fmt.Errorf("load profile: %w", err))
		} else {
			o.UpdateProfile(p)
		}
	}
	if settings != nil {
		s, err := settings.Settings(ctx)
		if err != nil {
			o.logger.Warn("failed to load settings", zap.Error(err))
			errs = append(errs, fmt.Errorf("load settings: %w", err))
		} else {
			o.UpdateSettings(s)
		}
	}
	return errors.Join(errs...)
}

// UpdateProfile replaces the profile used by subsequent passes. A pass in
// progress keeps the profile it started with.
func (o *Orchestrator) UpdateProfile(p *models.Profile) {
	var snapshot *models.Profile
	if p != nil {
		cp := *p
		snapshot = &cp
	}
	o.mu.Lock()
	o.profile = snapshot
	o.mu.Unlock()
}

func (o *Orchestrator) UpdateSettings(s models.Settings) {
	o.mu.Lock()
	o.settings = s
	o.mu.Unlock()
}

// Filling reports whether a pass is in progress.
func (o *Orchestrator) Filling() bool { return o.filling.Load() }

// Wait blocks until pending application logs have been delivered.
func (o *Orchestrator) Wait() { o.wg.Wait() }

// Fill runs one pass over page and returns what it filled. It never fails:
// a field that cannot be filled is skipped, and a cancelled ctx ends the
// pass early with the count so far.
func (o *Orchestrator) Fill(ctx context.Context, page dom.Page) FillResult {
	if !o.filling.CompareAndSwap(false, true) {
		o.logger.Info("fill already in progress")
		return FillResult{}
	}
	defer o.filling.Store(false)

	o.mu.RLock()
	profile, settings := o.profile, o.settings
	o.mu.RUnlock()

	result := FillResult{RunID: uuid.NewString()}
	log := o.logger.With(zap.String("run_id", result.RunID))
	log.Info("fill started", zap.String("url", page.URL()))

	doc, err := page.Snapshot(ctx)
	if err != nil {
		log.Warn("failed to read page", zap.Error(err))
		return result
	}

	r := &run{
		o:       o,
		profile: profile,
		log:     log,
		result:  &result,
		session: &Session{
			Page:    page,
			Doc:     doc,
			Cadence: NewCadence(settings, o.rng),
			Clock:   o.clock,
			Logger:  log,
		},
	}
	r.pass(ctx, Discover(doc))

	log.Info("fill finished", zap.Int("filled", result.Filled), zap.Bool("cancelled", ctx.Err() != nil))

	if settings.SaveApplications && result.Filled > 0 && o.sink != nil {
		o.logApplication(page, doc, result, log)
	}
	return result
}

// run is the state of one pass.
type run struct {
	o       *Orchestrator
	profile *models.Profile
	session *Session
	log     *zap.Logger
	result  *FillResult
}

func (r *run) pass(ctx context.Context, controls Controls) {
	r.log.Debug("controls discovered",
		zap.Int("texts", len(controls.Texts)),
		zap.Int("selects", len(controls.Selects)),
		zap.Int("radio_groups", len(controls.RadioGroups)),
		zap.Int("checkboxes", len(controls.Checkboxes)),
	)
	intro := r.o.intro

	for _, el := range controls.Texts {
		if ctx.Err() != nil {
			return
		}
		if strings.TrimSpace(el.Value()) != "" {
			continue
		}
		f := intro.Describe(el)
		res, ok := r.o.resolver.Resolve(f, r.profile)
		if !ok {
			continue
		}
		if err := r.session.approach(ctx, el); err != nil {
			r.skip(f, err)
			continue
		}
		if r.attempt(ctx, f, res) && r.session.Cadence.RandomDelays() {
			r.between(ctx, 300, 1000)
		}
	}

	for _, el := range controls.Selects {
		if ctx.Err() != nil {
			return
		}
		if !selectUnset(el, el.Options()) {
			continue
		}
		f := intro.Describe(el)
		res, ok := r.o.resolver.Resolve(f, r.profile)
		if !ok {
			continue
		}
		if r.attempt(ctx, f, res) && r.session.Cadence.RandomDelays() {
			r.between(ctx, 200, 600)
		}
	}

	for _, members := range controls.RadioGroups {
		if ctx.Err() != nil {
			return
		}
		if r.profile == nil || anyChecked(members) {
			continue
		}
		f := intro.DescribeGroup(members)
		res, ok := r.o.resolver.ResolveChoice(f.Text)
		if !ok {
			continue
		}
		r.attempt(ctx, f, res)
	}

	for _, el := range controls.Checkboxes {
		if ctx.Err() != nil {
			return
		}
		if el.Checked() {
			continue
		}
		r.attempt(ctx, intro.Describe(el), Resolution{})
	}
}

// attempt hands f to its controller and records a success.
func (r *run) attempt(ctx context.Context, f *Field, res Resolution) bool {
	c, ok := r.o.controllers[f.Kind]
	if !ok {
		return false
	}
	filled, err := c.AttemptFill(ctx, r.session, f, res)
	if err != nil {
		r.skip(f, err)
		return false
	}
	if !filled {
		return false
	}
	r.result.Filled++
	r.result.Fields = append(r.result.Fields, FieldReport{Field: f.Key(), Kind: f.Kind.String(), Category: res.Category})
	r.log.Debug("field filled",
		zap.String("field", f.Key()),
		zap.Stringer("kind", f.Kind),
		zap.String("category", string(res.Category)),
	)
	return true
}

func (r *run) skip(f *Field, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	r.log.Warn("field skipped", zap.String("field", f.Key()), zap.Stringer("kind", f.Kind), zap.Error(err))
}

func (r *run) between(ctx context.Context, minMs, maxMs int) {
	_ = r.session.pause(ctx, minMs, maxMs)
}

// logApplication reports the pass to the sink in the background.
func (o *Orchestrator) logApplication(page dom.Page, doc *dom.Document, result FillResult, log *zap.Logger) {
	app := &models.Application{
		Company:      ExtractCompany(doc),
		Position:     ExtractJobTitle(doc),
		Platform:     DetectPlatform(page.URL()),
		Status:       models.StatusApplied,
		AppliedDate:  o.now(),
		JobURL:       page.URL(),
		AutoFilled:   true,
		FieldsFilled: result.Filled,
		RunID:        result.RunID,
	}
	app.ApplyDefaults(o.now())

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), logApplicationTimeout)
		defer cancel()
		if err := o.sink.LogApplication(ctx, app); err != nil {
			log.Warn("failed to log application", zap.Error(err))
			return
		}
		log.Debug("application logged", zap.String("platform", app.Platform))
	}()
}

func anyChecked(members []*dom.Element) bool {
	for _, m := range members {
		if m.Checked() {
			return true
		}
	}
	return false
}
