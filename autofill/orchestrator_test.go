package autofill

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"jobfill/models"
)

const applicationForm = `
<h1 class="job-title">Backend Engineer</h1>
<div class="company-name">Acme Corp</div>
<form id="apply">
  <label for="first">First Name</label><input id="first" name="first_name">
  <label for="last">Last Name</label><input id="last" name="last_name">
  <label for="email">Email</label><input id="email" name="email" type="email">
  <label for="pw">Password</label><input id="pw" name="password" type="password">
  <input type="hidden" name="csrf_token" value="abc">
  <label for="card">Card number</label><input id="card" name="card_number">
  <label for="state">State</label>
  <select id="state" name="state"><option value="">Select...</option><option value="IL">Illinois</option><option value="CA">California</option></select>
  <fieldset>
    <legend>Will you require visa sponsorship?</legend>
    <label><input type="radio" name="sponsor" id="sy" value="yes">Yes</label>
    <label><input type="radio" name="sponsor" id="sn" value="no">No</label>
  </fieldset>
  <label><input type="checkbox" id="terms" name="terms"> I agree to the terms and conditions</label>
  <label><input type="checkbox" id="news" name="newsletter"> Send me the marketing newsletter</label>
</form>`

type recordingSink struct {
	mu   sync.Mutex
	apps []*models.Application
	err  error
}

func (s *recordingSink) LogApplication(ctx context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps = append(s.apps, app)
	return s.err
}

func (s *recordingSink) logged() []*models.Application {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Application(nil), s.apps...)
}

type staticSources struct {
	profile  *models.Profile
	settings models.Settings
	err      error
}

func (s staticSources) Profile(context.Context) (*models.Profile, error) { return s.profile, s.err }

func (s staticSources) Settings(context.Context) (models.Settings, error) { return s.settings, s.err }

func newOrchestrator(t *testing.T, clock Clock, opts ...Option) *Orchestrator {
	t.Helper()
	base := []Option{
		WithLogger(zaptest.NewLogger(t)),
		WithClock(clock),
		WithRand(rand.New(rand.NewSource(7))),
	}
	o := NewOrchestrator(append(base, opts...)...)
	o.UpdateProfile(testProfile())
	o.UpdateSettings(instantSettings())
	return o
}

func TestOrchestrator_FillsForm(t *testing.T) {
	page := newPage(t, applicationForm)
	o := newOrchestrator(t, &fakeClock{})

	res := o.Fill(context.Background(), page)
	assert.Equal(t, 6, res.Filled)
	assert.NotEmpty(t, res.RunID)

	doc := page.Document()
	assert.Equal(t, "Jane", doc.ElementByID("first").Value())
	assert.Equal(t, "Q Doe", doc.ElementByID("last").Value())
	assert.Equal(t, "jane@example.com", doc.ElementByID("email").Value())
	assert.Equal(t, "", doc.ElementByID("pw").Value())
	assert.Equal(t, "", doc.ElementByID("card").Value())
	assert.Equal(t, "IL", doc.ElementByID("state").Value())
	assert.True(t, doc.ElementByID("sn").Checked())
	assert.False(t, doc.ElementByID("sy").Checked())
	assert.True(t, doc.ElementByID("terms").Checked())
	assert.False(t, doc.ElementByID("news").Checked())

	var fields []string
	for _, f := range res.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"first_name", "last_name", "email", "state", "sponsor", "terms"}, fields)
	assert.Equal(t, CatSponsorship, res.Fields[4].Category)
	assert.Equal(t, "radio-group", res.Fields[4].Kind)
	assert.False(t, o.Filling())
}

func TestOrchestrator_FlatQuestionsAnsweredSeparately(t *testing.T) {
	page := newPage(t, flatQuestions)
	o := newOrchestrator(t, &fakeClock{})

	res := o.Fill(context.Background(), page)
	require.Equal(t, 2, res.Filled)

	doc := page.Document()
	assert.True(t, doc.ElementByID("ay").Checked())
	assert.False(t, doc.ElementByID("an").Checked())
	assert.True(t, doc.ElementByID("sn").Checked())
	assert.False(t, doc.ElementByID("sy").Checked())

	categories := map[string]Category{}
	for _, f := range res.Fields {
		categories[f.Field] = f.Category
	}
	assert.Equal(t, map[string]Category{"auth": CatWorkAuth, "spons": CatSponsorship}, categories)
}

func TestOrchestrator_SiblingCheckboxesJudgedAlone(t *testing.T) {
	page := newPage(t, `
<div>
  <input type="checkbox" id="terms" name="terms"><label for="terms">I agree to the terms</label>
  <input type="checkbox" id="alerts" name="alerts"><label for="alerts">Send me job alerts by text</label>
</div>`)
	o := newOrchestrator(t, &fakeClock{})

	res := o.Fill(context.Background(), page)
	assert.Equal(t, 1, res.Filled)
	assert.True(t, page.Document().ElementByID("terms").Checked())
	assert.False(t, page.Document().ElementByID("alerts").Checked())
}

func TestOrchestrator_SecondRunFillsNothing(t *testing.T) {
	page := newPage(t, applicationForm)
	o := newOrchestrator(t, &fakeClock{})

	first := o.Fill(context.Background(), page)
	require.Equal(t, 6, first.Filled)
	writes := page.Writes()

	second := o.Fill(context.Background(), page)
	assert.Equal(t, 0, second.Filled)
	assert.Equal(t, writes, page.Writes())
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestOrchestrator_KeepsExistingValues(t *testing.T) {
	page := newPage(t, `
<label for="first">First Name</label><input id="first" name="first_name" value="Janie">
<label for="email">Email</label><input id="email" name="email">`)
	o := newOrchestrator(t, &fakeClock{})

	res := o.Fill(context.Background(), page)
	assert.Equal(t, 1, res.Filled)
	assert.Equal(t, "Janie", page.Document().ElementByID("first").Value())
}

func TestOrchestrator_RejectsReentry(t *testing.T) {
	page := newPage(t, applicationForm)
	clock := newBlockingClock()
	o := newOrchestrator(t, clock)

	done := make(chan FillResult)
	go func() { done <- o.Fill(context.Background(), page) }()

	select {
	case <-clock.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first fill never reached a delay")
	}
	assert.True(t, o.Filling())

	res := o.Fill(context.Background(), page)
	assert.Equal(t, FillResult{}, res)
	assert.Zero(t, page.Writes())

	close(clock.release)
	first := <-done
	assert.Equal(t, 6, first.Filled)
	assert.False(t, o.Filling())
}

func TestOrchestrator_Cancellation(t *testing.T) {
	page := newPage(t, applicationForm)
	clock := newBlockingClock()
	o := newOrchestrator(t, clock)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan FillResult)
	go func() { done <- o.Fill(ctx, page) }()

	<-clock.entered
	cancel()

	select {
	case res := <-done:
		assert.Equal(t, 0, res.Filled)
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled fill did not return")
	}
	assert.Zero(t, page.Writes())
	assert.False(t, o.Filling())
}

func TestOrchestrator_LogsApplication(t *testing.T) {
	page := newPage(t, applicationForm)
	sink := &recordingSink{}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	o := newOrchestrator(t, &fakeClock{}, WithSink(sink), WithNow(func() time.Time { return now }))

	res := o.Fill(context.Background(), page)
	o.Wait()

	apps := sink.logged()
	require.Len(t, apps, 1)
	app := apps[0]
	assert.Equal(t, "Acme Corp", app.Company)
	assert.Equal(t, "Backend Engineer", app.Position)
	assert.Equal(t, "Greenhouse", app.Platform)
	assert.Equal(t, models.StatusApplied, app.Status)
	assert.Equal(t, page.URL(), app.JobURL)
	assert.True(t, app.AutoFilled)
	assert.Equal(t, res.Filled, app.FieldsFilled)
	assert.Equal(t, res.RunID, app.RunID)
	assert.Equal(t, now, app.AppliedDate)
}

func TestOrchestrator_LogSinkFailureIsSwallowed(t *testing.T) {
	page := newPage(t, applicationForm)
	core, logs := observer.New(zap.WarnLevel)
	sink := &recordingSink{err: errors.New("api down")}
	o := newOrchestrator(t, &fakeClock{}, WithSink(sink), WithLogger(zap.New(core)))

	res := o.Fill(context.Background(), page)
	o.Wait()

	assert.Equal(t, 6, res.Filled)
	assert.Equal(t, 1, logs.FilterMessage("failed to log application").Len())
}

func TestOrchestrator_NoLogWhenDisabledOrEmpty(t *testing.T) {
	sink := &recordingSink{}
	o := newOrchestrator(t, &fakeClock{}, WithSink(sink))

	settings := instantSettings()
	settings.SaveApplications = false
	o.UpdateSettings(settings)
	o.Fill(context.Background(), newPage(t, applicationForm))

	o.UpdateSettings(instantSettings())
	res := o.Fill(context.Background(), newPage(t, `<input id="x" name="favorite_color">`))
	o.Wait()

	assert.Equal(t, 0, res.Filled)
	assert.Empty(t, sink.logged())
}

func TestOrchestrator_InitDegradesGracefully(t *testing.T) {
	o := NewOrchestrator(WithLogger(zaptest.NewLogger(t)), WithClock(&fakeClock{}), WithRand(rand.New(rand.NewSource(1))))

	err := o.Init(context.Background(), staticSources{err: errors.New("offline")}, staticSources{err: errors.New("offline")})
	require.Error(t, err)

	// only the consent checkbox needs no profile
	res := o.Fill(context.Background(), newPage(t, applicationForm))
	assert.Equal(t, 1, res.Filled)
}

func TestOrchestrator_InitLoadsSources(t *testing.T) {
	o := NewOrchestrator(WithLogger(zaptest.NewLogger(t)), WithClock(&fakeClock{}), WithRand(rand.New(rand.NewSource(1))))
	src := staticSources{profile: testProfile(), settings: instantSettings()}

	require.NoError(t, o.Init(context.Background(), src, src))

	res := o.Fill(context.Background(), newPage(t, applicationForm))
	assert.Equal(t, 6, res.Filled)
}

func TestOrchestrator_ProfileSnapshotIsCopied(t *testing.T) {
	o := newOrchestrator(t, &fakeClock{})
	p := testProfile()
	o.UpdateProfile(p)
	p.PersonalInfo.FullName = "Someone Else"

	page := newPage(t, `<label for="first">First Name</label><input id="first" name="first_name">`)
	o.Fill(context.Background(), page)
	assert.Equal(t, "Jane", page.Document().ElementByID("first").Value())
}

func TestOrchestrator_HumanTypingSleepsBetweenKeys(t *testing.T) {
	clock := &fakeClock{}
	o := newOrchestrator(t, clock)
	settings := models.DefaultSettings()
	settings.RandomDelays = false
	o.UpdateSettings(settings)

	page := newPage(t, `<label for="first">First Name</label><input id="first" name="first_name">`)
	res := o.Fill(context.Background(), page)
	require.Equal(t, 1, res.Filled)

	// approach: 200ms + 100-250ms; typing: 100-300ms + 4 keys of 50-150ms
	total := clock.total()
	assert.GreaterOrEqual(t, total, 600*time.Millisecond)
	assert.LessOrEqual(t, total, 1350*time.Millisecond)
}
