package autofill

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"jobfill/dom"
	"jobfill/models"
)

// fakeClock records requested sleeps and returns immediately.
type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *fakeClock) total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum time.Duration
	for _, d := range c.sleeps {
		sum += d
	}
	return sum
}

// blockingClock parks every sleep until released or ctx is done.
type blockingClock struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingClock() *blockingClock {
	return &blockingClock{entered: make(chan struct{}), release: make(chan struct{})}
}

func (c *blockingClock) Sleep(ctx context.Context, d time.Duration) error {
	c.once.Do(func() { close(c.entered) })
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.release:
		return nil
	}
}

func instantSettings() models.Settings {
	s := models.DefaultSettings()
	s.TypingSpeed = models.TypingInstant
	s.RandomDelays = false
	return s
}

func testProfile() *models.Profile {
	p := models.DefaultProfile()
	p.PersonalInfo = models.PersonalInfo{
		FullName:      "Jane Q Doe",
		Email:         "jane@example.com",
		Phone:         "555-0100",
		Linkedin:      "https://linkedin.com/in/janedoe",
		StreetAddress: "1 Main St",
		City:          "Springfield",
		State:         "IL",
		StateFull:     "Illinois",
		ZipCode:       "62701",
		Country:       "United States",
		CountryCode:   "US",
		Github:        "https://github.com/janedoe",
		Portfolio:     "https://jane.dev",
	}
	p.WorkExperience = []models.WorkExperience{{Title: "Staff Engineer", Company: "Acme", Current: true}}
	p.Education = []models.Education{{Degree: "BSc", Field: "Computer Science", Institution: "State University", GPA: "3.8"}}
	return p
}

func newPage(t *testing.T, body string) *dom.MemoryPage {
	t.Helper()
	page, err := dom.NewMemoryPage("https://boards.greenhouse.io/acme/jobs/1", "<html><body>"+body+"</body></html>")
	require.NoError(t, err)
	return page
}

func newSession(t *testing.T, page *dom.MemoryPage, settings models.Settings) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	doc, err := page.Snapshot(context.Background())
	require.NoError(t, err)
	return &Session{
		Page:    page,
		Doc:     doc,
		Cadence: NewCadence(settings, rand.New(rand.NewSource(1))),
		Clock:   clock,
		Logger:  zaptest.NewLogger(t),
	}, clock
}

// describe builds the Field for the element with the given id.
func describe(t *testing.T, page *dom.MemoryPage, id string) *Field {
	t.Helper()
	el := page.Document().ElementByID(id)
	require.NotNil(t, el, "element %q", id)
	return Introspector{}.Describe(el)
}
