package application

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bnema/boardroom/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock(now time.Time, step time.Duration) *fakeClock {
	return &fakeClock{now: now, step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func testPersonas() []domain.Persona {
	return []domain.Persona{
		{ID: "garrett", Name: "Garrett", Title: "Chief Executive Officer (CEO)", Department: "Executive", Expertise: []string{"Strategic Vision"}},
		{ID: "melon", Name: "Melon", Title: "Chief Operating Officer (COO)", Department: "Executive", Expertise: []string{"Operations Management"}},
		{ID: "steve", Name: "Steve", Title: "Chief Technology Officer (CTO)", Department: "Executive", Expertise: []string{"Technology Strategy"}},
		{ID: "xander", Name: "Xander", Title: "Chief Financial Officer (CFO)", Department: "Finance", Expertise: []string{"ROI Analysis"}},
	}
}

func testRegistry(t *testing.T) *PersonaRegistry {
	t.Helper()

	registry, err := NewPersonaRegistry(testPersonas())
	require.NoError(t, err)
	return registry
}

func personaWithID(id domain.PersonaID) interface{} {
	return mock.MatchedBy(func(p domain.Persona) bool { return p.ID == id })
}

func mockAnyContext() interface{} {
	return mock.Anything
}
