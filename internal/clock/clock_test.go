package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock(t *testing.T) {
	start := time.Date(2026, 10, 14, 8, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	c := NewFakeClock(start)

	assert.Equal(t, time.UTC, c.Now().Location())
	assert.True(t, c.Now().Equal(start))

	got := c.Advance(90 * time.Second)
	assert.True(t, got.Equal(start.Add(90*time.Second)))
	assert.Equal(t, got, c.Now())
}

func TestFakeClock_SetNormalisesToUTC(t *testing.T) {
	c := NewFakeClock(time.Unix(0, 0))
	target := time.Date(2027, 1, 2, 3, 4, 5, 0, time.FixedZone("WITA", 8*3600))

	c.Set(target)

	assert.Equal(t, time.UTC, c.Now().Location())
	assert.True(t, c.Now().Equal(target))
}

func TestFakeClock_ConcurrentAdvance(t *testing.T) {
	start := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	var c Clock = NewFakeClock(start)
	fake := c.(*FakeClock)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fake.Advance(time.Second)
			_ = c.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, start.Add(50*time.Second), c.Now())
}

func TestSystemClockIsUTC(t *testing.T) {
	assert.Equal(t, time.UTC, New().Now().Location())
}
