package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/atena-events/backend/internal/models"
)

func iv(startMin, endMin int) Interval {
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	return Interval{
		Start: base.Add(time.Duration(startMin) * time.Minute),
		End:   base.Add(time.Duration(endMin) * time.Minute),
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", iv(0, 60), iv(120, 180), false},
		{"contained", iv(0, 120), iv(30, 60), true},
		{"partial", iv(0, 60), iv(30, 90), true},
		{"identical", iv(0, 60), iv(0, 60), true},
		{"touching boundaries do not conflict", iv(0, 60), iv(60, 120), false},
		{"touching reversed", iv(60, 120), iv(0, 60), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

func TestConflicts(t *testing.T) {
	a := []Interval{iv(0, 60), iv(120, 180)}
	b := []Interval{iv(60, 120), iv(240, 300)}
	assert.False(t, Conflicts(a, b))
	assert.False(t, Conflicts(b, a))

	c := []Interval{iv(150, 210)}
	assert.True(t, Conflicts(a, c))
	assert.True(t, Conflicts(c, a))

	assert.False(t, Conflicts(nil, a))
	assert.False(t, Conflicts(a, nil))
}

func TestIntervalOf(t *testing.T) {
	start := time.Date(2026, 5, 2, 14, 0, 0, 0, time.UTC)
	s := models.Schedule{ID: uuid.New(), StartDate: start, DurationInMinutes: 90}
	got := IntervalOf(s)
	assert.Equal(t, start, got.Start)
	assert.Equal(t, start.Add(90*time.Minute), got.End)
}
