package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDue(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	now := time.Date(2026, 5, 10, 14, 0, 0, 0, loc)

	tests := []struct {
		name string
		due  time.Time
		want Urgency
	}{
		{"a minute ago", now.Add(-time.Minute), UrgencyOverdue},
		{"right now", now, UrgencyDueSoon},
		{"in ninety minutes", now.Add(90 * time.Minute), UrgencyDueSoon},
		{"exactly two hours", now.Add(2 * time.Hour), UrgencyDueToday},
		{"late tonight", time.Date(2026, 5, 10, 23, 59, 0, 0, loc), UrgencyDueToday},
		{"midnight", time.Date(2026, 5, 11, 0, 0, 0, 0, loc), UrgencyDueTomorrow},
		{"tomorrow evening", time.Date(2026, 5, 11, 20, 0, 0, 0, loc), UrgencyDueTomorrow},
		{"day after", time.Date(2026, 5, 12, 0, 0, 0, 0, loc), UrgencyDueLater},
		{"tomorrow in UTC terms", time.Date(2026, 5, 10, 15, 30, 0, 0, time.UTC), UrgencyDueTomorrow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := tt.due
			assert.Equal(t, tt.want, ClassifyDue(now, &due))
		})
	}
}

func TestClassifyDue_NoDueDate(t *testing.T) {
	assert.Equal(t, UrgencyNone, ClassifyDue(time.Now(), nil))
}

func TestUrgencyLabel(t *testing.T) {
	due := time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Overdue", UrgencyOverdue.Label(&due))
	assert.Equal(t, "Jul 4, 2026", UrgencyDueLater.Label(&due))
	assert.Equal(t, "", UrgencyNone.Label(nil))
}
