package workflow

import "time"

// Urgency is a read-only classification of a due date relative to now. It
// is advisory and never gates a transition.
type Urgency string

const (
	UrgencyNone        Urgency = ""
	UrgencyOverdue     Urgency = "overdue"
	UrgencyDueSoon     Urgency = "due-soon"
	UrgencyDueToday    Urgency = "due-today"
	UrgencyDueTomorrow Urgency = "due-tomorrow"
	UrgencyDueLater    Urgency = "due-later"
)

// DueSoonWindow is how far ahead a due date counts as urgent.
const DueSoonWindow = 2 * time.Hour

// ClassifyDue buckets due relative to now. Day boundaries are computed in
// now's location. A nil due date has no urgency.
func ClassifyDue(now time.Time, due *time.Time) Urgency {
	if due == nil {
		return UrgencyNone
	}
	d := *due

	startOfTomorrow := startOfDay(now).AddDate(0, 0, 1)
	startOfDayAfter := startOfTomorrow.AddDate(0, 0, 1)

	switch {
	case d.Before(now):
		return UrgencyOverdue
	case d.Before(now.Add(DueSoonWindow)):
		return UrgencyDueSoon
	case d.Before(startOfTomorrow):
		return UrgencyDueToday
	case d.Before(startOfDayAfter):
		return UrgencyDueTomorrow
	default:
		return UrgencyDueLater
	}
}

// Label is the short text shown on a card; later dates render the date.
func (u Urgency) Label(due *time.Time) string {
	switch u {
	case UrgencyOverdue:
		return "Overdue"
	case UrgencyDueSoon:
		return "Due soon"
	case UrgencyDueToday:
		return "Due today"
	case UrgencyDueTomorrow:
		return "Due tomorrow"
	case UrgencyDueLater:
		if due != nil {
			return due.Format("Jan 2, 2006")
		}
	}
	return ""
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
