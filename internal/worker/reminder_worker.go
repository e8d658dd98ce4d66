package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/notify"
	"github.com/yukikurage/taskboard/internal/workflow"
	"go.uber.org/zap"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 5 * time.Minute

// TaskSource yields the current tasks.
type TaskSource interface {
	Snapshot() []models.Task
}

// ReminderWorker periodically looks for open tasks that are overdue or due
// soon and notifies once per task and bucket.
type ReminderWorker struct {
	source   TaskSource
	notifier notify.Notifier
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]workflow.Urgency

	done chan struct{}
}

type Option func(*ReminderWorker)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *ReminderWorker) {
		w.now = now
	}
}

func NewReminderWorker(source TaskSource, notifier notify.Notifier, log *zap.Logger, interval time.Duration, opts ...Option) *ReminderWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	w := &ReminderWorker{
		source:   source,
		notifier: notifier,
		log:      log,
		interval: interval,
		now:      time.Now,
		sent:     make(map[string]workflow.Urgency),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start runs Check on every tick until ctx is cancelled. It must be called at
// most once; Done is closed when it returns.
func (w *ReminderWorker) Start(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("reminder worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			w.log.Info("reminder worker stopping")
			return
		}
	}
}

// Done is closed once Start has returned. No reminder is sent after that.
func (w *ReminderWorker) Done() <-chan struct{} {
	return w.done
}

// Check classifies every open task and sends the reminders that are due. It
// returns how many were sent.
func (w *ReminderWorker) Check(ctx context.Context) int {
	start := time.Now()
	now := w.now()
	tasks := w.source.Snapshot()

	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]struct{}, len(tasks))
	sent := 0
	for _, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		seen[t.ID] = struct{}{}

		urgency := workflow.ClassifyDue(now, t.DueDate)
		if t.Status == models.TaskStatusDone || !remindable(urgency) {
			delete(w.sent, t.ID)
			continue
		}
		if w.sent[t.ID] == urgency {
			continue
		}
		w.sent[t.ID] = urgency
		w.notifier.Notify(reminderTitle(urgency), reminderMessage(t, urgency))
		sent++
	}
	for id := range w.sent {
		if _, ok := seen[id]; !ok {
			delete(w.sent, id)
		}
	}

	w.log.Debug("reminder check finished",
		zap.Duration("took", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("sent", sent),
	)
	return sent
}

func remindable(u workflow.Urgency) bool {
	return u == workflow.UrgencyOverdue || u == workflow.UrgencyDueSoon
}

func reminderTitle(u workflow.Urgency) string {
	if u == workflow.UrgencyOverdue {
		return "Task overdue"
	}
	return "Task due soon"
}

func reminderMessage(t models.Task, u workflow.Urgency) string {
	who := t.AssigneeName
	if who == "" {
		who = "unassigned"
	}
	return fmt.Sprintf("%q for %s: %s (due %s)", t.Title, who, u.Label(t.DueDate), t.DueDate.Format(time.RFC1123))
}
