// internal/app/status_poller.go
package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"homework_status_bot/internal/domain/homework"
	"homework_status_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// Fetcher retrieves the raw status response for a cursor.
type Fetcher interface {
	Fetch(ctx context.Context, cursor int64) (homework.RawResponse, error)
}

// Notifier delivers a message to the configured recipient.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Metrics receives poll loop observations.
type Metrics interface {
	RecordPoll(outcome string)
	RecordNotification(outcome string)
	RecordFetchLatency(d time.Duration)
	SetCursor(cursor int64)
}

type nopMetrics struct{}

func (nopMetrics) RecordPoll(string)                {}
func (nopMetrics) RecordNotification(string)        {}
func (nopMetrics) RecordFetchLatency(time.Duration) {}
func (nopMetrics) SetCursor(int64)                  {}

// Snapshot is a copy of the poller state at one point in time.
type Snapshot struct {
	Cursor       int64
	LastMessage  string
	LastPolledAt time.Time
	LastError    string
}

// StatusPoller checks the homework status API once per Step and notifies
// the user when the formatted status of the latest homework changes.
type StatusPoller struct {
	fetcher  Fetcher
	notifier Notifier
	metrics  Metrics
	logger   *logrus.Entry
	now      func() time.Time

	mu           sync.Mutex // guards the fields below for Snapshot readers
	cursor       int64
	lastMessage  string
	lastPolledAt time.Time
	lastError    string
}

func NewStatusPoller(
	fetcher Fetcher,
	notifier Notifier,
	m Metrics,
	logger *logrus.Entry,
	startCursor int64,
) *StatusPoller {
	if m == nil {
		m = nopMetrics{}
	}
	m.SetCursor(startCursor)
	return &StatusPoller{
		fetcher:  fetcher,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		cursor:   startCursor,
	}
}

// Step runs one fetch-validate-format-notify iteration. It never returns an
// error: failures are logged and reported to the user as a diagnostic message.
func (p *StatusPoller) Step(ctx context.Context) {
	message, err := p.safePoll(ctx)

	p.mu.Lock()
	p.lastPolledAt = p.now()
	p.lastError = ""
	if err != nil {
		p.lastError = err.Error()
	}
	p.mu.Unlock()

	if err != nil && ctx.Err() != nil {
		p.logger.WithError(err).Info("Status check interrupted by shutdown")
		return
	}

	if err != nil {
		p.metrics.RecordPoll(metrics.OutcomeFailure)
		p.logger.WithError(err).Error("Homework status check failed")
		message = DiagnosticMessage(err)
	} else if message == "" {
		p.metrics.RecordPoll(metrics.OutcomeEmpty)
		p.logger.Debug("No homework status changes since the last check")
		return
	} else {
		p.metrics.RecordPoll(metrics.OutcomeSuccess)
	}

	p.deliver(ctx, message)
}

// poll returns the message describing the latest homework, or "" when the
// API reported no records since the cursor.
func (p *StatusPoller) poll(ctx context.Context) (string, error) {
	cursor := p.Cursor()

	started := p.now()
	raw, err := p.fetcher.Fetch(ctx, cursor)
	p.metrics.RecordFetchLatency(p.now().Sub(started))
	if err != nil {
		return "", err
	}

	if next, ok := homework.NextCursor(raw); ok && next != cursor {
		p.mu.Lock()
		p.cursor = next
		p.mu.Unlock()
		p.metrics.SetCursor(next)
		p.logger.WithFields(logrus.Fields{"from": cursor, "to": next}).Debug("Cursor advanced")
	}

	records, err := homework.ExtractRecords(raw)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}

	rec, err := homework.AsRecord(records[0])
	if err != nil {
		return "", err
	}
	return homework.FormatStatus(rec)
}

// safePoll turns a panic inside poll into an error so it is reported like any other failure.
func (p *StatusPoller) safePoll(ctx context.Context) (message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.WithField("stack", string(debug.Stack())).Error("Poll iteration panicked")
			message = ""
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return p.poll(ctx)
}

// deliver sends message unless it repeats the last one. The last message is
// updated even when delivery fails so a broken channel does not cause a resend every interval.
func (p *StatusPoller) deliver(ctx context.Context, message string) {
	p.mu.Lock()
	duplicate := message == p.lastMessage
	if !duplicate {
		p.lastMessage = message
	}
	p.mu.Unlock()

	if duplicate {
		p.metrics.RecordNotification(metrics.OutcomeSuppressed)
		p.logger.Debug("Message equals the last notification, skipping")
		return
	}

	if err := p.notifier.Notify(ctx, message); err != nil {
		p.metrics.RecordNotification(metrics.OutcomeFailure)
		p.logger.WithError(err).Error("Failed to deliver notification")
		return
	}
	p.metrics.RecordNotification(metrics.OutcomeSuccess)
	p.logger.Info("Notification sent")
}

// Cursor returns the from_date value used by the next fetch.
func (p *StatusPoller) Cursor() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

// Snapshot returns the current poller state.
func (p *StatusPoller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Cursor:       p.cursor,
		LastMessage:  p.lastMessage,
		LastPolledAt: p.lastPolledAt,
		LastError:    p.lastError,
	}
}

// DiagnosticMessage turns an iteration failure into the text sent to the user.
func DiagnosticMessage(err error) string {
	return fmt.Sprintf("Program malfunction: %v", err)
}
