package mock

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/classifieds/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxRequestLog = 10000

// RequestLogEntry is one served request as it appears in log reports.
type RequestLogEntry struct {
	Time   time.Time
	Method string
	Path   string
	Status int
}

func (e RequestLogEntry) line() string {
	return fmt.Sprintf("%s %s %s %d\n", e.Time.UTC().Format(time.RFC3339), e.Method, e.Path, e.Status)
}

type logTask struct {
	date    string
	status  domain.LogTaskStatus
	content []byte
}

// RecordHit counts one visit of url.
func (b *Backend) RecordHit(url string) {
	b.mu.Lock()
	b.hits[url]++
	b.mu.Unlock()
}

// RecordRequest appends a served request to the request log and counts the hit.
func (b *Backend) RecordRequest(method, path string, status int) {
	entry := RequestLogEntry{Time: b.now().UTC(), Method: method, Path: path, Status: status}
	b.mu.Lock()
	b.hits[path]++
	b.requests = append(b.requests, entry)
	if len(b.requests) > maxRequestLog {
		b.requests = append([]RequestLogEntry(nil), b.requests[len(b.requests)-maxRequestLog:]...)
	}
	b.mu.Unlock()
}

func (b *Backend) GetHitStatistics(ctx context.Context, token string) (map[string]int64, error) {
	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	if _, err := b.authorize(token, domain.RoleAdmin); err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[string]int64, len(b.hits))
	for url, n := range b.hits {
		out[url] = n
	}
	return out, nil
}

// parseDate accepts an empty string as today.
func (b *Backend) parseDate(date string) (time.Time, error) {
	today := b.now().UTC().Truncate(24 * time.Hour)
	if date == "" {
		return today, nil
	}
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must look like %s", domain.ErrInvalidInput, domain.DateLayout)
	}
	return d, nil
}

// render returns the request log lines recorded on day.
func (b *Backend) render(day time.Time) []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var buf bytes.Buffer
	next := day.Add(24 * time.Hour)
	for _, e := range b.requests {
		if !e.Time.Before(day) && e.Time.Before(next) {
			buf.WriteString(e.line())
		}
	}
	return buf.Bytes()
}

// GenerateLogReport starts rendering the request log of date in the
// background. Reports for future dates end up FAILED.
func (b *Backend) GenerateLogReport(ctx context.Context, token string, date string) (*domain.LogTask, error) {
	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	if _, err := b.authorize(token, domain.RoleAdmin); err != nil {
		return nil, err
	}
	day, err := b.parseDate(date)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: backend is closed", domain.ErrUnavailable)
	}
	b.tasks[id] = &logTask{date: day.Format(domain.DateLayout), status: domain.LogTaskPending}
	b.wg.Add(1)
	b.mu.Unlock()

	go b.runLogTask(id, day)

	b.log.Info("Log report started", zap.String("task_id", id), zap.String("date", day.Format(domain.DateLayout)))
	return &domain.LogTask{TaskID: id}, nil
}

func (b *Backend) setTask(id string, status domain.LogTaskStatus, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.tasks[id]; ok {
		t.status = status
		t.content = content
	}
}

func (b *Backend) runLogTask(id string, day time.Time) {
	defer b.wg.Done()
	b.setTask(id, domain.LogTaskInProgress, nil)

	if err := b.delay(b.ctx); err != nil {
		b.setTask(id, domain.LogTaskFailed, nil)
		return
	}
	if day.After(b.now().UTC()) {
		b.log.Warn("Log report for a future date", zap.String("task_id", id))
		b.setTask(id, domain.LogTaskFailed, nil)
		return
	}
	b.setTask(id, domain.LogTaskDone, b.render(day))
}

func (b *Backend) task(token, taskID string) (logTask, error) {
	if _, err := b.authorize(token, domain.RoleAdmin); err != nil {
		return logTask{}, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tasks[taskID]
	if !ok {
		return logTask{}, fmt.Errorf("log task %s: %w", taskID, domain.ErrNotFound)
	}
	return *t, nil
}

func (b *Backend) GetLogTaskStatus(ctx context.Context, token, taskID string) (*domain.LogTaskState, error) {
	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	t, err := b.task(token, taskID)
	if err != nil {
		return nil, err
	}
	return &domain.LogTaskState{TaskID: taskID, Status: t.status}, nil
}

// DownloadGeneratedLog returns the report of a finished task. Unfinished and
// failed tasks report ErrNotFound.
func (b *Backend) DownloadGeneratedLog(ctx context.Context, token, taskID string) ([]byte, error) {
	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	t, err := b.task(token, taskID)
	if err != nil {
		return nil, err
	}
	if t.status != domain.LogTaskDone {
		return nil, fmt.Errorf("log task %s is %s: %w", taskID, t.status, domain.ErrNotFound)
	}
	return append([]byte{}, t.content...), nil
}

// DownloadArchivedLog returns the request log of a past day. Today is not
// archived yet.
func (b *Backend) DownloadArchivedLog(ctx context.Context, token, date string) ([]byte, error) {
	if err := b.delay(ctx); err != nil {
		return nil, err
	}
	if _, err := b.authorize(token, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if date == "" {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	day, err := b.parseDate(date)
	if err != nil {
		return nil, err
	}
	if !day.Before(b.now().UTC().Truncate(24 * time.Hour)) {
		return nil, fmt.Errorf("archive for %s: %w", date, domain.ErrNotFound)
	}
	content := b.render(day)
	if len(content) == 0 {
		return nil, fmt.Errorf("archive for %s: %w", date, domain.ErrNotFound)
	}
	return content, nil
}
