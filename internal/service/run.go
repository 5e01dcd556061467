package service

import (
	"sort"
	"sync"
	"time"

	"CarnivalSync/internal/model"

	"github.com/google/uuid"
)

// maxErrorsInMessage error_message 中最多展开的单条错误数，完整列表在 metadata
const maxErrorsInMessage = 10

// EventError 单条赛事的处理错误
type EventError struct {
	Index        int    `json:"index"`
	Title        string `json:"title,omitempty"`
	MySidelineID string `json:"mysideline_id,omitempty"`
	Invalid      bool   `json:"invalid,omitempty"` // 数据不合法（而非存储错误）
	Error        string `json:"error"`
}

func newEventError(index int, raw *model.ScrapedEvent, err error) EventError {
	e := EventError{Index: index, Error: err.Error(), Invalid: IsInvalidEvent(err)}
	if raw != nil {
		e.Title = raw.Title
		if e.Title == "" {
			e.Title = raw.MySidelineTitle
		}
		e.MySidelineID = raw.MySidelineID
	}
	return e
}

// syncRun 单次同步的运行上下文，计数在并发处理时由 mu 保护
type syncRun struct {
	id        string
	logID     uint64
	source    string
	startedAt time.Time

	mu              sync.Mutex
	eventCount      int
	processed       int
	created         int
	updated         int
	failed          int
	skipped         int
	strategies      map[string]int
	errors          []EventError
	deactivated     int64
	deactivateError string
}

func newSyncRun(source string, now time.Time) *syncRun {
	return &syncRun{
		id:         uuid.NewString(),
		source:     source,
		startedAt:  now,
		strategies: make(map[string]int),
	}
}

func withEventCount(n int) func(*syncRun) {
	return func(r *syncRun) { r.eventCount = n }
}

func (r *syncRun) setEventCount(n int) {
	r.mu.Lock()
	r.eventCount = n
	r.mu.Unlock()
}

func (r *syncRun) recordSuccess(outcome, strategy string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed++
	switch outcome {
	case outcomeCreated:
		r.created++
	case outcomeUpdated:
		r.updated++
		r.strategies[strategy]++
	case outcomeSkipped:
		r.skipped++
	}
}

func (r *syncRun) recordFailure(e EventError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed++
	r.failed++
	r.errors = append(r.errors, e)
}

func (r *syncRun) setDeactivated(n int64) {
	r.mu.Lock()
	r.deactivated = n
	r.mu.Unlock()
}

func (r *syncRun) setDeactivateError(err error) {
	r.mu.Lock()
	r.deactivateError = err.Error()
	r.mu.Unlock()
}

func (r *syncRun) counts() model.SyncCounts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return model.SyncCounts{
		EventsProcessed: r.processed,
		EventsCreated:   r.created,
		EventsUpdated:   r.updated,
		EventsFailed:    r.failed,
	}
}

func (r *syncRun) startMetadata() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return map[string]interface{}{
		"run_id":      r.id,
		"source":      r.source,
		"event_count": r.eventCount,
	}
}

// metadata 结束时写入同步日志的统计
func (r *syncRun) metadata() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	strategies := make(map[string]int, len(r.strategies))
	for k, v := range r.strategies {
		strategies[k] = v
	}
	errs := r.sortedErrors()
	md := map[string]interface{}{
		"run_id":             r.id,
		"source":             r.source,
		"event_count":        r.eventCount,
		"events_failed":      r.failed,
		"events_skipped":     r.skipped,
		"events_deactivated": r.deactivated,
		"match_strategies":   strategies,
		"per_event_errors":   errs,
	}
	if r.deactivateError != "" {
		md["deactivate_error"] = r.deactivateError
	}
	return md
}

func (r *syncRun) errorSummary() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return joinErrors(r.sortedErrors(), maxErrorsInMessage)
}

// sortedErrors 按批次下标排序的副本，调用方需持有 mu
func (r *syncRun) sortedErrors() []EventError {
	errs := make([]EventError, len(r.errors))
	copy(errs, r.errors)
	sort.Slice(errs, func(i, j int) bool { return errs[i].Index < errs[j].Index })
	return errs
}

func (r *syncRun) result() *SyncResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &SyncResult{
		EventsProcessed:   r.processed,
		EventsCreated:     r.created,
		EventsUpdated:     r.updated,
		EventsFailed:      r.failed,
		EventsSkipped:     r.skipped,
		EventsDeactivated: r.deactivated,
		LogID:             r.logID,
		RunID:             r.id,
	}
}
