package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"CarnivalSync/internal/config"
	"CarnivalSync/internal/interfaces"
	"CarnivalSync/internal/metrics"
	"CarnivalSync/internal/model"
	"CarnivalSync/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// 单条赛事处理结果
const (
	outcomeCreated = "created"
	outcomeUpdated = "updated"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped" // 外部 ID 已归手工记录
)

// SyncOptions 手动触发参数
type SyncOptions struct {
	Force bool // 跳过节流检查
}

// SyncResult 一次同步返回给调用方的结果，失败不抛出而是 Success=false
type SyncResult struct {
	Success           bool   `json:"success"`
	Skipped           bool   `json:"skipped,omitempty"`
	EventsProcessed   int    `json:"eventsProcessed"`
	EventsCreated     int    `json:"eventsCreated"`
	EventsUpdated     int    `json:"eventsUpdated"`
	EventsFailed      int    `json:"eventsFailed"`
	EventsSkipped     int    `json:"eventsSkipped"`
	EventsDeactivated int64  `json:"eventsDeactivated"`
	LogID             uint64 `json:"logId,omitempty"`
	RunID             string `json:"runId,omitempty"`
	Error             string `json:"error,omitempty"`
}

// SyncService MySideline 同步编排：节流 → 拉取 → 匹配 → 合并/新建 → 停用过期 → 记录审计日志
type SyncService struct {
	carnivalRepo repository.CarnivalRepository
	syncLog      *SyncLogService
	source       interfaces.EventSource
	matcher      *EventMatcher
	merger       *EventMerger
	creator      *EventCreator
	metrics      *metrics.SyncMetrics
	cfg          *config.SyncConfig
	logger       *logrus.Logger
	now          func() time.Time
}

// NewSyncService 创建同步服务；source 为 nil 时只能处理调用方传入的批次，m 可为 nil
func NewSyncService(
	carnivalRepo repository.CarnivalRepository,
	syncLog *SyncLogService,
	source interfaces.EventSource,
	cfg *config.SyncConfig,
	logger *logrus.Logger,
	m *metrics.SyncMetrics,
) *SyncService {
	return &SyncService{
		carnivalRepo: carnivalRepo,
		syncLog:      syncLog,
		source:       source,
		matcher:      NewEventMatcher(),
		merger:       NewEventMerger(),
		creator:      NewEventCreator(),
		metrics:      m,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Enabled 同步总开关
func (s *SyncService) Enabled() bool {
	return s.cfg.Enabled
}

// SyncLog 审计日志服务，供 API 查询
func (s *SyncService) SyncLog() *SyncLogService {
	return s.syncLog
}

// ShouldRunInitialSync 是否到了该同步的时候；判断出错时保守返回 false
func (s *SyncService) ShouldRunInitialSync(ctx context.Context) bool {
	if !s.cfg.Enabled {
		s.logger.Debug("MySideline同步已关闭")
		return false
	}
	ok, err := s.syncLog.ShouldRunSync(ctx, model.SyncTypeMySideline)
	if err != nil {
		s.logger.WithError(err).Error("同步节流检查失败，本次不执行")
		return false
	}
	return ok
}

// RunInitialSync 启动与定时任务入口：到期才执行
func (s *SyncService) RunInitialSync(ctx context.Context) *SyncResult {
	if !s.ShouldRunInitialSync(ctx) {
		s.metrics.ObserveRun("skipped", 0)
		return &SyncResult{Success: true, Skipped: true}
	}
	return s.SyncMySidelineEvents(ctx, SyncOptions{Force: true})
}

// SyncMySidelineEvents 完整同步一次；未 Force 时先做节流检查
func (s *SyncService) SyncMySidelineEvents(ctx context.Context, opts SyncOptions) (res *SyncResult) {
	if !s.cfg.Enabled {
		return &SyncResult{Success: false, Skipped: true, Error: ErrSyncDisabled.Error()}
	}
	if !opts.Force && !s.ShouldRunInitialSync(ctx) {
		s.metrics.ObserveRun("skipped", 0)
		return &SyncResult{Success: true, Skipped: true}
	}
	if s.source == nil {
		return &SyncResult{Success: false, Error: ErrNoEventSource.Error()}
	}

	run, err := s.beginRun(ctx, s.source.Name())
	if err != nil {
		return s.failedStart(err)
	}
	defer func() {
		if p := recover(); p != nil {
			res = s.failRun(ctx, run, fmt.Errorf("同步过程发生panic: %v", p))
		}
	}()

	events, err := s.source.FetchEvents(ctx)
	if err != nil {
		return s.failRun(ctx, run, fmt.Errorf("%s拉取赛事失败: %w", s.source.Name(), err))
	}
	run.setEventCount(len(events))
	if len(events) == 0 {
		s.logger.WithField("run_id", run.id).Warnf("%s未拉取到赛事", s.source.Name())
	}

	if err := s.processBatch(ctx, run, events); err != nil {
		return s.failRun(ctx, run, err)
	}

	if s.cfg.DeactivatePast {
		n, err := s.DeactivatePastCarnivals(ctx)
		if err != nil {
			// 停用与本批次相互独立，失败只记录不影响运行状态
			run.setDeactivateError(err)
		} else {
			run.setDeactivated(n)
		}
	}

	return s.completeRun(ctx, run)
}

// ProcessScrapedEvents 处理调用方传入的一批采集记录（模拟数据、手动导入）
func (s *SyncService) ProcessScrapedEvents(ctx context.Context, events []*model.ScrapedEvent) (res *SyncResult) {
	run, err := s.beginRun(ctx, "batch", withEventCount(len(events)))
	if err != nil {
		return s.failedStart(err)
	}
	defer func() {
		if p := recover(); p != nil {
			res = s.failRun(ctx, run, fmt.Errorf("同步过程发生panic: %v", p))
		}
	}()

	if err := s.processBatch(ctx, run, events); err != nil {
		return s.failRun(ctx, run, err)
	}
	return s.completeRun(ctx, run)
}

// DeactivatePastCarnivals 将日期早于当前时间的活跃嘉年华批量停用，不受节流限制，手工录入的也一并处理
func (s *SyncService) DeactivatePastCarnivals(ctx context.Context) (int64, error) {
	n, err := s.carnivalRepo.DeactivatePast(ctx, s.now().UTC())
	if err != nil {
		s.logger.WithError(err).Error("停用过期嘉年华失败")
		return 0, err
	}
	s.metrics.Deactivated(n)
	if n > 0 {
		s.logger.Infof("停用 %d 个已过期嘉年华", n)
	}
	return n, nil
}

func (s *SyncService) beginRun(ctx context.Context, source string, opts ...func(*syncRun)) (*syncRun, error) {
	run := newSyncRun(source, s.now())
	for _, opt := range opts {
		opt(run)
	}
	logID, err := s.syncLog.RecordStart(ctx, model.SyncTypeMySideline, run.startMetadata())
	if err != nil {
		return nil, fmt.Errorf("记录同步开始失败: %w", err)
	}
	run.logID = logID
	s.logger.WithFields(logrus.Fields{
		"run_id":    run.id,
		"log_id":    logID,
		"sync_type": model.SyncTypeMySideline,
		"source":    source,
	}).Info("开始MySideline同步")
	return run, nil
}

// processBatch 逐条处理；单条失败只记录，ctx 取消时整批失败
func (s *SyncService) processBatch(ctx context.Context, run *syncRun, events []*model.ScrapedEvent) error {
	workers := s.cfg.Workers
	if workers <= 1 {
		for i, raw := range events {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("同步被取消: %w", err)
			}
			s.processOne(ctx, run, i, raw)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, raw := range events {
		i, raw := i, raw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.processOne(gctx, run, i, raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("同步被取消: %w", err)
	}
	return nil
}

func (s *SyncService) processOne(ctx context.Context, run *syncRun, index int, raw *model.ScrapedEvent) {
	outcome, strategy, err := s.processEvent(ctx, raw)
	if err != nil {
		run.recordFailure(newEventError(index, raw, err))
		s.metrics.EventOutcome(outcomeFailed)
		entry := s.logger.WithError(err).WithFields(logrus.Fields{"run_id": run.id, "index": index})
		if raw != nil {
			entry = entry.WithFields(logrus.Fields{"title": raw.Title, "mysideline_id": raw.MySidelineID})
		}
		entry.Warn("处理采集赛事失败，继续下一条")
		return
	}
	run.recordSuccess(outcome, strategy)
	s.metrics.EventOutcome(outcome)
	if strategy != "" {
		s.metrics.Matched(strategy)
	}
}

// processEvent 单条赛事：清洗 → 匹配 → 合并或新建，在独立事务中完成
func (s *SyncService) processEvent(ctx context.Context, raw *model.ScrapedEvent) (outcome, strategy string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("处理赛事发生panic: %v", p)
		}
	}()

	ev, err := NormalizeScrapedEvent(raw)
	if err != nil {
		return "", "", err
	}

	err = s.carnivalRepo.InTx(ctx, func(repo repository.CarnivalRepository) error {
		existing, matchedBy, err := s.matcher.FindExistingEvent(ctx, repo, ev)
		if err != nil {
			return fmt.Errorf("匹配已有嘉年华失败(%s): %w", matchedBy, err)
		}
		// mysideline_id 全表唯一，手工记录占用的 ID 同步侧不能再写入
		manualOwnsID := false
		if ev.MySidelineID != "" && (existing == nil || existing.MySidelineID == nil) {
			if manualOwnsID, err = repo.HasManualWithMySidelineID(ctx, ev.MySidelineID); err != nil {
				return err
			}
		}
		if existing == nil && manualOwnsID {
			outcome = outcomeSkipped
			s.logger.WithFields(logrus.Fields{
				"mysideline_id": ev.MySidelineID,
				"title":         ev.logTitle(),
			}).Info("外部ID已由手工录入的嘉年华占用，跳过")
			return nil
		}
		if existing != nil {
			if manualOwnsID {
				ev.MySidelineID = ""
			}
			updated, changed, err := s.merger.MergeEvent(ctx, repo, existing, ev)
			if err != nil {
				return err
			}
			outcome, strategy = outcomeUpdated, matchedBy
			s.logger.WithFields(logrus.Fields{
				"carnival_id": updated.ID,
				"strategy":    matchedBy,
				"changed":     changed,
				"title":       ev.logTitle(),
			}).Debug("合并已有嘉年华")
			return nil
		}
		created, err := s.creator.CreateEvent(ctx, repo, ev)
		if err != nil {
			return err
		}
		outcome = outcomeCreated
		s.logger.WithFields(logrus.Fields{
			"carnival_id":   created.ID,
			"mysideline_id": ev.MySidelineID,
			"title":         ev.logTitle(),
		}).Debug("新建嘉年华")
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return outcome, strategy, nil
}

func (s *SyncService) completeRun(ctx context.Context, run *syncRun) *SyncResult {
	counts := run.counts()
	if err := s.syncLog.RecordCompletion(ctx, run.logID, counts, run.errorSummary(), run.metadata()); err != nil {
		s.logger.WithError(err).WithField("log_id", run.logID).Error("记录同步完成失败")
		return s.failRun(ctx, run, fmt.Errorf("记录同步完成失败: %w", err))
	}

	elapsed := s.now().Sub(run.startedAt)
	s.metrics.ObserveRun(string(model.SyncStatusCompleted), elapsed)
	res := run.result()
	res.Success = true
	s.logger.WithFields(logrus.Fields{
		"run_id":      run.id,
		"log_id":      run.logID,
		"processed":   res.EventsProcessed,
		"created":     res.EventsCreated,
		"updated":     res.EventsUpdated,
		"failed":      res.EventsFailed,
		"skipped":     res.EventsSkipped,
		"deactivated": res.EventsDeactivated,
		"elapsed":     elapsed.String(),
	}).Info("MySideline同步完成")
	return res
}

// failRun 记录失败并返回结构化结果，不向上抛出
func (s *SyncService) failRun(ctx context.Context, run *syncRun, runErr error) *SyncResult {
	s.logger.WithError(runErr).WithFields(logrus.Fields{
		"run_id": run.id,
		"log_id": run.logID,
	}).Error("MySideline同步失败")

	// ctx 可能已取消，失败记录使用独立 context
	recordCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		recordCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
	}
	if err := s.syncLog.RecordFailure(recordCtx, run.logID, run.counts(), runErr, run.metadata()); err != nil {
		s.logger.WithError(err).WithField("log_id", run.logID).Error("记录同步失败状态失败")
	}

	s.metrics.ObserveRun(string(model.SyncStatusFailed), s.now().Sub(run.startedAt))
	res := run.result()
	res.Success = false
	res.Error = runErr.Error()
	return res
}

func (s *SyncService) failedStart(err error) *SyncResult {
	s.logger.WithError(err).Error("MySideline同步未能开始")
	s.metrics.ObserveRun(string(model.SyncStatusFailed), 0)
	return &SyncResult{Success: false, Error: err.Error()}
}

// IsInvalidEvent 判断是否为数据不合法导致的单条失败
func IsInvalidEvent(err error) bool {
	return errors.Is(err, ErrInvalidEvent)
}

func joinErrors(items []EventError, limit int) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d 条赛事处理失败: ", len(items))
	for i, item := range items {
		if i == limit {
			fmt.Fprintf(&b, "; 另有 %d 条", len(items)-limit)
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "#%d %q: %s", item.Index+1, item.Title, item.Error)
	}
	return b.String()
}
