package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CarnivalSync/internal/config"
	"CarnivalSync/internal/model"
	"CarnivalSync/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// SyncLogService 同步审计日志：节流判断与运行生命周期记录，只追加/更新
type SyncLogService struct {
	repo            repository.SyncLogRepository
	minInterval     time.Duration
	staleRunTimeout time.Duration
	logger          *logrus.Logger
	now             func() time.Time
}

func NewSyncLogService(repo repository.SyncLogRepository, cfg *config.SyncConfig, logger *logrus.Logger) *SyncLogService {
	return &SyncLogService{
		repo:            repo,
		minInterval:     cfg.MinInterval,
		staleRunTimeout: cfg.StaleRunTimeout,
		logger:          logger,
		now:             time.Now,
	}
}

// ShouldRunSync 距上次成功同步已超过最小间隔，且没有未超时的进行中运行
func (s *SyncLogService) ShouldRunSync(ctx context.Context, syncType string) (bool, error) {
	now := s.now().UTC()

	running, err := s.repo.GetLatestByStatus(ctx, syncType, model.SyncStatusStarted)
	if err != nil {
		return false, fmt.Errorf("查询进行中的同步失败: %w", err)
	}
	if running != nil && s.staleRunTimeout > 0 && now.Sub(running.StartedAt) < s.staleRunTimeout {
		s.logger.WithFields(logrus.Fields{
			"sync_type": syncType,
			"log_id":    running.ID,
		}).Info("已有同步正在进行，跳过")
		return false, nil
	}

	last, err := s.GetLastSuccessfulSync(ctx, syncType)
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	finished := last.StartedAt
	if last.CompletedAt != nil {
		finished = *last.CompletedAt
	}
	return now.Sub(finished) >= s.minInterval, nil
}

// GetLastSuccessfulSync 最近一次 completed 的记录，没有则返回 nil
func (s *SyncLogService) GetLastSuccessfulSync(ctx context.Context, syncType string) (*model.SyncLog, error) {
	last, err := s.repo.GetLatestByStatus(ctx, syncType, model.SyncStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("查询上次成功同步失败: %w", err)
	}
	return last, nil
}

// RecordStart 写入 started 记录并返回日志ID
func (s *SyncLogService) RecordStart(ctx context.Context, syncType string, metadata map[string]interface{}) (uint64, error) {
	raw, err := encodeMetadata(metadata)
	if err != nil {
		return 0, err
	}
	entry := &model.SyncLog{
		SyncType:  syncType,
		Status:    model.SyncStatusStarted,
		StartedAt: s.now().UTC(),
		Metadata:  raw,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return 0, err
	}
	return entry.ID, nil
}

// RecordCompletion 关闭为 completed；errorMessage 非空时记录单条赛事的累计错误
// metadata 与开始时写入的内容合并
func (s *SyncLogService) RecordCompletion(ctx context.Context, logID uint64, counts model.SyncCounts, errorMessage string, metadata map[string]interface{}) error {
	fields, err := s.closeFields(ctx, logID, model.SyncStatusCompleted, counts, metadata)
	if err != nil {
		return err
	}
	if errorMessage != "" {
		fields["error_message"] = errorMessage
	}
	return s.repo.Update(ctx, logID, fields)
}

// RecordFailure 关闭为 failed，保留已累计的计数
func (s *SyncLogService) RecordFailure(ctx context.Context, logID uint64, counts model.SyncCounts, runErr error, metadata map[string]interface{}) error {
	fields, err := s.closeFields(ctx, logID, model.SyncStatusFailed, counts, metadata)
	if err != nil {
		return err
	}
	msg := "unknown error"
	if runErr != nil {
		msg = runErr.Error()
	}
	fields["error_message"] = msg
	return s.repo.Update(ctx, logID, fields)
}

// ListRecent 最近的同步记录
func (s *SyncLogService) ListRecent(ctx context.Context, syncType string, limit int) ([]*model.SyncLog, error) {
	return s.repo.ListRecent(ctx, syncType, limit)
}

func (s *SyncLogService) closeFields(ctx context.Context, logID uint64, status model.SyncStatus, counts model.SyncCounts, metadata map[string]interface{}) (map[string]interface{}, error) {
	entry, err := s.repo.GetByID(ctx, logID)
	if err != nil {
		return nil, fmt.Errorf("读取同步日志失败: %w, id: %d", err, logID)
	}
	if entry == nil {
		return nil, fmt.Errorf("同步日志不存在, id: %d", logID)
	}
	merged, err := mergeMetadata(entry.Metadata, metadata)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":           status,
		"completed_at":     s.now().UTC(),
		"events_processed": counts.EventsProcessed,
		"events_created":   counts.EventsCreated,
		"events_updated":   counts.EventsUpdated,
		"events_failed":    counts.EventsFailed,
		"metadata":         merged,
	}, nil
}

func encodeMetadata(metadata map[string]interface{}) (datatypes.JSON, error) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("序列化同步metadata失败: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// mergeMetadata 后写入的键覆盖已有键
func mergeMetadata(existing datatypes.JSON, extra map[string]interface{}) (datatypes.JSON, error) {
	merged := map[string]interface{}{}
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &merged); err != nil {
			return nil, fmt.Errorf("解析已有同步metadata失败: %w", err)
		}
	}
	for k, v := range extra {
		merged[k] = v
	}
	return encodeMetadata(merged)
}
