package repository

import (
	"context"
	"errors"
	"fmt"

	"CarnivalSync/internal/model"

	"gorm.io/gorm"
)

// SyncLogRepository 同步日志仓储（只追加/更新，不删除）
type SyncLogRepository interface {
	Create(ctx context.Context, entry *model.SyncLog) error
	Update(ctx context.Context, id uint64, fields map[string]interface{}) error
	GetByID(ctx context.Context, id uint64) (*model.SyncLog, error)
	// GetLatestByStatus 指定类型与状态下最近开始的一条，未命中返回 (nil, nil)
	GetLatestByStatus(ctx context.Context, syncType string, status model.SyncStatus) (*model.SyncLog, error)
	ListRecent(ctx context.Context, syncType string, limit int) ([]*model.SyncLog, error)
}

type syncLogRepository struct {
	db *gorm.DB
}

func NewSyncLogRepository(db *gorm.DB) SyncLogRepository {
	return &syncLogRepository{db: db}
}

func (r *syncLogRepository) Create(ctx context.Context, entry *model.SyncLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("写入同步日志失败: %w", err)
	}
	return nil
}

func (r *syncLogRepository) Update(ctx context.Context, id uint64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&model.SyncLog{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("更新同步日志失败: %w, id: %d", res.Error, id)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("同步日志不存在, id: %d", id)
	}
	return nil
}

func (r *syncLogRepository) GetByID(ctx context.Context, id uint64) (*model.SyncLog, error) {
	var entry model.SyncLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *syncLogRepository) GetLatestByStatus(ctx context.Context, syncType string, status model.SyncStatus) (*model.SyncLog, error) {
	var entry model.SyncLog
	err := r.db.WithContext(ctx).
		Where("sync_type = ? AND status = ?", syncType, status).
		Order("started_at DESC").Order("id DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *syncLogRepository) ListRecent(ctx context.Context, syncType string, limit int) ([]*model.SyncLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	db := r.db.WithContext(ctx).Model(&model.SyncLog{})
	if syncType != "" {
		db = db.Where("sync_type = ?", syncType)
	}
	var list []*model.SyncLog
	if err := db.Order("started_at DESC").Order("id DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
