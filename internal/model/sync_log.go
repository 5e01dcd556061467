package model

import (
	"time"

	"gorm.io/datatypes"
)

// SyncTypeMySideline MySideline 赛事同步类型
const SyncTypeMySideline = "mysideline_events"

// SyncStatus 同步运行状态
type SyncStatus string

const (
	SyncStatusStarted   SyncStatus = "started"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncLog 每次同步尝试一行：开始时创建，结束（成功或失败）时关闭，本模块不删除
type SyncLog struct {
	ID              uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SyncType        string         `gorm:"column:sync_type;type:varchar(50);not null;index:idx_sync_logs_type_status,priority:1" json:"sync_type"`
	Status          SyncStatus     `gorm:"column:status;type:varchar(16);not null;index:idx_sync_logs_type_status,priority:2" json:"status"`
	StartedAt       time.Time      `gorm:"column:started_at;type:timestamp;not null" json:"started_at"`
	CompletedAt     *time.Time     `gorm:"column:completed_at;type:timestamp" json:"completed_at,omitempty"`
	EventsProcessed int            `gorm:"column:events_processed;type:int;not null;default:0" json:"events_processed"`
	EventsCreated   int            `gorm:"column:events_created;type:int;not null;default:0" json:"events_created"`
	EventsUpdated   int            `gorm:"column:events_updated;type:int;not null;default:0" json:"events_updated"`
	EventsFailed    int            `gorm:"column:events_failed;type:int;not null;default:0" json:"events_failed"`
	ErrorMessage    *string        `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	Metadata        datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time      `gorm:"column:created_at;type:timestamp;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;type:timestamp;autoUpdateTime" json:"updated_at"`
}

func (SyncLog) TableName() string { return "sync_logs" }

// SyncCounts 同步结束时写回的计数
type SyncCounts struct {
	EventsProcessed int
	EventsCreated   int
	EventsUpdated   int
	EventsFailed    int
}
