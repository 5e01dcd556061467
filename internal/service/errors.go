package service

import "errors"

var (
	// ErrSyncDisabled sync.enabled 关闭
	ErrSyncDisabled = errors.New("MySideline同步已关闭")
	// ErrInvalidEvent 采集记录清洗后仍不合法（缺标题、经纬度越界等）
	ErrInvalidEvent = errors.New("采集赛事数据不合法")
	// ErrNoEventSource 未配置采集源
	ErrNoEventSource = errors.New("未配置采集源")
)
