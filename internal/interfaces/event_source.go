package interfaces

import (
	"context"

	"CarnivalSync/internal/config"
	"CarnivalSync/internal/model"

	"github.com/sirupsen/logrus"
)

// EventSource 采集源必须实现的核心接口（真实采集或模拟数据）
type EventSource interface {
	Name() string                                                  // 采集源名称
	FetchEvents(ctx context.Context) ([]*model.ScrapedEvent, error) // 拉取原始赛事
}

// Factory 采集源工厂函数签名
type Factory func(cfg *config.MySidelineConfig, logger *logrus.Logger) EventSource
