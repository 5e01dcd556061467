package adapter

import (
	"fmt"

	"CarnivalSync/internal/config"
	"CarnivalSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// SourceRegistry 采集源实例注册表：按配置从工厂函数创建实例
type SourceRegistry struct {
	cfg     *config.MySidelineConfig
	logger  *logrus.Logger
	sources map[string]interfaces.EventSource
}

func NewSourceRegistry(cfg *config.MySidelineConfig, logger *logrus.Logger) *SourceRegistry {
	r := &SourceRegistry{
		cfg:     cfg,
		logger:  logger,
		sources: make(map[string]interfaces.EventSource),
	}
	r.initFromFactories()
	return r
}

// initFromFactories 为每个已注册的工厂函数创建实例
func (r *SourceRegistry) initFromFactories() {
	for _, name := range ListFactories() {
		factory, _ := GetFactory(name)
		src := factory(r.cfg, r.logger)
		if src == nil {
			r.logger.WithField("source", name).Error("工厂函数返回nil采集源实例")
			continue
		}
		if src.Name() != name {
			r.logger.WithFields(logrus.Fields{
				"registered_name": name,
				"source_name":     src.Name(),
			}).Error("采集源名称与注册名不匹配")
			continue
		}
		r.sources[name] = src
	}
	r.logger.WithField("sources", ListFactories()).Debug("采集源实例初始化完成")
}

// GetSource 获取采集源实例
func (r *SourceRegistry) GetSource(name string) (interfaces.EventSource, error) {
	src, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("采集源%s未初始化（已注册：%v）", name, ListFactories())
	}
	return src, nil
}
