// internal/adapter/adapter.go
package adapter

import (
	"fmt"
	"sort"

	"CarnivalSync/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// ========== 全局工厂函数注册表 ==========
var factoryRegistry = make(map[string]interfaces.Factory)

// Register 供采集源 init 函数调用，注册工厂函数
func Register(name string, factory interfaces.Factory) {
	if factory == nil {
		panic(fmt.Sprintf("采集源%s的工厂函数不能为nil", name))
	}
	if _, exists := factoryRegistry[name]; exists {
		logrus.Warnf("采集源%s已注册，将覆盖原有实现", name)
	}
	factoryRegistry[name] = factory
}

// GetFactory 获取指定采集源的工厂函数
func GetFactory(name string) (interfaces.Factory, bool) {
	factory, ok := factoryRegistry[name]
	return factory, ok
}

// ListFactories 列出所有已注册的采集源名称（有序）
func ListFactories() []string {
	names := make([]string, 0, len(factoryRegistry))
	for n := range factoryRegistry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
