package service

import (
	"context"

	"CarnivalSync/internal/model"
	"CarnivalSync/internal/repository"
)

// 匹配策略名称，同时用作指标标签与同步日志 metadata 键
const (
	MatchByMySidelineID = "mysideline_id"
	MatchByLegacyFields = "legacy_fields"
	MatchByDateTitle    = "date_title"
)

// matchStrategy 单层匹配：不适用（缺少所需字段）或未命中时返回 nil
type matchStrategy struct {
	name string
	find func(ctx context.Context, repo repository.CarnivalRepository, ev *NormalizedEvent) (*model.Carnival, error)
}

func defaultMatchStrategies() []matchStrategy {
	return []matchStrategy{
		{name: MatchByMySidelineID, find: matchByMySidelineID},
		{name: MatchByLegacyFields, find: matchByLegacyFields},
		{name: MatchByDateTitle, find: matchByDateTitle},
	}
}

func matchByMySidelineID(ctx context.Context, repo repository.CarnivalRepository, ev *NormalizedEvent) (*model.Carnival, error) {
	if ev.MySidelineID == "" {
		return nil, nil
	}
	return repo.FindByMySidelineID(ctx, ev.MySidelineID)
}

func matchByLegacyFields(ctx context.Context, repo repository.CarnivalRepository, ev *NormalizedEvent) (*model.Carnival, error) {
	if ev.MySidelineTitle == "" || ev.LegacyDate == nil {
		return nil, nil
	}
	return repo.FindByLegacyFields(ctx, ev.MySidelineTitle, *ev.LegacyDate, ev.MySidelineAddress)
}

func matchByDateTitle(ctx context.Context, repo repository.CarnivalRepository, ev *NormalizedEvent) (*model.Carnival, error) {
	if ev.Title == "" || ev.EventDate == nil {
		return nil, nil
	}
	return repo.FindByDateAndTitle(ctx, *ev.EventDate, ev.Title)
}

// EventMatcher 按优先级依次尝试匹配策略，首个命中即返回
type EventMatcher struct {
	strategies []matchStrategy
}

func NewEventMatcher() *EventMatcher {
	return &EventMatcher{strategies: defaultMatchStrategies()}
}

// FindExistingEvent 返回已存在的嘉年华与命中的策略名；都未命中返回 (nil, "", nil)
// 手工录入的记录永远不会被返回
func (m *EventMatcher) FindExistingEvent(ctx context.Context, repo repository.CarnivalRepository, ev *NormalizedEvent) (*model.Carnival, string, error) {
	for _, s := range m.strategies {
		found, err := s.find(ctx, repo, ev)
		if err != nil {
			return nil, s.name, err
		}
		if found != nil && !found.IsManuallyEntered {
			return found, s.name, nil
		}
	}
	return nil, "", nil
}
