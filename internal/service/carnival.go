package service

import (
	"context"
	"errors"
	"fmt"

	"CarnivalSync/internal/model"
	"CarnivalSync/internal/repository"

	"github.com/sirupsen/logrus"
)

// ErrCarnivalNotFound 嘉年华不存在
var ErrCarnivalNotFound = errors.New("嘉年华不存在")

// CarnivalService 面向前端/管理端的嘉年华查询
type CarnivalService struct {
	repo   repository.CarnivalRepository
	logger *logrus.Logger
}

func NewCarnivalService(repo repository.CarnivalRepository, logger *logrus.Logger) *CarnivalService {
	return &CarnivalService{repo: repo, logger: logger}
}

// CarnivalSummary 列表页单个嘉年华
type CarnivalSummary struct {
	ID                 uint64 `json:"id"`
	Title              string `json:"title"`
	Date               string `json:"date,omitempty"` // YYYY-MM-DD
	DateTs             int64  `json:"date_ts,omitempty"`
	State              string `json:"state,omitempty"`
	LocationAddress    string `json:"location_address,omitempty"`
	IsActive           bool   `json:"is_active"`
	IsRegistrationOpen bool   `json:"is_registration_open"`
	Source             string `json:"source,omitempty"`
	MySidelineID       string `json:"mysideline_id,omitempty"`
}

// CarnivalListResult 列表返回
type CarnivalListResult struct {
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int64             `json:"total"`
	Items    []CarnivalSummary `json:"items"`
}

// CarnivalDetail 详情：完整记录 + 最近同步时间戳（毫秒）
type CarnivalDetail struct {
	*model.Carnival
	LastMySidelineSyncTs int64 `json:"last_mysideline_sync_ts,omitempty"`
}

// ListCarnivals 按条件分页查询，默认按日期升序
func (s *CarnivalService) ListCarnivals(ctx context.Context, filter repository.CarnivalFilter, page, pageSize int) (*CarnivalListResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	list, total, err := s.repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("查询嘉年华列表失败: %w", err)
	}
	items := make([]CarnivalSummary, 0, len(list))
	for _, c := range list {
		items = append(items, summarize(c))
	}
	return &CarnivalListResult{Page: page, PageSize: pageSize, Total: total, Items: items}, nil
}

// GetCarnival 按ID查询详情
func (s *CarnivalService) GetCarnival(ctx context.Context, id uint64) (*CarnivalDetail, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("查询嘉年华失败: %w", err)
	}
	if c == nil {
		return nil, ErrCarnivalNotFound
	}
	d := &CarnivalDetail{Carnival: c}
	if c.LastMySidelineSync != nil {
		d.LastMySidelineSyncTs = c.LastMySidelineSync.UnixMilli()
	}
	return d, nil
}

func summarize(c *model.Carnival) CarnivalSummary {
	s := CarnivalSummary{
		ID:                 c.ID,
		Title:              c.Title,
		State:              c.State,
		LocationAddress:    c.LocationAddress,
		IsActive:           c.IsActive,
		IsRegistrationOpen: c.IsRegistrationOpen,
		Source:             c.Source,
	}
	if c.Date != nil {
		s.Date = c.Date.UTC().Format("2006-01-02")
		s.DateTs = c.Date.UnixMilli()
	}
	if c.MySidelineID != nil {
		s.MySidelineID = *c.MySidelineID
	}
	return s
}
