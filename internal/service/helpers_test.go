package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"CarnivalSync/internal/config"
	"CarnivalSync/internal/interfaces"
	"CarnivalSync/internal/model"
	"CarnivalSync/internal/repository"
	"CarnivalSync/internal/testutil"

	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func testSyncConfig() *config.SyncConfig {
	return &config.SyncConfig{
		Enabled:         true,
		MinInterval:     24 * time.Hour,
		StaleRunTimeout: time.Hour,
		Workers:         1,
	}
}

type testEnv struct {
	db      *gorm.DB
	repo    repository.CarnivalRepository
	logRepo repository.SyncLogRepository
	svc     *SyncService
}

func newTestEnv(t *testing.T, cfg *config.SyncConfig, source interfaces.EventSource) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := testutil.NewLogger()
	repo := repository.NewCarnivalRepository(db)
	logRepo := repository.NewSyncLogRepository(db)
	svc := NewSyncService(repo, NewSyncLogService(logRepo, cfg, logger), source, cfg, logger, nil)
	env := &testEnv{db: db, repo: repo, logRepo: logRepo, svc: svc}
	env.setClock(baseTime)
	return env
}

// setClock 固定服务内所有时钟
func (e *testEnv) setClock(at time.Time) {
	now := func() time.Time { return at }
	e.svc.now = now
	e.svc.merger.now = now
	e.svc.creator.now = now
	e.svc.syncLog.now = now
}

func (e *testEnv) carnivals(t *testing.T) []model.Carnival {
	t.Helper()
	var list []model.Carnival
	if err := e.db.Order("id ASC").Find(&list).Error; err != nil {
		t.Fatalf("查询嘉年华失败: %v", err)
	}
	return list
}

// staticSource 固定返回 events/err 的采集源；panicMsg 非空时直接 panic
type staticSource struct {
	events   []*model.ScrapedEvent
	err      error
	panicMsg string
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) FetchEvents(context.Context) ([]*model.ScrapedEvent, error) {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.events, s.err
}

// failingRepo 对指定标题的新建返回存储错误
type failingRepo struct {
	repository.CarnivalRepository
	failTitle string
}

func (f *failingRepo) InTx(ctx context.Context, fn func(repo repository.CarnivalRepository) error) error {
	return f.CarnivalRepository.InTx(ctx, func(repo repository.CarnivalRepository) error {
		return fn(&failingRepo{CarnivalRepository: repo, failTitle: f.failTitle})
	})
}

func (f *failingRepo) Create(ctx context.Context, c *model.Carnival) error {
	if c.Title == f.failTitle {
		return errors.New("simulated storage failure")
	}
	return f.CarnivalRepository.Create(ctx, c)
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleEvents() []*model.ScrapedEvent {
	return []*model.ScrapedEvent{
		{
			MySidelineID:          "ms-100",
			Title:                 "Gold Coast Masters Carnival",
			Date:                  "15/03/2027",
			LocationAddress:       "Pizzey Park, Miami QLD 4220",
			State:                 "Queensland",
			OrganiserContactEmail: "Masters@GoldCoast.example.com",
			Description:           "Annual carnival",
			RegistrationLink:      "profile.mysideline.com.au/register/ms-100",
		},
		{
			Title:           "Riverina Masters Day",
			MySidelineDate:  "10th May 2027",
			LocationAddress: "Equex Centre, Wagga Wagga NSW",
			State:           "NSW",
		},
	}
}
