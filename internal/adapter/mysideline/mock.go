package mysideline

import (
	"context"
	"fmt"
	"time"

	"CarnivalSync/internal/adapter"
	"CarnivalSync/internal/config"
	"CarnivalSync/internal/interfaces"
	"CarnivalSync/internal/model"

	"github.com/sirupsen/logrus"
)

// MockSourceName 模拟采集源名称（sync.use_mock 时使用）
const MockSourceName = "mysideline-mock"

func init() {
	adapter.Register(MockSourceName, NewMockAdapter)
}

// MockAdapter 返回固定的 Masters 嘉年华列表，日期总在下一年，便于离线联调
type MockAdapter struct {
	logger *logrus.Logger
	now    func() time.Time
}

func NewMockAdapter(_ *config.MySidelineConfig, logger *logrus.Logger) interfaces.EventSource {
	return &MockAdapter{logger: logger, now: time.Now}
}

func (m *MockAdapter) Name() string {
	return MockSourceName
}

func (m *MockAdapter) FetchEvents(ctx context.Context) ([]*model.ScrapedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	year := m.now().Year() + 1
	events := []*model.ScrapedEvent{
		{
			MySidelineID:          "mock-001",
			Title:                 "Gold Coast Masters Carnival",
			Date:                  fmt.Sprintf("15/03/%d", year),
			LocationAddress:       "Pizzey Park, Miami QLD 4220",
			LocationSuburb:        "Miami",
			LocationPostcode:      "4220",
			State:                 "QLD",
			OrganiserContactName:  "Carnival Coordinator",
			OrganiserContactEmail: "masters@goldcoast.example.com",
			Description:           "Annual masters rugby league carnival on the Gold Coast.",
			RegistrationLink:      "https://profile.mysideline.com.au/register/mock-001",
		},
		{
			MySidelineID:    "mock-002",
			Title:           "Central Coast Masters Festival",
			Date:            fmt.Sprintf("12th April %d", year),
			LocationAddress: "Morrie Breen Oval, Kanwal NSW 2259",
			State:           "New South Wales",
			Description:     "Two days of masters footy on the Central Coast.",
		},
		{
			Title:           "Riverina Masters Rugby League Day",
			Date:            fmt.Sprintf("May 10, %d", year),
			LocationAddress: "Equex Centre, Wagga Wagga NSW",
			State:           "NSW",
		},
	}
	m.logger.WithField("events", len(events)).Info("使用模拟MySideline数据")
	return events, nil
}
