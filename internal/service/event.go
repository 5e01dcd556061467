package service

import (
	"fmt"
	"strings"
	"time"

	"CarnivalSync/internal/model"
	"CarnivalSync/internal/utils/normalize"

	"github.com/go-playground/validator/v10"
)

var eventValidator = validator.New()

// NormalizedEvent 清洗后的采集记录；日期字段已解析为 UTC 零点
type NormalizedEvent struct {
	model.ScrapedEvent

	EventDate  *time.Time // 展示日期（date，缺省取 mySidelineDate）
	LegacyDate *time.Time // 快照日期（mySidelineDate，缺省取 date）
}

// NormalizeScrapedEvent 清洗单条采集记录并校验
// 快照字段缺失时从展示字段补齐，反之亦然，保证匹配三元组与展示字段同源
func NormalizeScrapedEvent(raw *model.ScrapedEvent) (*NormalizedEvent, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: 空记录", ErrInvalidEvent)
	}

	ev := &NormalizedEvent{ScrapedEvent: *raw}
	e := &ev.ScrapedEvent

	e.MySidelineID = strings.TrimSpace(e.MySidelineID)
	e.MySidelineTitle = normalize.Text(e.MySidelineTitle)
	e.MySidelineAddress = normalize.Text(e.MySidelineAddress)
	e.Title = normalize.Text(e.Title)
	e.LocationAddress = normalize.Text(e.LocationAddress)
	e.LocationSuburb = normalize.Text(e.LocationSuburb)
	e.LocationPostcode = strings.TrimSpace(e.LocationPostcode)
	e.State = normalize.State(e.State)
	e.OrganiserContactName = normalize.Text(e.OrganiserContactName)
	e.OrganiserContactEmail = normalize.Email(e.OrganiserContactEmail)
	e.OrganiserContactPhone = normalize.Text(e.OrganiserContactPhone)
	e.Description = strings.TrimSpace(e.Description)
	e.ScheduleDetails = strings.TrimSpace(e.ScheduleDetails)
	e.RegistrationLink = normalize.URL(e.RegistrationLink)
	e.ClubLogoURL = normalize.URL(e.ClubLogoURL)
	e.SocialMediaFacebook = normalize.URL(e.SocialMediaFacebook)
	e.SocialMediaInstagram = normalize.URL(e.SocialMediaInstagram)
	e.SocialMediaWebsite = normalize.URL(e.SocialMediaWebsite)

	if e.Title == "" {
		e.Title = e.MySidelineTitle
	}
	if e.MySidelineTitle == "" {
		e.MySidelineTitle = e.Title
	}
	if e.MySidelineAddress == "" {
		e.MySidelineAddress = e.LocationAddress
	}
	if e.LocationAddress == "" {
		e.LocationAddress = e.MySidelineAddress
	}

	ev.EventDate = normalize.DatePtr(e.Date)
	ev.LegacyDate = normalize.DatePtr(e.MySidelineDate)
	if ev.EventDate == nil {
		ev.EventDate = ev.LegacyDate
	}
	if ev.LegacyDate == nil {
		ev.LegacyDate = ev.EventDate
	}

	if err := eventValidator.Struct(e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return ev, nil
}

// logTitle 日志用标题
func (ev *NormalizedEvent) logTitle() string {
	if ev == nil {
		return ""
	}
	return ev.Title
}
