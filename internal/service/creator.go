package service

import (
	"context"
	"fmt"
	"time"

	"CarnivalSync/internal/model"
	"CarnivalSync/internal/repository"
)

// EventCreator 为未匹配的采集记录新建嘉年华
type EventCreator struct {
	now func() time.Time
}

func NewEventCreator() *EventCreator {
	return &EventCreator{now: time.Now}
}

// CreateEvent 复制全部采集字段并写入导入默认值
func (c *EventCreator) CreateEvent(ctx context.Context, repo repository.CarnivalRepository, ev *NormalizedEvent) (*model.Carnival, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: 空记录", ErrInvalidEvent)
	}
	carnival := buildCarnival(ev, c.now().UTC())
	if err := repo.Create(ctx, carnival); err != nil {
		return nil, err
	}
	return carnival, nil
}

func buildCarnival(ev *NormalizedEvent, now time.Time) *model.Carnival {
	c := &model.Carnival{
		Title:                 ev.Title,
		Date:                  ev.EventDate,
		LocationAddress:       ev.LocationAddress,
		LocationSuburb:        ev.LocationSuburb,
		LocationPostcode:      ev.LocationPostcode,
		LocationLatitude:      ev.LocationLatitude,
		LocationLongitude:     ev.LocationLongitude,
		State:                 ev.State,
		OrganiserContactName:  ev.OrganiserContactName,
		OrganiserContactEmail: ev.OrganiserContactEmail,
		OrganiserContactPhone: ev.OrganiserContactPhone,
		Description:           ev.Description,
		ScheduleDetails:       ev.ScheduleDetails,
		RegistrationLink:      ev.RegistrationLink,
		ClubLogoURL:           ev.ClubLogoURL,
		SocialMediaFacebook:   ev.SocialMediaFacebook,
		SocialMediaInstagram:  ev.SocialMediaInstagram,
		SocialMediaWebsite:    ev.SocialMediaWebsite,
		MySidelineTitle:       ev.MySidelineTitle,
		MySidelineDate:        ev.LegacyDate,
		MySidelineAddress:     ev.MySidelineAddress,
		IsActive:              true,
		IsManuallyEntered:     false,
		IsRegistrationOpen:    false,
		LastMySidelineSync:    &now,
		Source:                model.SourceMySideline,
	}
	if ev.MySidelineID != "" {
		id := ev.MySidelineID
		c.MySidelineID = &id
	}
	return c
}
