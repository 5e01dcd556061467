package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"CarnivalSync/internal/model"
	"CarnivalSync/internal/repository"
)

// mergeField 可被同步补齐的文本字段：column 为数据库列，current/scraped 取两侧值
type mergeField struct {
	column  string
	current func(c *model.Carnival) string
	scraped func(ev *NormalizedEvent) string
}

var mergeTextFields = []mergeField{
	{"title", func(c *model.Carnival) string { return c.Title }, func(ev *NormalizedEvent) string { return ev.Title }},
	{"location_address", func(c *model.Carnival) string { return c.LocationAddress }, func(ev *NormalizedEvent) string { return ev.LocationAddress }},
	{"location_suburb", func(c *model.Carnival) string { return c.LocationSuburb }, func(ev *NormalizedEvent) string { return ev.LocationSuburb }},
	{"location_postcode", func(c *model.Carnival) string { return c.LocationPostcode }, func(ev *NormalizedEvent) string { return ev.LocationPostcode }},
	{"state", func(c *model.Carnival) string { return c.State }, func(ev *NormalizedEvent) string { return ev.State }},
	{"organiser_contact_name", func(c *model.Carnival) string { return c.OrganiserContactName }, func(ev *NormalizedEvent) string { return ev.OrganiserContactName }},
	{"organiser_contact_email", func(c *model.Carnival) string { return c.OrganiserContactEmail }, func(ev *NormalizedEvent) string { return ev.OrganiserContactEmail }},
	{"organiser_contact_phone", func(c *model.Carnival) string { return c.OrganiserContactPhone }, func(ev *NormalizedEvent) string { return ev.OrganiserContactPhone }},
	{"description", func(c *model.Carnival) string { return c.Description }, func(ev *NormalizedEvent) string { return ev.Description }},
	{"schedule_details", func(c *model.Carnival) string { return c.ScheduleDetails }, func(ev *NormalizedEvent) string { return ev.ScheduleDetails }},
	{"registration_link", func(c *model.Carnival) string { return c.RegistrationLink }, func(ev *NormalizedEvent) string { return ev.RegistrationLink }},
	{"club_logo_url", func(c *model.Carnival) string { return c.ClubLogoURL }, func(ev *NormalizedEvent) string { return ev.ClubLogoURL }},
	{"social_media_facebook", func(c *model.Carnival) string { return c.SocialMediaFacebook }, func(ev *NormalizedEvent) string { return ev.SocialMediaFacebook }},
	{"social_media_instagram", func(c *model.Carnival) string { return c.SocialMediaInstagram }, func(ev *NormalizedEvent) string { return ev.SocialMediaInstagram }},
	{"social_media_website", func(c *model.Carnival) string { return c.SocialMediaWebsite }, func(ev *NormalizedEvent) string { return ev.SocialMediaWebsite }},
	// 快照字段：仅在为空时写入一次，之后不再改变
	{"mysideline_title", func(c *model.Carnival) string { return c.MySidelineTitle }, func(ev *NormalizedEvent) string { return ev.MySidelineTitle }},
	{"mysideline_address", func(c *model.Carnival) string { return c.MySidelineAddress }, func(ev *NormalizedEvent) string { return ev.MySidelineAddress }},
}

// EventMerger 只补齐现有记录中为空的字段，不覆盖用户编辑
type EventMerger struct {
	now func() time.Time
}

func NewEventMerger() *EventMerger {
	return &EventMerger{now: time.Now}
}

// MergeEvent 补齐空字段并刷新 last_mysideline_sync，返回持久化后的记录与本次补齐的列
func (m *EventMerger) MergeEvent(ctx context.Context, repo repository.CarnivalRepository, existing *model.Carnival, ev *NormalizedEvent) (*model.Carnival, []string, error) {
	if existing == nil || ev == nil {
		return nil, nil, fmt.Errorf("合并参数为空")
	}

	fields := mergeChanges(existing, ev)
	changed := make([]string, 0, len(fields))
	for col := range fields {
		changed = append(changed, col)
	}
	sort.Strings(changed)
	fields["last_mysideline_sync"] = m.now().UTC()

	if err := repo.UpdateFields(ctx, existing.ID, fields); err != nil {
		return nil, nil, err
	}
	updated, err := repo.GetByID(ctx, existing.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("重新读取Carnival失败: %w, id: %d", err, existing.ID)
	}
	if updated == nil {
		return nil, nil, fmt.Errorf("合并后Carnival不存在, id: %d", existing.ID)
	}
	return updated, changed, nil
}

// mergeChanges 计算需要补齐的列；结果只包含现有值为空且采集值非空的列
func mergeChanges(existing *model.Carnival, ev *NormalizedEvent) map[string]interface{} {
	fields := make(map[string]interface{})
	for _, f := range mergeTextFields {
		if f.current(existing) == "" {
			if v := f.scraped(ev); v != "" {
				fields[f.column] = v
			}
		}
	}
	if existing.Date == nil && ev.EventDate != nil {
		fields["date"] = *ev.EventDate
	}
	if existing.MySidelineDate == nil && ev.LegacyDate != nil {
		fields["mysideline_date"] = *ev.LegacyDate
	}
	if existing.MySidelineID == nil && ev.MySidelineID != "" {
		fields["mysideline_id"] = ev.MySidelineID
	}
	if existing.LocationLatitude == nil && ev.LocationLatitude != nil {
		fields["location_latitude"] = *ev.LocationLatitude
	}
	if existing.LocationLongitude == nil && ev.LocationLongitude != nil {
		fields["location_longitude"] = *ev.LocationLongitude
	}
	return fields
}
