package normalize

import (
	"regexp"
	"strings"
	"sync/atomic"
	"time"
	_ "time/tzdata"
)

// DefaultEventTimezone 赛事所在时区，带时差的时间戳先换算到该时区再取日期
const DefaultEventTimezone = "Australia/Sydney"

var eventLocation atomic.Pointer[time.Location]

func init() {
	loc, err := time.LoadLocation(DefaultEventTimezone)
	if err != nil {
		loc = time.UTC
	}
	eventLocation.Store(loc)
}

// SetEventTimezone 设置换算带时差时间戳所用的时区，名称非法时返回错误且不修改
func SetEventTimezone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	eventLocation.Store(loc)
	return nil
}

// EventLocation 当前赛事时区
func EventLocation() *time.Location {
	return eventLocation.Load()
}

var (
	weekdayPrefix = regexp.MustCompile(`(?i)^(mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)(day|nesday|sday|urday)?\.?,?\s+`)
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	ofWord        = regexp.MustCompile(`(?i)\s+of\s+`)
	spaces        = regexp.MustCompile(`\s+`)
	septAbbrev    = regexp.MustCompile(`(?i)\bsept\b`)
)

// dateLayouts 按顺序尝试；纯数字日期一律按日在前（澳洲习惯）解析
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// ParseDate 将采集到的日期字符串解析为当天 UTC 零点（日历日按字面，带时差的时间戳按赛事时区）；空串或无法识别时返回 false，不会 panic
func ParseDate(text string) (time.Time, bool) {
	s := cleanDateText(text)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// 带时差的时间戳（如 2027-07-26T14:00:00.000Z）表示某一时刻，日期以赛事所在时区为准
		if layout == time.RFC3339 {
			t = t.In(EventLocation())
		}
		y, m, d := t.Date()
		if y < 1900 || y > 2100 {
			return time.Time{}, false
		}
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// DatePtr ParseDate 的指针版本，供可空列使用
func DatePtr(text string) *time.Time {
	t, ok := ParseDate(text)
	if !ok {
		return nil
	}
	return &t
}

// SameDay 判断两个时间是否为同一 UTC 日历日
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// DayBounds 返回 t 所在 UTC 日历日的 [start, end)
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func cleanDateText(text string) string {
	s := spaces.ReplaceAllString(strings.TrimSpace(text), " ")
	if s == "" {
		return ""
	}
	s = weekdayPrefix.ReplaceAllString(s, "")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = ofWord.ReplaceAllString(s, " ")
	// "Sept" 不是 Go 认识的缩写
	s = septAbbrev.ReplaceAllString(s, "Sep")
	return strings.TrimSpace(s)
}
