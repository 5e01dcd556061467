package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"CarnivalSync/internal/model"
	"CarnivalSync/internal/repository"
	"CarnivalSync/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScrapedEvent_FillsSnapshotFromDisplay(t *testing.T) {
	ev, err := NormalizeScrapedEvent(&model.ScrapedEvent{
		Title:           "  Central   Coast Masters ",
		Date:            "Saturday 12th April 2027",
		LocationAddress: "Morrie Breen Oval,  Kanwal",
		State:           "n.s.w.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Central Coast Masters", ev.Title)
	assert.Equal(t, ev.Title, ev.MySidelineTitle)
	assert.Equal(t, "Morrie Breen Oval, Kanwal", ev.MySidelineAddress)
	assert.Equal(t, "NSW", ev.State)
	require.NotNil(t, ev.EventDate)
	require.NotNil(t, ev.LegacyDate)
	assert.True(t, ev.EventDate.Equal(day(2027, 4, 12)))
	assert.True(t, ev.LegacyDate.Equal(*ev.EventDate))
}

func TestNormalizeScrapedEvent_FillsDisplayFromSnapshot(t *testing.T) {
	ev, err := NormalizeScrapedEvent(&model.ScrapedEvent{
		MySidelineTitle:   "Legacy Title",
		MySidelineDate:    "March 8, 2027",
		MySidelineAddress: "Oakes Oval",
	})
	require.NoError(t, err)
	assert.Equal(t, "Legacy Title", ev.Title)
	assert.Equal(t, "Oakes Oval", ev.LocationAddress)
	require.NotNil(t, ev.EventDate)
	assert.True(t, ev.EventDate.Equal(day(2027, 3, 8)))
}

func TestNormalizeScrapedEvent_UnparseableDateIsNil(t *testing.T) {
	ev, err := NormalizeScrapedEvent(&model.ScrapedEvent{Title: "TBC Carnival", Date: "TBC"})
	require.NoError(t, err)
	assert.Nil(t, ev.EventDate)
	assert.Nil(t, ev.LegacyDate)
}

func TestNormalizeScrapedEvent_Invalid(t *testing.T) {
	_, err := NormalizeScrapedEvent(nil)
	assert.True(t, errors.Is(err, ErrInvalidEvent))

	_, err = NormalizeScrapedEvent(&model.ScrapedEvent{Date: "1/1/2027"})
	assert.True(t, errors.Is(err, ErrInvalidEvent), "缺少标题")

	lng := 200.0
	_, err = NormalizeScrapedEvent(&model.ScrapedEvent{Title: "X", LocationLongitude: &lng})
	assert.True(t, IsInvalidEvent(err))
}

func seedCarnival(t *testing.T, repo repository.CarnivalRepository, c *model.Carnival) *model.Carnival {
	t.Helper()
	c.IsActive = true
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestEventMatcher_Priority(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCarnivalRepository(db)
	ctx := context.Background()
	date := day(2027, 3, 15)

	byID := seedCarnival(t, repo, &model.Carnival{
		Title:        "Renamed by delegate",
		Date:         timePtr(day(2027, 3, 22)),
		MySidelineID: strPtr("ms-1"),
	})
	byLegacy := seedCarnival(t, repo, &model.Carnival{
		Title:             "Also renamed",
		Date:              timePtr(date),
		MySidelineTitle:   "Gold Coast Masters",
		MySidelineDate:    timePtr(date),
		MySidelineAddress: "Pizzey Park",
	})
	byDateTitle := seedCarnival(t, repo, &model.Carnival{
		Title: "Sunshine Coast Masters",
		Date:  timePtr(date.Add(10 * time.Hour)),
	})

	m := NewEventMatcher()
	cases := []struct {
		name     string
		event    *model.ScrapedEvent
		wantID   uint64
		strategy string
	}{
		{
			name:     "external id wins over legacy triple",
			event:    &model.ScrapedEvent{MySidelineID: "ms-1", Title: "Gold Coast Masters", Date: "15/03/2027", LocationAddress: "Pizzey Park"},
			wantID:   byID.ID,
			strategy: MatchByMySidelineID,
		},
		{
			name:     "unknown id falls through to legacy triple",
			event:    &model.ScrapedEvent{MySidelineID: "ms-unknown", Title: "Gold Coast Masters", Date: "15/03/2027", LocationAddress: "Pizzey Park"},
			wantID:   byLegacy.ID,
			strategy: MatchByLegacyFields,
		},
		{
			name:     "legacy triple without address",
			event:    &model.ScrapedEvent{Title: "Gold Coast Masters", Date: "2027-03-15"},
			wantID:   byLegacy.ID,
			strategy: MatchByLegacyFields,
		},
		{
			name:     "date and title fallback on same calendar day",
			event:    &model.ScrapedEvent{Title: "Sunshine Coast Masters", Date: "15th March 2027"},
			wantID:   byDateTitle.ID,
			strategy: MatchByDateTitle,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev, err := NormalizeScrapedEvent(tc.event)
			require.NoError(t, err)
			found, strategy, err := m.FindExistingEvent(ctx, repo, ev)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, tc.wantID, found.ID)
			assert.Equal(t, tc.strategy, strategy)
		})
	}

	t.Run("no match", func(t *testing.T) {
		ev, err := NormalizeScrapedEvent(&model.ScrapedEvent{Title: "Sunshine Coast Masters", Date: "16/03/2027"})
		require.NoError(t, err)
		found, strategy, err := m.FindExistingEvent(ctx, repo, ev)
		require.NoError(t, err)
		assert.Nil(t, found)
		assert.Empty(t, strategy)
	})
}

func TestEventMatcher_SkipsManualRecordsOnEveryTier(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCarnivalRepository(db)
	date := day(2027, 3, 15)
	seedCarnival(t, repo, &model.Carnival{
		Title:             "Gold Coast Masters",
		Date:              timePtr(date),
		MySidelineID:      strPtr("ms-manual"),
		MySidelineTitle:   "Gold Coast Masters",
		MySidelineDate:    timePtr(date),
		IsManuallyEntered: true,
	})

	ev, err := NormalizeScrapedEvent(&model.ScrapedEvent{MySidelineID: "ms-manual", Title: "Gold Coast Masters", Date: "15/03/2027"})
	require.NoError(t, err)
	found, _, err := NewEventMatcher().FindExistingEvent(context.Background(), repo, ev)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestEventMerger_FillsOnlyEmptyFields(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewCarnivalRepository(db)
	ctx := context.Background()

	existing := seedCarnival(t, repo, &model.Carnival{
		Title:           "Delegate Title",
		Description:     "Delegate description",
		MySidelineTitle: "Original Title",
	})
	lat := -27.9
	ev, err := NormalizeScrapedEvent(&model.ScrapedEvent{
		MySidelineID:     "ms-9",
		Title:            "Scraped Title",
		Date:             "1/7/2027",
		Description:      "Scraped description",
		State:            "VIC",
		LocationLatitude: &lat,
	})
	require.NoError(t, err)

	synced := baseTime.Add(time.Hour)
	merger := &EventMerger{now: func() time.Time { return synced }}
	updated, changed, err := merger.MergeEvent(ctx, repo, existing, ev)
	require.NoError(t, err)

	assert.Equal(t, "Delegate Title", updated.Title)
	assert.Equal(t, "Delegate description", updated.Description)
	assert.Equal(t, "Original Title", updated.MySidelineTitle, "快照字段一旦写入不再改变")
	assert.Equal(t, "VIC", updated.State)
	require.NotNil(t, updated.MySidelineID)
	assert.Equal(t, "ms-9", *updated.MySidelineID)
	require.NotNil(t, updated.Date)
	assert.True(t, updated.Date.Equal(day(2027, 7, 1)))
	require.NotNil(t, updated.LocationLatitude)
	assert.InDelta(t, lat, *updated.LocationLatitude, 1e-6)
	require.NotNil(t, updated.LastMySidelineSync)
	assert.True(t, updated.LastMySidelineSync.Equal(synced))
	assert.Contains(t, changed, "state")
	assert.NotContains(t, changed, "title")

	// 相同输入再合并一次只刷新同步时间
	again := synced.Add(time.Hour)
	merger.now = func() time.Time { return again }
	_, changed, err = merger.MergeEvent(ctx, repo, updated, ev)
	require.NoError(t, err)
	assert.Empty(t, changed)
}
