package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shortlink/internal/model"
	"shortlink/pkg/database"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.Options{Driver: "sqlite", DSN: "file:" + t.Name() + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func strPtr(s string) *string { return &s }

func seedLink(t *testing.T, repo *LinkRepository, slug string, active bool, targets ...model.Target) *model.Link {
	t.Helper()
	ctx := context.Background()
	link := &model.Link{Slug: slug, DefaultURL: "https://" + slug + ".example", IsActive: true}
	require.NoError(t, repo.CreateLink(ctx, link))
	if !active {
		require.NoError(t, repo.UpdateLink(ctx, link.ID, map[string]interface{}{"is_active": false}))
		link.IsActive = false
	}
	for i := range targets {
		targets[i].LinkID = link.ID
		require.NoError(t, repo.CreateTarget(ctx, &targets[i]))
	}
	return link
}

func TestLinkRepository_FindBySlug(t *testing.T) {
	repo := NewLinkRepository(openDB(t))
	ctx := context.Background()
	seedLink(t, repo, "promo", true)
	seedLink(t, repo, "deadlink", false)

	link, err := repo.FindBySlug(ctx, "promo")
	require.NoError(t, err)
	assert.Equal(t, "https://promo.example", link.DefaultURL)

	link, err = repo.FindBySlug(ctx, "deadlink")
	require.NoError(t, err, "禁用的链接也能查到，由调用方判断")
	assert.False(t, link.IsActive)

	_, err = repo.FindBySlug(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = repo.FindBySlug(ctx, "PROMO")
	assert.True(t, errors.Is(err, ErrNotFound), "短码区分大小写")
}

func TestLinkRepository_ActiveTargetsFor(t *testing.T) {
	repo := NewLinkRepository(openDB(t))
	ctx := context.Background()
	link := seedLink(t, repo, "promo", true,
		model.Target{TargetURL: "https://a.example", Weight: 1, IsActive: true},
		model.Target{TargetURL: "https://b.example", Weight: 0, IsActive: true},
		model.Target{TargetURL: "https://c.example", Weight: 5, IsActive: true},
	)
	all, err := repo.ListTargets(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.NoError(t, repo.UpdateTarget(ctx, all[0].ID, map[string]interface{}{"is_active": false}))

	targets, err := repo.ActiveTargetsFor(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "https://a.example", targets[0].TargetURL)
	assert.Equal(t, "https://b.example", targets[1].TargetURL)
	assert.Less(t, targets[0].ID, targets[1].ID, "按 id 升序")

	targets, err = repo.ActiveTargetsFor(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestLinkRepository_DeleteCascadesTargetsKeepsClicks(t *testing.T) {
	db := openDB(t)
	repo := NewLinkRepository(db)
	clicks := NewClickRepository(db)
	ctx := context.Background()

	link := seedLink(t, repo, "promo", true, model.Target{TargetURL: "https://a.example", Weight: 1, IsActive: true})
	require.NoError(t, clicks.CreateClick(ctx, &model.Click{LinkID: link.ID, Slug: "promo"}))

	require.NoError(t, repo.DeleteLink(ctx, link.ID))

	_, err := repo.FindByID(ctx, link.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	targets, err := repo.ListTargets(ctx, link.ID)
	require.NoError(t, err)
	assert.Empty(t, targets)

	list, total, err := clicks.ListClicks(ctx, ClickFilter{Slug: "promo"}, Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "访问记录保留")
	assert.Len(t, list, 1)

	assert.True(t, errors.Is(repo.DeleteLink(ctx, link.ID), ErrNotFound))
}

func TestLinkRepository_SlugExists(t *testing.T) {
	repo := NewLinkRepository(openDB(t))
	seedLink(t, repo, "promo", true)

	ok, err := repo.SlugExists(context.Background(), "promo")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.SlugExists(context.Background(), "other")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLinkRepository_SlugIsCaseSensitive(t *testing.T) {
	repo := NewLinkRepository(openDB(t))
	ctx := context.Background()
	seedLink(t, repo, "promo", true)

	ok, err := repo.SlugExists(ctx, "Promo")
	require.NoError(t, err)
	assert.False(t, ok, "大小写不同是不同的短码")

	upper := seedLink(t, repo, "Promo", true)
	link, err := repo.FindBySlug(ctx, "Promo")
	require.NoError(t, err)
	assert.Equal(t, upper.ID, link.ID)

	_, err = repo.FindBySlug(ctx, "PROMO")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinkRepository_ListLinks(t *testing.T) {
	db := openDB(t)
	repo := NewLinkRepository(db)
	clicks := NewClickRepository(db)
	ctx := context.Background()

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	promo := seedLink(t, repo, "promo", true)
	seedLink(t, repo, "spring", true)
	seedLink(t, repo, "autumn", false)

	for _, at := range []time.Time{today.Add(-time.Hour), today.Add(time.Hour), today.Add(2 * time.Hour)} {
		require.NoError(t, clicks.CreateClick(ctx, &model.Click{LinkID: promo.ID, Slug: "promo", CreatedAt: at}))
	}

	rows, total, err := repo.ListLinks(ctx, "", Page{Number: 1, Size: 2}, today)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "autumn", rows[0].Slug, "最新的在前")

	rows, total, err = repo.ListLinks(ctx, "prom", Page{Number: 1, Size: 20}, today)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3), rows[0].ClicksTotal)
	assert.Equal(t, int64(2), rows[0].ClicksToday)
}

func TestClickRepository_FiltersAndPaging(t *testing.T) {
	db := openDB(t)
	clicks := NewClickRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		c := &model.Click{LinkID: 1, Slug: "promo", CreatedAt: base.AddDate(0, 0, i)}
		if i%2 == 0 {
			c.UtmSource = strPtr("news")
			c.UtmContent = strPtr("banner")
		}
		require.NoError(t, clicks.CreateClick(ctx, c))
	}
	require.NoError(t, clicks.CreateClick(ctx, &model.Click{LinkID: 2, Slug: "other", CreatedAt: base}))

	list, total, err := clicks.ListClicks(ctx, ClickFilter{Slug: "promo"}, Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, list, 2)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt), "按时间倒序")

	_, total, err = clicks.ListClicks(ctx, ClickFilter{UtmSource: "news", UtmContent: "banner"}, Page{Number: 1, Size: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	filter := ClickFilter{Slug: "promo", From: base.AddDate(0, 0, 1), To: base.AddDate(0, 0, 3)}
	_, total, err = clicks.ListClicks(ctx, filter, Page{Number: 1, Size: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "From 包含 To 不包含")

	var seen int
	var batches int
	err = clicks.EachClick(ctx, ClickFilter{Slug: "promo"}, 2, func(b []model.Click) error {
		batches++
		seen += len(b)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, seen)
	assert.Equal(t, 3, batches)
}

func TestClickRepository_Stats(t *testing.T) {
	db := openDB(t)
	repo := NewLinkRepository(db)
	clicks := NewClickRepository(db)
	ctx := context.Background()

	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local)
	link := seedLink(t, repo, "promo", true,
		model.Target{TargetURL: "https://a.example", Weight: 1, IsActive: true},
		model.Target{TargetURL: "https://b.example", Weight: 1, IsActive: true},
	)
	seedLink(t, repo, "deadlink", false)
	targets, err := repo.ActiveTargetsFor(ctx, link.ID)
	require.NoError(t, err)
	a, b := targets[0].ID, targets[1].ID

	for _, c := range []model.Click{
		{LinkID: link.ID, Slug: "promo", TargetID: &b, CreatedAt: today.Add(-25 * time.Hour)},
		{LinkID: link.ID, Slug: "promo", TargetID: &b, CreatedAt: today.Add(time.Hour)},
		{LinkID: link.ID, Slug: "promo", TargetID: &a, CreatedAt: today.Add(2 * time.Hour)},
		{LinkID: link.ID, Slug: "promo", CreatedAt: today.Add(3 * time.Hour)},
	} {
		c := c
		require.NoError(t, clicks.CreateClick(ctx, &c))
	}

	o, err := clicks.Overview(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, Overview{TotalClicks: 4, TodayClicks: 3, ActiveLinks: 1}, o)

	n, err := clicks.CountBetween(ctx, today.AddDate(0, 0, -1), today)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	n, err = clicks.CountBetween(ctx, today.AddDate(0, 0, -2), today.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stats, err := clicks.TargetStats(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, b, stats[0].ID)
	assert.Equal(t, int64(2), stats[0].Total)
	assert.Equal(t, int64(1), stats[1].Total)

	stats, err = clicks.TargetStats(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, stats, 2)
}

func TestCachedLinkRepository_RedisDownFallsBack(t *testing.T) {
	repo := NewLinkRepository(openDB(t))
	seedLink(t, repo, "promo", true, model.Target{TargetURL: "https://a.example", Weight: 1, IsActive: true})

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	cached := NewCachedLinkRepository(repo, client, time.Minute, zap.NewNop())
	ctx := context.Background()

	link, err := cached.FindBySlug(ctx, "promo")
	require.NoError(t, err)
	assert.Equal(t, "promo", link.Slug)

	targets, err := cached.ActiveTargetsFor(ctx, link.ID)
	require.NoError(t, err)
	assert.Len(t, targets, 1)

	_, err = cached.FindBySlug(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	cached.Invalidate(ctx, "promo", link.ID)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "shortlink:slug:promo", slugKey("promo"))
	assert.Equal(t, "shortlink:targets:42", targetsKey(42))
}
