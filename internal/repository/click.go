package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shortlink/internal/model"
)

// ClickRepository 访问记录的写入和统计查询
type ClickRepository struct {
	db *gorm.DB
}

func NewClickRepository(db *gorm.DB) *ClickRepository {
	return &ClickRepository{db: db}
}

// ClickFilter 访问记录筛选条件。From 包含，To 不包含，零值表示不限
type ClickFilter struct {
	Slug       string
	From       time.Time
	To         time.Time
	UtmSource  string
	UtmContent string
}

func (f ClickFilter) scope(db *gorm.DB) *gorm.DB {
	if f.Slug != "" {
		db = db.Where("slug = ?", f.Slug)
	}
	if !f.From.IsZero() {
		db = db.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		db = db.Where("created_at < ?", f.To)
	}
	if f.UtmSource != "" {
		db = db.Where("utm_source = ?", f.UtmSource)
	}
	if f.UtmContent != "" {
		db = db.Where("utm_content = ?", f.UtmContent)
	}
	return db
}

// Overview 总览数据
type Overview struct {
	TotalClicks int64 `json:"total_clicks"`
	TodayClicks int64 `json:"today_clicks"`
	ActiveLinks int64 `json:"active_links"`
}

// TargetStat 单个目标的访问量
type TargetStat struct {
	ID        uint   `json:"id"`
	LinkID    uint   `json:"link_id"`
	TargetURL string `json:"target_url"`
	Total     int64  `json:"total"`
}

// CreateClick 写入一条访问记录
func (r *ClickRepository) CreateClick(ctx context.Context, click *model.Click) error {
	return r.db.WithContext(ctx).Create(click).Error
}

// ListClicks 按时间倒序分页查询
func (r *ClickRepository) ListClicks(ctx context.Context, filter ClickFilter, page Page) ([]model.Click, int64, error) {
	page = page.normalize()

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Click{}).Scopes(filter.scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	clicks := make([]model.Click, 0, page.Size)
	err := r.db.WithContext(ctx).Scopes(filter.scope).
		Order("created_at DESC, id DESC").
		Offset(page.offset()).
		Limit(page.Size).
		Find(&clicks).Error
	if err != nil {
		return nil, 0, err
	}
	return clicks, total, nil
}

// EachClick 按 id 倒序分批遍历符合条件的记录，用于导出
func (r *ClickRepository) EachClick(ctx context.Context, filter ClickFilter, batchSize int, fn func([]model.Click) error) error {
	if batchSize <= 0 {
		batchSize = 500
	}
	var lastID uint
	for {
		var batch []model.Click
		query := r.db.WithContext(ctx).Scopes(filter.scope)
		if lastID > 0 {
			query = query.Where("id < ?", lastID)
		}
		if err := query.Order("id DESC").Limit(batchSize).Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		lastID = batch[len(batch)-1].ID
	}
}

// Overview 统计总访问量、今日访问量和启用的链接数
func (r *ClickRepository) Overview(ctx context.Context, dayStart time.Time) (Overview, error) {
	var o Overview
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Click{}).Count(&o.TotalClicks).Error; err != nil {
		return o, err
	}
	if err := db.Model(&model.Click{}).Where("created_at >= ?", dayStart).Count(&o.TodayClicks).Error; err != nil {
		return o, err
	}
	if err := db.Model(&model.Link{}).Where("is_active = ?", true).Count(&o.ActiveLinks).Error; err != nil {
		return o, err
	}
	return o, nil
}

// CountBetween 统计 [from, to) 区间内的访问量
func (r *ClickRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Click{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&n).Error
	return n, err
}

// TargetStats 按目标统计访问量，linkID 为 0 时统计全部目标
func (r *ClickRepository) TargetStats(ctx context.Context, linkID uint) ([]TargetStat, error) {
	query := r.db.WithContext(ctx).
		Table("link_targets AS lt").
		Select("lt.id, lt.link_id, lt.target_url, COUNT(c.id) AS total").
		Joins("LEFT JOIN clicks c ON c.target_id = lt.id")
	if linkID > 0 {
		query = query.Where("lt.link_id = ?", linkID)
	}

	stats := make([]TargetStat, 0)
	err := query.
		Group("lt.id, lt.link_id, lt.target_url").
		Order("total DESC, lt.id ASC").
		Scan(&stats).Error
	return stats, err
}
