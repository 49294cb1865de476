package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shortlink/internal/model"
)

// LinkRepository 基于 gorm 的短链接和跳转目标存储
type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// LinkSummary 列表页中的一行，带访问统计
type LinkSummary struct {
	ID          uint      `json:"id"`
	Slug        string    `json:"slug"`
	Title       *string   `json:"title"`
	DefaultURL  string    `json:"default_url"`
	IsActive    bool      `json:"is_active"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ClicksTotal int64     `json:"clicks_total"`
	ClicksToday int64     `json:"clicks_today"`
}

// FindBySlug 按短码精确查找，不区分启用状态
func (r *LinkRepository) FindBySlug(ctx context.Context, slug string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// ActiveTargetsFor 返回链接下启用的目标，按 id 升序，顺序在多次调用间保持一致
func (r *LinkRepository) ActiveTargetsFor(ctx context.Context, linkID uint) ([]model.Target, error) {
	var targets []model.Target
	err := r.db.WithContext(ctx).
		Where("link_id = ? AND is_active = ?", linkID, true).
		Order("id ASC").
		Find(&targets).Error
	return targets, err
}

func (r *LinkRepository) FindByID(ctx context.Context, id uint) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).First(&link, id).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

// SlugExists 检查短码是否已被占用
func (r *LinkRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Link{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *LinkRepository) CreateLink(ctx context.Context, link *model.Link) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// UpdateLink 按列名更新链接，布尔值 false 也会写入。调用方负责确认链接存在
func (r *LinkRepository) UpdateLink(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Link{}).Where("id = ?", id).Updates(fields).Error
}

// DeleteLink 删除链接及其全部目标，访问记录保留
func (r *LinkRepository) DeleteLink(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("link_id = ?", id).Delete(&model.Target{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Link{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListLinks 分页列出链接，q 对短码、标题和默认地址做模糊匹配
func (r *LinkRepository) ListLinks(ctx context.Context, q string, page Page, dayStart time.Time) ([]LinkSummary, int64, error) {
	page = page.normalize()
	search := func(db *gorm.DB) *gorm.DB {
		if q == "" {
			return db
		}
		like := "%" + q + "%"
		return db.Where("slug LIKE ? OR title LIKE ? OR default_url LIKE ?", like, like, like)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Link{}).Scopes(search).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]LinkSummary, 0, page.Size)
	err := r.db.WithContext(ctx).Model(&model.Link{}).Scopes(search).
		Select("links.*, "+
			"(SELECT COUNT(*) FROM clicks c WHERE c.link_id = links.id) AS clicks_total, "+
			"(SELECT COUNT(*) FROM clicks c WHERE c.link_id = links.id AND c.created_at >= ?) AS clicks_today", dayStart).
		Order("links.id DESC").
		Offset(page.offset()).
		Limit(page.Size).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListTargets 返回链接下全部目标，最新的在前
func (r *LinkRepository) ListTargets(ctx context.Context, linkID uint) ([]model.Target, error) {
	targets := make([]model.Target, 0)
	err := r.db.WithContext(ctx).Where("link_id = ?", linkID).Order("id DESC").Find(&targets).Error
	return targets, err
}

func (r *LinkRepository) FindTarget(ctx context.Context, id uint) (*model.Target, error) {
	var target model.Target
	if err := r.db.WithContext(ctx).First(&target, id).Error; err != nil {
		return nil, translate(err)
	}
	return &target, nil
}

func (r *LinkRepository) CreateTarget(ctx context.Context, target *model.Target) error {
	return r.db.WithContext(ctx).Create(target).Error
}

func (r *LinkRepository) UpdateTarget(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Target{}).Where("id = ?", id).Updates(fields).Error
}

func (r *LinkRepository) DeleteTarget(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Target{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
