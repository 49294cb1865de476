// Package service 实现管理后台的业务规则：链接和目标的维护、统计查询和导出。
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"shortlink/internal/model"
	"shortlink/internal/repository"
	"shortlink/internal/shortcode"
)

var (
	ErrNotFound      = repository.ErrNotFound
	ErrInvalidSlug   = errors.New("INVALID_SLUG")
	ErrSlugExists    = errors.New("SLUG_EXISTS")
	ErrInvalidURL    = errors.New("INVALID_URL")
	ErrInvalidWeight = errors.New("INVALID_WEIGHT")
)

// SlugSource 生成新短码
type SlugSource interface {
	Next(ctx context.Context) (string, error)
}

// CacheInvalidator 链接数据变化后清除跳转缓存
type CacheInvalidator interface {
	Invalidate(ctx context.Context, slug string, linkID uint)
}

// CreateLinkInput 创建链接的参数，Slug 为空时自动生成
type CreateLinkInput struct {
	Slug       string `json:"slug" example:"promo"`
	Title      string `json:"title" example:"春季活动"`
	DefaultURL string `json:"default_url" example:"https://example.com/landing"`
}

// UpdateLinkInput 只更新非 nil 的字段
type UpdateLinkInput struct {
	Title      *string `json:"title"`
	DefaultURL *string `json:"default_url"`
}

// TargetInput 目标参数，更新时只处理非 nil 的字段
type TargetInput struct {
	TargetURL *string `json:"target_url"`
	Weight    *int    `json:"weight"`
}

// LinkService 链接和目标管理
type LinkService struct {
	links  *repository.LinkRepository
	slugs  SlugSource
	rules  shortcode.Rules
	cache  CacheInvalidator
	now    func() time.Time
	logger *zap.Logger
}

// NewLinkService cache 可以为 nil
func NewLinkService(links *repository.LinkRepository, slugs SlugSource, rules shortcode.Rules, cache CacheInvalidator, logger *zap.Logger) *LinkService {
	return &LinkService{
		links:  links,
		slugs:  slugs,
		rules:  rules,
		cache:  cache,
		now:    time.Now,
		logger: logger.Named("link_service"),
	}
}

// ValidateURL 只接受带主机名的 http/https 绝对地址
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Hostname() == "" {
		return ErrInvalidURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	}
	return ErrInvalidURL
}

func (s *LinkService) Create(ctx context.Context, in CreateLinkInput, userID uint) (*model.Link, error) {
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		generated, err := s.slugs.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("生成短码失败: %w", err)
		}
		slug = generated
	}
	if err := s.rules.Validate(slug); err != nil {
		return nil, ErrInvalidSlug
	}
	exists, err := s.links.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSlugExists
	}
	defaultURL := strings.TrimSpace(in.DefaultURL)
	if err := ValidateURL(defaultURL); err != nil {
		return nil, err
	}

	link := &model.Link{
		Slug:       slug,
		Title:      nullable(in.Title),
		DefaultURL: defaultURL,
		IsActive:   true,
		CreatedBy:  userID,
	}
	if err := s.links.CreateLink(ctx, link); err != nil {
		// 并发创建同一短码时由唯一索引兜底
		if exists, _ := s.links.SlugExists(ctx, slug); exists {
			return nil, ErrSlugExists
		}
		return nil, err
	}
	s.logger.Info("创建短链接", zap.String("slug", slug), zap.Uint("user_id", userID))
	return link, nil
}

func (s *LinkService) Get(ctx context.Context, id uint) (*model.Link, error) {
	return s.links.FindByID(ctx, id)
}

func (s *LinkService) Update(ctx context.Context, id uint, in UpdateLinkInput) (*model.Link, error) {
	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.Title != nil {
		fields["title"] = nullable(*in.Title)
	}
	if in.DefaultURL != nil {
		defaultURL := strings.TrimSpace(*in.DefaultURL)
		if err := ValidateURL(defaultURL); err != nil {
			return nil, err
		}
		fields["default_url"] = defaultURL
	}
	if len(fields) > 0 {
		if err := s.links.UpdateLink(ctx, id, fields); err != nil {
			return nil, err
		}
		s.invalidate(ctx, link.Slug, link.ID)
	}
	return s.links.FindByID(ctx, id)
}

// Toggle 设置链接启用状态
func (s *LinkService) Toggle(ctx context.Context, id uint, active bool) (*model.Link, error) {
	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.links.UpdateLink(ctx, id, map[string]interface{}{"is_active": active}); err != nil {
		return nil, err
	}
	s.invalidate(ctx, link.Slug, link.ID)
	link.IsActive = active
	return link, nil
}

// Delete 删除链接和它的目标，访问记录保留
func (s *LinkService) Delete(ctx context.Context, id uint) error {
	link, err := s.links.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.links.DeleteLink(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, link.Slug, link.ID)
	s.logger.Info("删除短链接", zap.String("slug", link.Slug))
	return nil
}

func (s *LinkService) List(ctx context.Context, q string, page repository.Page) ([]repository.LinkSummary, int64, error) {
	return s.links.ListLinks(ctx, strings.TrimSpace(q), page, startOfDay(s.now()))
}

func (s *LinkService) ListTargets(ctx context.Context, linkID uint) ([]model.Target, error) {
	if _, err := s.links.FindByID(ctx, linkID); err != nil {
		return nil, err
	}
	return s.links.ListTargets(ctx, linkID)
}

// AddTarget 新目标默认启用，权重缺省为 0
func (s *LinkService) AddTarget(ctx context.Context, linkID uint, in TargetInput) (*model.Target, error) {
	link, err := s.links.FindByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if in.TargetURL == nil {
		return nil, ErrInvalidURL
	}
	targetURL := strings.TrimSpace(*in.TargetURL)
	if err := ValidateURL(targetURL); err != nil {
		return nil, err
	}
	weight := 0
	if in.Weight != nil {
		weight = *in.Weight
	}
	if weight < 0 {
		return nil, ErrInvalidWeight
	}

	target := &model.Target{LinkID: linkID, TargetURL: targetURL, Weight: weight, IsActive: true}
	if err := s.links.CreateTarget(ctx, target); err != nil {
		return nil, err
	}
	s.invalidate(ctx, link.Slug, link.ID)
	return target, nil
}

func (s *LinkService) UpdateTarget(ctx context.Context, id uint, in TargetInput) (*model.Target, error) {
	target, err := s.links.FindTarget(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if in.TargetURL != nil {
		targetURL := strings.TrimSpace(*in.TargetURL)
		if err := ValidateURL(targetURL); err != nil {
			return nil, err
		}
		fields["target_url"] = targetURL
	}
	if in.Weight != nil {
		if *in.Weight < 0 {
			return nil, ErrInvalidWeight
		}
		fields["weight"] = *in.Weight
	}
	if len(fields) > 0 {
		if err := s.links.UpdateTarget(ctx, id, fields); err != nil {
			return nil, err
		}
		s.invalidateTargets(ctx, target.LinkID)
	}
	return s.links.FindTarget(ctx, id)
}

func (s *LinkService) ToggleTarget(ctx context.Context, id uint, active bool) (*model.Target, error) {
	target, err := s.links.FindTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.links.UpdateTarget(ctx, id, map[string]interface{}{"is_active": active}); err != nil {
		return nil, err
	}
	s.invalidateTargets(ctx, target.LinkID)
	target.IsActive = active
	return target, nil
}

func (s *LinkService) DeleteTarget(ctx context.Context, id uint) error {
	target, err := s.links.FindTarget(ctx, id)
	if err != nil {
		return err
	}
	if err := s.links.DeleteTarget(ctx, id); err != nil {
		return err
	}
	s.invalidateTargets(ctx, target.LinkID)
	return nil
}

func (s *LinkService) invalidate(ctx context.Context, slug string, linkID uint) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, slug, linkID)
	}
}

// invalidateTargets 目标变化只影响目标缓存
func (s *LinkService) invalidateTargets(ctx context.Context, linkID uint) {
	s.invalidate(ctx, "", linkID)
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
