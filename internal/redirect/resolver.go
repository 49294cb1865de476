package redirect

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"shortlink/internal/model"
	"shortlink/internal/repository"
)

// LinkRepository 跳转路径需要的只读查询
type LinkRepository interface {
	FindBySlug(ctx context.Context, slug string) (*model.Link, error)
	ActiveTargetsFor(ctx context.Context, linkID uint) ([]model.Target, error)
}

// Status 短码解析结果
type Status int

const (
	NotFound Status = iota
	Resolved
)

// Resolution 解析结果。未找到和已禁用都是 NotFound，对外不做区分
type Resolution struct {
	Status Status
	Link   *model.Link
}

func (r Resolution) Found() bool {
	return r.Status == Resolved && r.Link != nil
}

// Resolver 按短码查找可用的链接
type Resolver struct {
	links  LinkRepository
	logger *zap.Logger
}

func NewResolver(links LinkRepository, logger *zap.Logger) *Resolver {
	return &Resolver{links: links, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, slug string) Resolution {
	link, err := r.links.FindBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.logger.Error("查询短链接失败", zap.String("slug", slug), zap.Error(err))
		}
		return Resolution{Status: NotFound}
	}
	if link == nil || !link.IsActive {
		return Resolution{Status: NotFound}
	}
	return Resolution{Status: Resolved, Link: link}
}
