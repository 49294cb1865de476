// Package redirect 是短链接跳转的决策流程：解析短码、按权重选择目标、合并 UTM 参数、
// 识别访客、限流并记录访问，最后给出跳转地址。
//
// 访问记录失败或被限流都不影响跳转，流程中的任何错误对访客只表现为跳转或 404。
package redirect

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"shortlink/internal/model"
)

// NotFoundBody 404 响应正文
const NotFoundBody = "Shortlink not found"

// RateLimiter 访问记录限流
type RateLimiter interface {
	Allow(ctx context.Context, ip string, limitPerMinute int) bool
}

// ClickRecorder 保存访问记录，不能阻塞调用方
type ClickRecorder interface {
	Record(ctx context.Context, click *model.Click)
}

// Request 一次跳转请求中用到的数据
type Request struct {
	Slug       string
	Query      url.Values
	Header     http.Header
	RemoteAddr string
}

// Outcome 跳转决策结果
type Outcome struct {
	Found    bool
	Status   int
	Location string
	Click    *model.Click
	Recorded bool
}

// Options 跳转行为配置
type Options struct {
	RedirectCode    int
	RateLimitPerMin int
}

// Engine 串联整个跳转流程
type Engine struct {
	resolver *Resolver
	links    LinkRepository
	selector *Selector
	limiter  RateLimiter
	recorder ClickRecorder
	opts     Options
	logger   *zap.Logger
}

func NewEngine(links LinkRepository, selector *Selector, limiter RateLimiter, recorder ClickRecorder, opts Options, logger *zap.Logger) *Engine {
	if opts.RedirectCode == 0 {
		opts.RedirectCode = http.StatusFound
	}
	logger = logger.Named("redirect")
	return &Engine{
		resolver: NewResolver(links, logger),
		links:    links,
		selector: selector,
		limiter:  limiter,
		recorder: recorder,
		opts:     opts,
		logger:   logger,
	}
}

// Redirect 处理一次跳转请求
func (e *Engine) Redirect(ctx context.Context, req Request) Outcome {
	if req.Slug == "" || strings.Contains(req.Slug, "/") {
		return Outcome{Status: http.StatusNotFound}
	}

	res := e.resolver.Resolve(ctx, req.Slug)
	if !res.Found() {
		return Outcome{Status: http.StatusNotFound}
	}
	link := res.Link

	destination := link.DefaultURL
	var targetID *uint
	targets, err := e.links.ActiveTargetsFor(ctx, link.ID)
	if err != nil {
		e.logger.Error("查询跳转目标失败，使用默认地址", zap.Uint("link_id", link.ID), zap.Error(err))
	}
	if chosen := e.selector.Select(targets); chosen != nil {
		destination = chosen.TargetURL
		id := chosen.ID
		targetID = &id
	}

	utm := ParseUTM(req.Query)
	location := MergeUTM(destination, utm)
	ip := ClientIP(req.Header, req.RemoteAddr)

	click := &model.Click{
		LinkID:         link.ID,
		Slug:           req.Slug,
		TargetID:       targetID,
		IP:             ip,
		UserAgent:      req.Header.Get("User-Agent"),
		Referrer:       req.Header.Get("Referer"),
		AcceptLanguage: req.Header.Get("Accept-Language"),
		UtmSource:      optional(utm.Source),
		UtmMedium:      optional(utm.Medium),
		UtmCampaign:    optional(utm.Campaign),
		UtmContent:     optional(utm.Content),
		UtmTerm:        optional(utm.Term),
	}

	recorded := e.limiter.Allow(ctx, ip, e.opts.RateLimitPerMin)
	if recorded {
		e.recorder.Record(ctx, click)
	} else {
		e.logger.Debug("访问记录已被限流", zap.String("slug", req.Slug))
	}

	return Outcome{
		Found:    true,
		Status:   e.opts.RedirectCode,
		Location: location,
		Click:    click,
		Recorded: recorded,
	}
}

// Write 输出跳转决策。记录和未记录的跳转都带 Cache-Control: no-store
func (o Outcome) Write(w http.ResponseWriter) {
	if !o.Found {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(NotFoundBody))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Location", o.Location)
	w.WriteHeader(o.Status)
}
