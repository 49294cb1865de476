package service

import (
	"context"
	"time"

	"shortlink/internal/model"
	"shortlink/internal/repository"
)

const (
	dateLayout  = "2006-01-02"
	maxStatDays = 90
)

// DailyCount 某一天的访问量
type DailyCount struct {
	Day   string `json:"day"`
	Total int64  `json:"total"`
}

// ClickQuery 访问记录查询参数，日期格式为 YYYY-MM-DD，均按本地时区解释
type ClickQuery struct {
	Slug       string `form:"slug"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
	UtmSource  string `form:"utm_source"`
	UtmContent string `form:"utm_content"`
}

// Filter 转成存储层的筛选条件。date_to 包含当天，无法解析的日期忽略
func (q ClickQuery) Filter(loc *time.Location) repository.ClickFilter {
	f := repository.ClickFilter{Slug: q.Slug, UtmSource: q.UtmSource, UtmContent: q.UtmContent}
	if t, err := time.ParseInLocation(dateLayout, q.DateFrom, loc); err == nil {
		f.From = t
	}
	if t, err := time.ParseInLocation(dateLayout, q.DateTo, loc); err == nil {
		f.To = t.AddDate(0, 0, 1)
	}
	return f
}

// StatsService 统计和访问记录查询
type StatsService struct {
	clicks *repository.ClickRepository
	now    func() time.Time
}

func NewStatsService(clicks *repository.ClickRepository) *StatsService {
	return &StatsService{clicks: clicks, now: time.Now}
}

func (s *StatsService) Overview(ctx context.Context) (repository.Overview, error) {
	return s.clicks.Overview(ctx, startOfDay(s.now()))
}

// ClampDays 天数限制在 1..90，非正数取默认 7 天
func ClampDays(days int) int {
	if days <= 0 {
		return 7
	}
	if days > maxStatDays {
		return maxStatDays
	}
	return days
}

// Daily 最近 days 天每天的访问量，按日期升序，没有访问的日期为 0
func (s *StatsService) Daily(ctx context.Context, days int) ([]DailyCount, error) {
	days = ClampDays(days)
	today := startOfDay(s.now())

	result := make([]DailyCount, 0, days)
	for i := days - 1; i >= 0; i-- {
		from := today.AddDate(0, 0, -i)
		n, err := s.clicks.CountBetween(ctx, from, from.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		result = append(result, DailyCount{Day: from.Format(dateLayout), Total: n})
	}
	return result, nil
}

// Targets linkID 为 0 时统计全部目标
func (s *StatsService) Targets(ctx context.Context, linkID uint) ([]repository.TargetStat, error) {
	return s.clicks.TargetStats(ctx, linkID)
}

func (s *StatsService) Clicks(ctx context.Context, q ClickQuery, page repository.Page) ([]model.Click, int64, error) {
	return s.clicks.ListClicks(ctx, q.Filter(s.now().Location()), page)
}
