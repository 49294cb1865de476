package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"shortlink/internal/model"
)

// utf8BOM 让 Excel 按 UTF-8 打开
const utf8BOM = "\xEF\xBB\xBF"

// ExportHeader 导出文件的表头
var ExportHeader = []string{
	"time", "slug", "link_id", "target_id", "ip", "referrer", "ua",
	"utm_source", "utm_medium", "utm_campaign", "utm_content", "utm_term",
}

// ExportClicks 把符合条件的访问记录写成 CSV
func (s *StatsService) ExportClicks(ctx context.Context, q ClickQuery, w io.Writer) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return err
	}

	loc := s.now().Location()
	filter := q.Filter(loc)
	err := s.clicks.EachClick(ctx, filter, 500, func(batch []model.Click) error {
		for i := range batch {
			if err := cw.Write(exportRow(&batch[i], loc)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func exportRow(c *model.Click, loc *time.Location) []string {
	targetID := ""
	if c.TargetID != nil {
		targetID = strconv.FormatUint(uint64(*c.TargetID), 10)
	}
	return []string{
		c.CreatedAt.In(loc).Format("2006-01-02 15:04:05"),
		SanitizeCell(c.Slug),
		strconv.FormatUint(uint64(c.LinkID), 10),
		targetID,
		SanitizeCell(c.IP),
		SanitizeCell(c.Referrer),
		SanitizeCell(c.UserAgent),
		SanitizeCell(deref(c.UtmSource)),
		SanitizeCell(deref(c.UtmMedium)),
		SanitizeCell(deref(c.UtmCampaign)),
		SanitizeCell(deref(c.UtmContent)),
		SanitizeCell(deref(c.UtmTerm)),
	}
}

// SanitizeCell 以 = + - @ 开头的单元格前加制表符，防止表格软件当作公式执行
func SanitizeCell(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@':
		return "\t" + v
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
