package redirect

import (
	"net/url"
	"strings"
)

// UTM 五个标准的推广参数
type UTM struct {
	Source   string
	Medium   string
	Campaign string
	Content  string
	Term     string
}

type utmPair struct {
	key   string
	value string
}

func (u UTM) pairs() [5]utmPair {
	return [5]utmPair{
		{"utm_source", u.Source},
		{"utm_medium", u.Medium},
		{"utm_campaign", u.Campaign},
		{"utm_content", u.Content},
		{"utm_term", u.Term},
	}
}

func (u UTM) IsZero() bool {
	return u == UTM{}
}

// ParseUTM 从查询参数中取出 UTM 参数，其他参数忽略。
// 同名参数出现多次时以最后一个为准，最后一个为空则视为没有该参数。
func ParseUTM(query url.Values) UTM {
	return UTM{
		Source:   last(query, "utm_source"),
		Medium:   last(query, "utm_medium"),
		Campaign: last(query, "utm_campaign"),
		Content:  last(query, "utm_content"),
		Term:     last(query, "utm_term"),
	}
}

func last(query url.Values, key string) string {
	values := query[key]
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}

// MergeUTM 把 UTM 参数追加到目标地址。目标地址已有的同名参数保持不变；
// 没有追加任何参数时原样返回 rawURL。
func MergeUTM(rawURL string, utm UTM) string {
	if utm.IsZero() {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	existing, _ := url.ParseQuery(u.RawQuery)

	var added []string
	for _, p := range utm.pairs() {
		if p.value == "" {
			continue
		}
		if _, ok := existing[p.key]; ok {
			continue
		}
		added = append(added, p.key+"="+url.QueryEscape(p.value))
	}
	if len(added) == 0 {
		return rawURL
	}

	query := strings.TrimSuffix(u.RawQuery, "&")
	if query != "" {
		query += "&"
	}
	u.RawQuery = query + strings.Join(added, "&")
	u.ForceQuery = false
	return u.String()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
