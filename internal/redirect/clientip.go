package redirect

import (
	"net"
	"net/http"
	"strings"
)

const unknownIP = "0.0.0.0"

// ClientIP 按 X-Forwarded-For、CF-Connecting-IP、X-Real-IP、连接地址的顺序取访客 IP。
// 不校验格式，结果只用于分组和记录。
func ClientIP(header http.Header, remoteAddr string) string {
	if xff := header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	for _, name := range []string{"CF-Connecting-IP", "X-Real-IP"} {
		if v := header.Get(name); v != "" {
			return strings.TrimSpace(v)
		}
	}
	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
			return host
		}
		return strings.TrimSpace(remoteAddr)
	}
	return unknownIP
}
