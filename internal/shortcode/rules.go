// Package shortcode 负责短码的校验和生成。
package shortcode

import (
	"errors"
	"strings"
)

var (
	ErrLength   = errors.New("短码长度不合法")
	ErrCharset  = errors.New("短码只能包含字母、数字、下划线和短横线")
	ErrReserved = errors.New("短码是保留字")
)

// Rules 短码规则
type Rules struct {
	DefaultLength int
	MinLength     int
	MaxLength     int
	Reserved      []string
}

// DefaultRules 默认长度 6，允许 3 到 20 个字符
func DefaultRules(reserved []string) Rules {
	return Rules{DefaultLength: 6, MinLength: 3, MaxLength: 20, Reserved: reserved}
}

// NewRules 按配置覆盖默认规则，非正数的长度沿用默认值
func NewRules(defaultLength, minLength, maxLength int, reserved []string) Rules {
	r := DefaultRules(reserved)
	if defaultLength > 0 {
		r.DefaultLength = defaultLength
	}
	if minLength > 0 {
		r.MinLength = minLength
	}
	if maxLength >= r.MinLength {
		r.MaxLength = maxLength
	}
	return r
}

// Validate 检查自定义短码
func (r Rules) Validate(slug string) error {
	if len(slug) < r.MinLength || len(slug) > r.MaxLength {
		return ErrLength
	}
	for i := 0; i < len(slug); i++ {
		if !allowed(slug[i]) {
			return ErrCharset
		}
	}
	if r.IsReserved(slug) {
		return ErrReserved
	}
	return nil
}

// IsReserved 保留字比较不区分大小写
func (r Rules) IsReserved(slug string) bool {
	for _, word := range r.Reserved {
		if strings.EqualFold(word, slug) {
			return true
		}
	}
	return false
}

func allowed(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-':
		return true
	}
	return false
}
