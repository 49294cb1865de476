// Package repository 封装短链接、跳转目标和访问记录的持久化。
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Page 分页参数，Size 限制在 1..100
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 1
	}
	if p.Size > 100 {
		p.Size = 100
	}
	return p
}

func (p Page) offset() int {
	return (p.Number - 1) * p.Size
}
