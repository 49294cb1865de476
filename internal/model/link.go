package model

import (
	"time"
)

// Link 短链接模型
type Link struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Slug       string    `gorm:"size:20;uniqueIndex;not null" json:"slug"`
	Title      *string   `gorm:"size:255" json:"title"`
	DefaultURL string    `gorm:"type:text;not null" json:"default_url"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedBy  uint      `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Targets []Target `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Link) TableName() string {
	return "links"
}

// Target 短链接下的一个带权重的跳转目标
type Target struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	LinkID    uint      `gorm:"not null;index" json:"link_id"`
	TargetURL string    `gorm:"type:text;not null" json:"target_url"`
	Weight    int       `gorm:"not null;default:0" json:"weight"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Target) TableName() string {
	return "link_targets"
}

// Eligible 目标启用且权重大于 0 才参与选择
func (t Target) Eligible() bool {
	return t.IsActive && t.Weight > 0
}
