package model

import (
	"time"
)

// Click 一次跳转的访问记录，写入后不再修改
type Click struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	LinkID         uint      `gorm:"not null;index" json:"link_id"`
	Slug           string    `gorm:"size:20;not null;index" json:"slug"`
	TargetID       *uint     `gorm:"index" json:"target_id"`
	IP             string    `gorm:"size:64" json:"ip"`
	UserAgent      string    `gorm:"column:ua;type:text" json:"ua"`
	Referrer       string    `gorm:"type:text" json:"referrer"`
	AcceptLanguage string    `gorm:"column:accept_lang;size:255" json:"accept_lang"`
	UtmSource      *string   `gorm:"size:255;index" json:"utm_source"`
	UtmMedium      *string   `gorm:"size:255" json:"utm_medium"`
	UtmCampaign    *string   `gorm:"size:255" json:"utm_campaign"`
	UtmContent     *string   `gorm:"size:255;index" json:"utm_content"`
	UtmTerm        *string   `gorm:"size:255" json:"utm_term"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (Click) TableName() string {
	return "clicks"
}
