package model

import (
	"time"
)

// TokenAccount 用户代币账户表
// 记录用户当前可用的代币余额，是整个代币经济的核心数据
type TokenAccount struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"uniqueIndex;not null" json:"user_id"` // 用户ID，来自身份服务
	Balance   int64     `gorm:"not null;default:0" json:"balance"`   // 可用余额（代币数）
	Version   int       `gorm:"not null;default:0" json:"version"`   // 乐观锁版本号
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TokenAccount) TableName() string {
	return "user_tokens"
}
