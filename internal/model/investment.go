package model

import (
	"time"
)

// IdeaInvestment 创意投资表
// 每个 (创意, 投资人) 至多一行，重复投资在原行上累加金额
//
// 【重要】amount 只增不减：投资不支持撤回，对应的扣款流水见 token_transactions
type IdeaInvestment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	IdeaID    int64     `gorm:"not null;uniqueIndex:uk_idea_user,priority:1" json:"idea_id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uk_idea_user,priority:2;index" json:"user_id"`
	Amount    int64     `gorm:"not null" json:"amount"` // 累计投资额（严格正数）
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (IdeaInvestment) TableName() string {
	return "idea_investments"
}
