package model

import (
	"time"
)

// ============================================================================
// 交易类型常量
// ============================================================================

const (
	TransactionTypeSignupBonus = "signup_bonus" // 注册奖励
	TransactionTypePurchase    = "purchase"     // 购买代币
	TransactionTypeInvestment  = "investment"   // 创意投资
	TransactionTypeUsage       = "usage"        // 代币消费
	TransactionTypeRefund      = "refund"       // 退款
)

// ============================================================================
// 代币流水实体
// ============================================================================

// TokenTransaction 代币流水表
// 记录账户的每一笔代币变动，是对账的核心依据
//
// 【重要】流水表设计原则：
// 1. 只追加，不修改，不删除 —— 保证审计可追溯
// 2. 余额字段与流水在同一事务内更新 —— balance 恒等于流水金额之和
// 3. 记录交易前后余额 —— 便于校验余额一致性
type TokenTransaction struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionNo string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"` // 流水号（全局唯一）
	UserID        int64     `gorm:"index;not null" json:"user_id"`                               // 用户ID
	Amount        int64     `gorm:"not null" json:"amount"`                                      // 金额（正数入账，负数出账）
	Type          string    `gorm:"column:transaction_type;type:varchar(20);not null" json:"transaction_type"` // 交易类型
	Description   string    `gorm:"type:varchar(256)" json:"description"`                        // 备注
	ReferenceID   *int64    `gorm:"index" json:"reference_id,omitempty"`                         // 关联实体ID（如创意ID）
	BalanceBefore int64     `gorm:"not null" json:"balance_before"`                              // 交易前余额
	BalanceAfter  int64     `gorm:"not null" json:"balance_after"`                               // 交易后余额
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (TokenTransaction) TableName() string {
	return "token_transactions"
}
