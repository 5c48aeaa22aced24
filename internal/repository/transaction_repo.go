package repository

import (
	"context"
	"errors"

	"ideahub/internal/model"

	"gorm.io/gorm"
)

// TransactionRepository 代币流水仓储
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *gorm.DB, trans *model.TokenTransaction) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(trans).Error
}

// ListByUserID 用户流水，按时间倒序截断到 limit 条（一次性快照，不分页）
func (r *TransactionRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]*model.TokenTransaction, error) {
	var transactions []*model.TokenTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&transactions).Error
	return transactions, err
}

// GetByUserIDAndType 查询用户某类型的最早一笔流水（注册奖励幂等判断用）
func (r *TransactionRepository) GetByUserIDAndType(ctx context.Context, userID int64, transactionType string) (*model.TokenTransaction, error) {
	var trans model.TokenTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND transaction_type = ?", userID, transactionType).
		Order("created_at ASC").
		First(&trans).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trans, nil
}

// SumByUserID 用户全部流水金额之和（对账任务用）
func (r *TransactionRepository) SumByUserID(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.TokenTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}
