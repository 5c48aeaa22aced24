package repository

import (
	"context"
	"errors"

	"ideahub/internal/model"

	"gorm.io/gorm"
)

// InvestmentRepository 创意投资仓储
type InvestmentRepository struct {
	db *gorm.DB
}

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(ctx context.Context, tx *gorm.DB, inv *model.IdeaInvestment) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(inv).Error
}

// GetByIdeaAndUser 查询 (创意, 用户) 对应的投资行，不存在返回 nil
func (r *InvestmentRepository) GetByIdeaAndUser(ctx context.Context, ideaID, userID int64) (*model.IdeaInvestment, error) {
	var inv model.IdeaInvestment
	err := r.db.WithContext(ctx).
		Where("idea_id = ? AND user_id = ?", ideaID, userID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

// AddAmount 在既有投资行上累加金额
// 使用 SQL 表达式原地累加，不做 read-modify-write，避免丢失更新
func (r *InvestmentRepository) AddAmount(ctx context.Context, tx *gorm.DB, id int64, delta int64) error {
	if tx == nil {
		tx = r.db
	}
	result := tx.WithContext(ctx).
		Model(&model.IdeaInvestment{}).
		Where("id = ?", id).
		UpdateColumn("amount", gorm.Expr("amount + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByIdea 某创意的全部投资，按金额倒序
func (r *InvestmentRepository) ListByIdea(ctx context.Context, ideaID int64) ([]*model.IdeaInvestment, error) {
	var invs []*model.IdeaInvestment
	err := r.db.WithContext(ctx).
		Where("idea_id = ?", ideaID).
		Order("amount DESC").
		Find(&invs).Error
	return invs, err
}

// ListByUser 用户的全部投资，按时间倒序
func (r *InvestmentRepository) ListByUser(ctx context.Context, userID int64) ([]*model.IdeaInvestment, error) {
	var invs []*model.IdeaInvestment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&invs).Error
	return invs, err
}

// ListByIdeaIDs 批量拉取一组创意的投资行（列表页聚合用）
func (r *InvestmentRepository) ListByIdeaIDs(ctx context.Context, ideaIDs []int64) ([]*model.IdeaInvestment, error) {
	if len(ideaIDs) == 0 {
		return nil, nil
	}
	var invs []*model.IdeaInvestment
	err := r.db.WithContext(ctx).
		Where("idea_id IN ?", ideaIDs).
		Find(&invs).Error
	return invs, err
}
