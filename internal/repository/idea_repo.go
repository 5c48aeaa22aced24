package repository

import (
	"context"
	"errors"

	"ideahub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrIdeaNotFound = errors.New("创意不存在")

// IdeaRepository 创意仓储
type IdeaRepository struct {
	db *gorm.DB
}

func NewIdeaRepository(db *gorm.DB) *IdeaRepository {
	return &IdeaRepository{db: db}
}

func (r *IdeaRepository) Create(ctx context.Context, idea *model.Idea) error {
	return r.db.WithContext(ctx).Create(idea).Error
}

func (r *IdeaRepository) GetByID(ctx context.Context, id int64) (*model.Idea, error) {
	var idea model.Idea
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&idea).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdeaNotFound
		}
		return nil, err
	}
	return &idea, nil
}

// GetByIDForUpdate 行锁读取（点赞等 read-modify-write 场景在事务内使用）
func (r *IdeaRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*model.Idea, error) {
	var idea model.Idea
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&idea).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdeaNotFound
		}
		return nil, err
	}
	return &idea, nil
}

// List 可见创意列表，按时间倒序；keyword 非空时在标题/领域/问题/方案中模糊匹配
func (r *IdeaRepository) List(ctx context.Context, keyword string) ([]*model.Idea, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Idea{}).
		Where("is_visible = ?", true)

	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where(
			"title LIKE ? OR domain LIKE ? OR problem LIKE ? OR ai_solution LIKE ?",
			like, like, like, like,
		)
	}

	var ideas []*model.Idea
	err := query.Order("created_at DESC").Find(&ideas).Error
	return ideas, err
}

// GetByIDs 批量查询（团队列表装配用）
func (r *IdeaRepository) GetByIDs(ctx context.Context, ids []int64) ([]*model.Idea, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ideas []*model.Idea
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ideas).Error
	return ideas, err
}

// UpdateLikes 更新点赞用户列表
func (r *IdeaRepository) UpdateLikes(ctx context.Context, tx *gorm.DB, idea *model.Idea) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&model.Idea{}).
		Where("id = ?", idea.ID).
		Update("like_user_ids", idea.LikeUserIDs).Error
}
