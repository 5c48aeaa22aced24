package repository

import (
	"context"
	"errors"

	"ideahub/internal/model"

	"gorm.io/gorm"
)

var (
	ErrTeamNotFound  = errors.New("团队不存在")
	ErrAlreadyMember = errors.New("已申请或已加入该团队")
)

// TeamRepository 团队仓储
type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, tx *gorm.DB, team *model.Team) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(team).Error
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

// List 团队列表，按时间倒序
func (r *TeamRepository) List(ctx context.Context) ([]*model.Team, error) {
	var teams []*model.Team
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&teams).Error
	return teams, err
}

func (r *TeamRepository) CreateMember(ctx context.Context, tx *gorm.DB, member *model.TeamMember) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(member).Error
}

// GetMember 查询用户在团队中的成员行，不存在返回 nil
func (r *TeamRepository) GetMember(ctx context.Context, teamID, userID int64) (*model.TeamMember, error) {
	var member model.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

// ListMembers 团队成员列表
func (r *TeamRepository) ListMembers(ctx context.Context, teamID int64) ([]*model.TeamMember, error) {
	var members []*model.TeamMember
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}
