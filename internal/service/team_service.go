package service

import (
	"context"
	"errors"
	"fmt"

	"ideahub/internal/model"
	"ideahub/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TeamService 团队服务
type TeamService struct {
	db       *gorm.DB
	teamRepo *repository.TeamRepository
	ideaRepo *repository.IdeaRepository
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{
		db:       db,
		teamRepo: repository.NewTeamRepository(db),
		ideaRepo: repository.NewIdeaRepository(db),
	}
}

type CreateTeamRequest struct {
	IdeaID         int64
	Name           string
	Description    string
	MaxMembers     int
	RequiredSkills []string
}

// TeamWithIdea 团队 + 所属创意摘要
type TeamWithIdea struct {
	*model.Team
	IdeaTitle  string `json:"idea_title"`
	IdeaDomain string `json:"idea_domain"`
}

// CreateTeam 创建团队，创建者自动成为队长（同一事务内写入团队与队长成员行）
func (s *TeamService) CreateTeam(ctx context.Context, userID int64, req *CreateTeamRequest) (*model.Team, error) {
	if req.Name == "" {
		return nil, errors.New("团队名称不能为空")
	}
	if req.MaxMembers < 2 {
		return nil, errors.New("团队人数上限至少为2")
	}

	if _, err := s.ideaRepo.GetByID(ctx, req.IdeaID); err != nil {
		return nil, err
	}

	team := &model.Team{
		IdeaID:         req.IdeaID,
		Name:           req.Name,
		Description:    req.Description,
		MaxMembers:     req.MaxMembers,
		CurrentMembers: 1,
		RequiredSkills: datatypes.NewJSONSlice(req.RequiredSkills),
		LeaderID:       userID,
		Status:         model.TeamStatusRecruiting,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.teamRepo.Create(ctx, tx, team); err != nil {
			return fmt.Errorf("创建团队失败: %w", err)
		}

		leader := &model.TeamMember{
			TeamID: team.ID,
			UserID: userID,
			Role:   model.MemberRoleLeader,
			Status: model.MemberStatusApproved,
		}
		if err := s.teamRepo.CreateMember(ctx, tx, leader); err != nil {
			return fmt.Errorf("添加队长失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return team, nil
}

// ListTeams 团队列表（时间倒序），带所属创意摘要
func (s *TeamService) ListTeams(ctx context.Context) ([]*TeamWithIdea, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	ideaIDs := make([]int64, 0, len(teams))
	for _, team := range teams {
		ideaIDs = append(ideaIDs, team.IdeaID)
	}

	ideas, err := s.ideaRepo.GetByIDs(ctx, ideaIDs)
	if err != nil {
		return nil, err
	}
	ideaByID := make(map[int64]*model.Idea, len(ideas))
	for _, idea := range ideas {
		ideaByID[idea.ID] = idea
	}

	result := make([]*TeamWithIdea, 0, len(teams))
	for _, team := range teams {
		item := &TeamWithIdea{Team: team}
		if idea, ok := ideaByID[team.IdeaID]; ok {
			item.IdeaTitle = idea.Title
			item.IdeaDomain = idea.Domain
		}
		result = append(result, item)
	}
	return result, nil
}

// JoinTeam 申请加入团队，成员行初始为待审批状态
func (s *TeamService) JoinTeam(ctx context.Context, userID, teamID int64, skills []string) (*model.TeamMember, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if team.Status != model.TeamStatusRecruiting {
		return nil, errors.New("该团队当前不招募新成员")
	}
	if team.CurrentMembers >= team.MaxMembers {
		return nil, errors.New("团队人数已满")
	}

	existing, err := s.teamRepo.GetMember(ctx, teamID, userID)
	if err != nil {
		return nil, fmt.Errorf("查询成员失败: %w", err)
	}
	if existing != nil {
		return nil, repository.ErrAlreadyMember
	}

	member := &model.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   model.MemberRoleMember,
		Skills: datatypes.NewJSONSlice(skills),
		Status: model.MemberStatusPending,
	}
	if err := s.teamRepo.CreateMember(ctx, nil, member); err != nil {
		return nil, err
	}
	return member, nil
}
