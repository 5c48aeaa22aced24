package service

import (
	"context"
	"errors"

	"ideahub/internal/model"
	"ideahub/internal/repository"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IdeaService 创意服务
type IdeaService struct {
	db             *gorm.DB
	ideaRepo       *repository.IdeaRepository
	investmentRepo *repository.InvestmentRepository
}

func NewIdeaService(db *gorm.DB) *IdeaService {
	return &IdeaService{
		db:             db,
		ideaRepo:       repository.NewIdeaRepository(db),
		investmentRepo: repository.NewInvestmentRepository(db),
	}
}

type CreateIdeaRequest struct {
	Title      string
	Domain     string
	Problem    string
	AISolution string
	Tags       []string
}

// IdeaWithStats 创意 + 读取时计算的投资聚合
type IdeaWithStats struct {
	*model.Idea
	TotalInvestment int64 `json:"total_investment"`
	InvestorCount   int   `json:"investor_count"`
}

func (s *IdeaService) CreateIdea(ctx context.Context, userID int64, req *CreateIdeaRequest) (*model.Idea, error) {
	if req.Title == "" || req.Domain == "" {
		return nil, errors.New("标题和领域不能为空")
	}
	if req.Problem == "" || req.AISolution == "" {
		return nil, errors.New("问题描述和解决方案不能为空")
	}

	idea := &model.Idea{
		UserID:      userID,
		Title:       req.Title,
		Domain:      req.Domain,
		Problem:     req.Problem,
		AISolution:  req.AISolution,
		Tags:        datatypes.NewJSONSlice(req.Tags),
		Stage:       model.IdeaStageIdea,
		IsVisible:   true,
		LikeUserIDs: datatypes.NewJSONSlice([]int64{}),
	}

	if err := s.ideaRepo.Create(ctx, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

// ListIdeas 可见创意列表（时间倒序），每条带投资聚合
func (s *IdeaService) ListIdeas(ctx context.Context, keyword string) ([]*IdeaWithStats, error) {
	ideas, err := s.ideaRepo.List(ctx, keyword)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(ideas))
	for _, idea := range ideas {
		ids = append(ids, idea.ID)
	}

	invs, err := s.investmentRepo.ListByIdeaIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	stats := StatsByIdea(invs)

	result := make([]*IdeaWithStats, 0, len(ideas))
	for _, idea := range ideas {
		st := stats[idea.ID]
		result = append(result, &IdeaWithStats{
			Idea:            idea,
			TotalInvestment: st.TotalInvestment,
			InvestorCount:   st.InvestorCount,
		})
	}
	return result, nil
}

// GetIdea 创意详情（带投资聚合）
func (s *IdeaService) GetIdea(ctx context.Context, ideaID int64) (*IdeaWithStats, error) {
	idea, err := s.ideaRepo.GetByID(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	invs, err := s.investmentRepo.ListByIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	st := ComputeAggregates(invs)

	return &IdeaWithStats{
		Idea:            idea,
		TotalInvestment: st.TotalInvestment,
		InvestorCount:   st.InvestorCount,
	}, nil
}

// LikeIdea 切换点赞，返回切换后是否为点赞
// like_user_ids 是 read-modify-write，整段放在事务内并对创意行加锁
func (s *IdeaService) LikeIdea(ctx context.Context, userID, ideaID int64) (bool, error) {
	var liked bool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		idea, err := s.ideaRepo.GetByIDForUpdate(ctx, tx, ideaID)
		if err != nil {
			return err
		}
		liked = idea.ToggleLike(userID)
		return s.ideaRepo.UpdateLikes(ctx, tx, idea)
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}
