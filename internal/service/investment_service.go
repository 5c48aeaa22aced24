package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"ideahub/internal/config"
	"ideahub/internal/infrastructure/lock"
	"ideahub/internal/model"
	"ideahub/internal/repository"
	"ideahub/pkg/idgen"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// userLock 用户维度互斥锁，生产实现为 Redis 分布式锁
type userLock interface {
	Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error
	Unlock(ctx context.Context) error
}

// InvestmentService 创意投资服务
type InvestmentService struct {
	db              *gorm.DB
	redisClient     *redis.Client
	cfg             *config.Config
	ideaRepo        *repository.IdeaRepository
	investmentRepo  *repository.InvestmentRepository
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
	lockUser        func(userID int64) userLock
}

func NewInvestmentService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *InvestmentService {
	return &InvestmentService{
		db:              db,
		redisClient:     redisClient,
		cfg:             cfg,
		ideaRepo:        repository.NewIdeaRepository(db),
		investmentRepo:  repository.NewInvestmentRepository(db),
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
		lockUser: func(userID int64) userLock {
			holder := fmt.Sprintf("%d", idgen.NextID())
			return lock.NewInvestLock(redisClient, userID, holder)
		},
	}
}

type InvestResult struct {
	IdeaID      int64 `json:"idea_id"`
	Amount      int64 `json:"amount"`       // 本次投资额
	TotalAmount int64 `json:"total_amount"` // 该创意上的累计投资额
	Balance     int64 `json:"balance"`      // 投资后余额
}

// InvestmentStats 创意维度的投资聚合（读取时计算，不落库）
type InvestmentStats struct {
	TotalInvestment int64 `json:"total_investment"`
	InvestorCount   int   `json:"investor_count"`
}

// ComputeAggregates 对一个创意的投资行集合求聚合值
// 每个投资人至多一行，行数即投资人数
func ComputeAggregates(invs []*model.IdeaInvestment) InvestmentStats {
	stats := InvestmentStats{InvestorCount: len(invs)}
	for _, inv := range invs {
		stats.TotalInvestment += inv.Amount
	}
	return stats
}

// StatsByIdea 按创意分组求聚合（列表页批量装配用）
func StatsByIdea(invs []*model.IdeaInvestment) map[int64]InvestmentStats {
	result := make(map[int64]InvestmentStats)
	for _, inv := range invs {
		stats := result[inv.IdeaID]
		stats.TotalInvestment += inv.Amount
		stats.InvestorCount++
		result[inv.IdeaID] = stats
	}
	return result
}

// Invest 向创意投资
//
// 【关键点】投资是代币经济最核心的写路径，需要保证：
// 1. 服务端校验：不信任客户端的最低投资额校验，这里重新检查
// 2. 原子性：投资行累加、余额扣减、流水记录、事件消息在同一事务内
// 3. 并发安全：按用户维度的分布式锁 + 余额条件更新，双重防超扣
func (s *InvestmentService) Invest(ctx context.Context, userID, ideaID int64, amount int64) (*InvestResult, error) {
	if amount <= 0 {
		return nil, errors.New("投资金额必须大于0")
	}
	if amount < s.cfg.Business.MinInvestment {
		return nil, fmt.Errorf("最低投资金额为%d代币", s.cfg.Business.MinInvestment)
	}

	idea, err := s.ideaRepo.GetByID(ctx, ideaID)
	if err != nil {
		return nil, err
	}
	if !idea.IsVisible {
		return nil, repository.ErrIdeaNotFound
	}

	// 获取分布式锁，串行化同一用户的投资
	investLock := s.lockUser(userID)
	if err := investLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
		return nil, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer investLock.Unlock(ctx)

	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取账户信息失败: %w", err)
	}

	if account.Balance < amount {
		return nil, repository.ErrBalanceNotEnough
	}

	existing, err := s.investmentRepo.GetByIdeaAndUser(ctx, ideaID, userID)
	if err != nil {
		return nil, fmt.Errorf("查询投资记录失败: %w", err)
	}

	totalAmount := amount
	if existing != nil {
		totalAmount = existing.Amount + amount
	}

	// 执行投资事务
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if existing != nil {
			// 重复投资在原行上累加，不新建行，不改变 created_at
			if err := s.investmentRepo.AddAmount(ctx, tx, existing.ID, amount); err != nil {
				return fmt.Errorf("累加投资失败: %w", err)
			}
		} else {
			inv := &model.IdeaInvestment{
				IdeaID: ideaID,
				UserID: userID,
				Amount: amount,
			}
			if err := s.investmentRepo.Create(ctx, tx, inv); err != nil {
				return fmt.Errorf("创建投资记录失败: %w", err)
			}
		}

		if err := s.accountRepo.Deduct(ctx, tx, userID, amount, account.Version); err != nil {
			if errors.Is(err, repository.ErrBalanceNotEnough) || errors.Is(err, repository.ErrOptimisticLock) {
				return err
			}
			return fmt.Errorf("扣款失败: %w", err)
		}

		refID := ideaID
		trans := &model.TokenTransaction{
			TransactionNo: idgen.GenerateTransactionNo(),
			UserID:        userID,
			Amount:        -amount,
			Type:          model.TransactionTypeInvestment,
			Description:   fmt.Sprintf("投资创意-%s", idea.Title),
			ReferenceID:   &refID,
			BalanceBefore: account.Balance,
			BalanceAfter:  account.Balance - amount,
		}
		if err := s.transactionRepo.Create(ctx, tx, trans); err != nil {
			return fmt.Errorf("记录流水失败: %w", err)
		}

		msgPayload := map[string]interface{}{
			"event":         "idea_invested",
			"idea_id":       ideaID,
			"user_id":       userID,
			"amount":        amount,
			"total_amount":  totalAmount,
			"balance_after": account.Balance - amount,
			"invested_at":   time.Now().Format(time.RFC3339),
		}
		payloadBytes, _ := json.Marshal(msgPayload)

		outboxMsg := &model.OutboxMessage{
			MessageKey: trans.TransactionNo,
			Topic:      s.cfg.Kafka.Topic.TokenEvents,
			Payload:    string(payloadBytes),
			Status:     model.OutboxStatusPending,
		}
		if err := s.outboxRepo.Create(ctx, tx, outboxMsg); err != nil {
			return fmt.Errorf("写入消息失败: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	log.Printf("投资成功: userID=%d, ideaID=%d, amount=%d, total=%d", userID, ideaID, amount, totalAmount)

	return &InvestResult{
		IdeaID:      ideaID,
		Amount:      amount,
		TotalAmount: totalAmount,
		Balance:     account.Balance - amount,
	}, nil
}

// GetIdeaInvestments 某创意的投资列表，按金额倒序
func (s *InvestmentService) GetIdeaInvestments(ctx context.Context, ideaID int64) ([]*model.IdeaInvestment, error) {
	if _, err := s.ideaRepo.GetByID(ctx, ideaID); err != nil {
		return nil, err
	}
	return s.investmentRepo.ListByIdea(ctx, ideaID)
}

// InvestmentWithIdea 投资行附所属创意摘要，我的投资页展示用
type InvestmentWithIdea struct {
	*model.IdeaInvestment
	IdeaTitle  string `json:"idea_title"`
	IdeaDomain string `json:"idea_domain"`
}

// GetUserInvestments 用户的投资列表，按时间倒序，带创意标题与领域
func (s *InvestmentService) GetUserInvestments(ctx context.Context, userID int64) ([]*InvestmentWithIdea, error) {
	invs, err := s.investmentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ideaIDs := make([]int64, 0, len(invs))
	for _, inv := range invs {
		ideaIDs = append(ideaIDs, inv.IdeaID)
	}

	ideas, err := s.ideaRepo.GetByIDs(ctx, ideaIDs)
	if err != nil {
		return nil, err
	}
	ideaByID := make(map[int64]*model.Idea, len(ideas))
	for _, idea := range ideas {
		ideaByID[idea.ID] = idea
	}

	result := make([]*InvestmentWithIdea, 0, len(invs))
	for _, inv := range invs {
		item := &InvestmentWithIdea{IdeaInvestment: inv}
		if idea, ok := ideaByID[inv.IdeaID]; ok {
			item.IdeaTitle = idea.Title
			item.IdeaDomain = idea.Domain
		}
		result = append(result, item)
	}
	return result, nil
}
