package service

import (
	"context"
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

// TokenService 代币账本服务
// 余额字段与流水日志在同一数据库事务内更新，余额恒等于流水金额之和，
// 一致性由对账任务定期校验
type TokenService struct {
	db              *gorm.DB
	redisClient     *redis.Client
	cfg             *config.Config
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
}

func NewTokenService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *TokenService {
	return &TokenService{
		db:              db,
		redisClient:     redisClient,
		cfg:             cfg,
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
	}
}

// GetBalance 查询用户余额，账户不存在视为 0（不是错误）
func (s *TokenService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	account, err := s.accountRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return account.Balance, nil
}

// ListTransactions 查询用户流水，时间倒序
// limit <= 0 时使用配置默认值，超过配置上限时压到上限，防止一次拉全量流水
func (s *TokenService) ListTransactions(ctx context.Context, userID int64, limit int) ([]*model.TokenTransaction, error) {
	if limit <= 0 {
		limit = s.cfg.Business.TransactionPageSize
	}
	if max := s.cfg.Business.TransactionMaxLimit; max > 0 && limit > max {
		limit = max
	}
	return s.transactionRepo.ListByUserID(ctx, userID, limit)
}

// RecordTransaction 追加一条流水并同步调整余额
//
// 【重要】此处不校验金额符号与余额充足性，负数金额可能把余额打成负数，
// 需要充足性保障的调用方走 Debit
func (s *TokenService) RecordTransaction(ctx context.Context, userID int64, amount int64, transactionType, description string, referenceID *int64) (*model.TokenTransaction, error) {
	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取账户信息失败: %w", err)
	}

	trans := &model.TokenTransaction{
		TransactionNo: idgen.GenerateTransactionNo(),
		UserID:        userID,
		Amount:        amount,
		Type:          transactionType,
		Description:   description,
		ReferenceID:   referenceID,
		BalanceBefore: account.Balance,
		BalanceAfter:  account.Balance + amount,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.accountRepo.Increase(ctx, tx, userID, amount); err != nil {
			return fmt.Errorf("调整余额失败: %w", err)
		}
		if err := s.transactionRepo.Create(ctx, tx, trans); err != nil {
			return fmt.Errorf("记录流水失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return trans, nil
}

// Credit 入账（购买、退款等正向流水）
func (s *TokenService) Credit(ctx context.Context, userID int64, amount int64, transactionType, description string, referenceID *int64) (*model.TokenTransaction, error) {
	if amount <= 0 {
		return nil, errors.New("入账金额必须大于0")
	}
	return s.RecordTransaction(ctx, userID, amount, transactionType, description, referenceID)
}

// Debit 扣款：先校验余额充足，再以条件更新扣减并记一条负数 usage 流水
func (s *TokenService) Debit(ctx context.Context, userID int64, amount int64, description string, referenceID *int64) (*model.TokenTransaction, error) {
	if amount <= 0 {
		return nil, errors.New("扣款金额必须大于0")
	}

	account, err := s.accountRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("获取账户信息失败: %w", err)
	}

	if account.Balance < amount {
		return nil, repository.ErrBalanceNotEnough
	}

	trans := &model.TokenTransaction{
		TransactionNo: idgen.GenerateTransactionNo(),
		UserID:        userID,
		Amount:        -amount,
		Type:          model.TransactionTypeUsage,
		Description:   description,
		ReferenceID:   referenceID,
		BalanceBefore: account.Balance,
		BalanceAfter:  account.Balance - amount,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.accountRepo.Deduct(ctx, tx, userID, amount, account.Version); err != nil {
			return err
		}
		if err := s.transactionRepo.Create(ctx, tx, trans); err != nil {
			return fmt.Errorf("记录流水失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return trans, nil
}

// Purchase 购买代币（简化版，实际应该走支付渠道）
func (s *TokenService) Purchase(ctx context.Context, userID int64, amount int64) (*model.TokenTransaction, error) {
	return s.Credit(ctx, userID, amount, model.TransactionTypePurchase, "购买代币", nil)
}

// GrantSignupBonus 发放注册奖励（按用户幂等，重复调用不会二次发放）
func (s *TokenService) GrantSignupBonus(ctx context.Context, userID int64) (*model.TokenTransaction, bool, error) {
	existing, err := s.transactionRepo.GetByUserIDAndType(ctx, userID, model.TransactionTypeSignupBonus)
	if err != nil {
		return nil, false, fmt.Errorf("查询流水失败: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	// 锁住"检查->发放"窗口，防止并发重复发放
	holder := fmt.Sprintf("%d", idgen.NextID())
	grantLock := lock.NewGrantLock(s.redisClient, userID, holder)
	if err := grantLock.Lock(ctx, 100*time.Millisecond, 30); err != nil {
		return nil, false, fmt.Errorf("系统繁忙，请稍后重试: %w", err)
	}
	defer grantLock.Unlock(ctx)

	// 获取锁后再次检查幂等
	existing, err = s.transactionRepo.GetByUserIDAndType(ctx, userID, model.TransactionTypeSignupBonus)
	if err != nil {
		return nil, false, fmt.Errorf("查询流水失败: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	trans, err := s.Credit(ctx, userID, s.cfg.Business.SignupBonusAmount, model.TransactionTypeSignupBonus, "注册奖励", nil)
	if err != nil {
		return nil, false, err
	}

	log.Printf("注册奖励发放成功: userID=%d, amount=%d", userID, s.cfg.Business.SignupBonusAmount)
	return trans, true, nil
}
