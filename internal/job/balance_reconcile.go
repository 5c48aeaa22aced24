package job

import (
	"context"
	"log"
	"time"

	"ideahub/internal/config"
	"ideahub/internal/repository"

	"gorm.io/gorm"
)

// BalanceReconcileJob 余额对账任务
//
// 账本约定：user_tokens.balance 恒等于该用户 token_transactions.amount 之和
// （两者在同一事务内更新）。本任务周期性全量扫描账户，发现不一致只告警不修复，
// 修复需要人工介入确认原因
type BalanceReconcileJob struct {
	db              *gorm.DB
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	cfg             *config.Config
	stopCh          chan struct{}
	interval        time.Duration
	batchSize       int
}

func NewBalanceReconcileJob(db *gorm.DB, cfg *config.Config) *BalanceReconcileJob {
	return &BalanceReconcileJob{
		db:              db,
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		cfg:             cfg,
		stopCh:          make(chan struct{}),
		interval:        60 * time.Second,
		batchSize:       100,
	}
}

func (j *BalanceReconcileJob) Start(ctx context.Context) {
	log.Println("[BalanceReconcile] 余额对账任务启动")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[BalanceReconcile] 收到停止信号，任务退出")
			return
		case <-j.stopCh:
			log.Println("[BalanceReconcile] 任务停止")
			return
		case <-ticker.C:
			j.reconcile(ctx)
		}
	}
}

func (j *BalanceReconcileJob) Stop() {
	close(j.stopCh)
}

func (j *BalanceReconcileJob) reconcile(ctx context.Context) {
	var cursor int64
	checked := 0
	mismatched := 0

	for {
		accounts, err := j.accountRepo.ListAfterID(ctx, cursor, j.batchSize)
		if err != nil {
			log.Printf("[BalanceReconcile] 查询账户失败: %v", err)
			return
		}
		if len(accounts) == 0 {
			break
		}

		for _, account := range accounts {
			sum, err := j.transactionRepo.SumByUserID(ctx, account.UserID)
			if err != nil {
				log.Printf("[BalanceReconcile] 汇总流水失败: userID=%d, err=%v", account.UserID, err)
				continue
			}

			checked++
			if sum != account.Balance {
				mismatched++
				log.Printf("[BalanceReconcile] 余额不一致: userID=%d, balance=%d, 流水合计=%d, 差额=%d",
					account.UserID, account.Balance, sum, account.Balance-sum)
			}

			cursor = account.ID
		}
	}

	if mismatched > 0 {
		log.Printf("[BalanceReconcile] 本轮对账完成: 检查 %d 个账户，发现 %d 个不一致", checked, mismatched)
	}
}
