package service

import (
	"context"
	"testing"
	"time"

	"ideahub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLock 进程内空实现，替代 Redis 分布式锁
type stubLock struct{}

func (stubLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	return nil
}

func (stubLock) Unlock(ctx context.Context) error {
	return nil
}

func newInvestService(t *testing.T) (*InvestmentService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	svc := NewInvestmentService(db, nil, testConfig())
	svc.lockUser = func(int64) userLock { return stubLock{} }
	return svc, mock
}

func TestInvestRejectsNonPositiveAmount(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewInvestmentService(db, nil, testConfig())

	_, err := svc.Invest(context.Background(), 42, 1, 0)
	assert.Error(t, err)

	_, err = svc.Invest(context.Background(), 42, 1, -100)
	assert.Error(t, err)
}

func TestInvestRejectsBelowMinimum(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewInvestmentService(db, nil, testConfig())

	// 最低投资额 100，服务端不信任客户端校验
	_, err := svc.Invest(context.Background(), 42, 1, 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "最低投资金额")
}

func TestInvestIdeaNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInvestmentService(db, nil, testConfig())

	mock.ExpectQuery("SELECT (.+) FROM `ideas`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "is_visible"}))

	_, err := svc.Invest(context.Background(), 42, 999, 100)
	assert.ErrorIs(t, err, repository.ErrIdeaNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvestHiddenIdea(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInvestmentService(db, nil, testConfig())

	// 不可见的创意对投资方不可达
	mock.ExpectQuery("SELECT (.+) FROM `ideas`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "is_visible"}).
			AddRow(7, 1, "隐藏创意", false))

	_, err := svc.Invest(context.Background(), 42, 7, 100)
	assert.ErrorIs(t, err, repository.ErrIdeaNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvestFirstTimeCreatesRow(t *testing.T) {
	svc, mock := newInvestService(t)

	mock.ExpectQuery("SELECT (.+) FROM `ideas`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "is_visible"}).
			AddRow(7, 1, "AI客服助手", true))
	mock.ExpectQuery("SELECT (.+) FROM `user_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance", "version"}).
			AddRow(1, 42, 1000, 2))
	// (创意, 用户) 无既有投资行
	mock.ExpectQuery("SELECT (.+) FROM `idea_investments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "idea_id", "user_id", "amount"}))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `idea_investments`").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("UPDATE `user_tokens` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `token_transactions`").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("INSERT INTO `outbox_message`").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	result, err := svc.Invest(context.Background(), 42, 7, 200)
	require.NoError(t, err)
	assert.EqualValues(t, 200, result.Amount)
	assert.EqualValues(t, 200, result.TotalAmount)
	assert.EqualValues(t, 800, result.Balance)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvestAgainAccumulatesExistingRow(t *testing.T) {
	svc, mock := newInvestService(t)

	mock.ExpectQuery("SELECT (.+) FROM `ideas`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "is_visible"}).
			AddRow(7, 1, "AI客服助手", true))
	mock.ExpectQuery("SELECT (.+) FROM `user_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance", "version"}).
			AddRow(1, 42, 1000, 2))
	// 已有投资行 300，再投 200 只在原行累加
	mock.ExpectQuery("SELECT (.+) FROM `idea_investments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "idea_id", "user_id", "amount"}).
			AddRow(5, 7, 42, 300))

	// 期望按序执行：走 UPDATE 累加而不是再 INSERT 一行
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `idea_investments` SET `amount`=amount").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `user_tokens` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `token_transactions`").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO `outbox_message`").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	result, err := svc.Invest(context.Background(), 42, 7, 200)
	require.NoError(t, err)
	assert.EqualValues(t, 200, result.Amount)
	assert.EqualValues(t, 500, result.TotalAmount)
	assert.EqualValues(t, 800, result.Balance)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetIdeaInvestmentsOrderedByAmount(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInvestmentService(db, nil, testConfig())

	mock.ExpectQuery("SELECT (.+) FROM `ideas`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "is_visible"}).
			AddRow(7, 1, "创意", true))
	mock.ExpectQuery("SELECT (.+) FROM `idea_investments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "idea_id", "user_id", "amount"}).
			AddRow(3, 7, 11, 1000).
			AddRow(1, 7, 10, 300))

	invs, err := svc.GetIdeaInvestments(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, invs, 2)
	assert.EqualValues(t, 1000, invs[0].Amount)
	assert.EqualValues(t, 300, invs[1].Amount)

	stats := ComputeAggregates(invs)
	assert.EqualValues(t, 1300, stats.TotalInvestment)
	assert.Equal(t, 2, stats.InvestorCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserInvestmentsWithIdeaSummary(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInvestmentService(db, nil, testConfig())

	mock.ExpectQuery("SELECT (.+) FROM `idea_investments`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "idea_id", "user_id", "amount"}).
			AddRow(9, 7, 42, 500).
			AddRow(3, 2, 42, 100))
	mock.ExpectQuery("SELECT (.+) FROM `ideas`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "domain", "is_visible"}).
			AddRow(7, 1, "AI客服助手", "客服", true).
			AddRow(2, 1, "宠物健康社区", "生活", true))

	invs, err := svc.GetUserInvestments(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, invs, 2)
	assert.EqualValues(t, 500, invs[0].Amount)
	assert.Equal(t, "AI客服助手", invs[0].IdeaTitle)
	assert.Equal(t, "客服", invs[0].IdeaDomain)
	assert.Equal(t, "宠物健康社区", invs[1].IdeaTitle)
	assert.Equal(t, "生活", invs[1].IdeaDomain)

	assert.NoError(t, mock.ExpectationsWereMet())
}
