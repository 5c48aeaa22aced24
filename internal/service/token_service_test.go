package service

import (
	"context"
	"testing"

	"ideahub/internal/config"
	"ideahub/internal/model"
	"ideahub/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB 基于 sqlmock 构造 gorm 连接
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func testConfig() *config.Config {
	return &config.Config{
		Business: config.BusinessConfig{
			SignupBonusAmount:   1000,
			MinInvestment:       100,
			TransactionPageSize: 50,
			TransactionMaxLimit: 200,
			MaxRetryCount:       5,
		},
	}
}

func TestGetBalanceNoAccount(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db, nil, testConfig())

	// 账户行不存在时余额视为 0，不是错误
	mock.ExpectQuery("SELECT (.+) FROM `user_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance", "version"}))

	balance, err := svc.GetBalance(context.Background(), 42)
	require.NoError(t, err)
	assert.EqualValues(t, 0, balance)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBalance(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db, nil, testConfig())

	mock.ExpectQuery("SELECT (.+) FROM `user_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance", "version"}).
			AddRow(1, 42, 700, 3))

	balance, err := svc.GetBalance(context.Background(), 42)
	require.NoError(t, err)
	assert.EqualValues(t, 700, balance)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTransactionsDefaultLimit(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db, nil, testConfig())

	mock.ExpectQuery("SELECT (.+) FROM `token_transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "transaction_type"}).
			AddRow(2, 42, -300, model.TransactionTypeInvestment).
			AddRow(1, 42, 1000, model.TransactionTypeSignupBonus))

	// limit <= 0 时使用配置默认值
	transactions, err := svc.ListTransactions(context.Background(), 42, 0)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.EqualValues(t, -300, transactions[0].Amount)
	assert.EqualValues(t, 1000, transactions[1].Amount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTransactionsCapsLimit(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db, nil, testConfig())

	// 超大 limit 压到配置上限，不允许一次拉全量流水
	mock.ExpectQuery("SELECT (.+) FROM `token_transactions` WHERE user_id = \\? ORDER BY created_at DESC LIMIT 200").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "transaction_type"}).
			AddRow(1, 42, 1000, model.TransactionTypeSignupBonus))

	transactions, err := svc.ListTransactions(context.Background(), 42, 1000000)
	require.NoError(t, err)
	require.Len(t, transactions, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitInsufficientBalance(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db, nil, testConfig())

	// 余额 50，扣 100，充足性检查直接拒绝，不产生任何写入
	mock.ExpectQuery("SELECT (.+) FROM `user_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance", "version"}).
			AddRow(1, 42, 50, 0))

	trans, err := svc.Debit(context.Background(), 42, 100, "测试扣款", nil)
	assert.ErrorIs(t, err, repository.ErrBalanceNotEnough)
	assert.Nil(t, trans)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebit(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db, nil, testConfig())

	mock.ExpectQuery("SELECT (.+) FROM `user_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance", "version"}).
			AddRow(1, 42, 1000, 2))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `user_tokens` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `token_transactions`").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectCommit()

	trans, err := svc.Debit(context.Background(), 42, 300, "测试扣款", nil)
	require.NoError(t, err)
	assert.EqualValues(t, -300, trans.Amount)
	assert.Equal(t, model.TransactionTypeUsage, trans.Type)
	assert.EqualValues(t, 1000, trans.BalanceBefore)
	assert.EqualValues(t, 700, trans.BalanceAfter)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewTokenService(db, nil, testConfig())

	_, err := svc.Debit(context.Background(), 42, 0, "测试", nil)
	assert.Error(t, err)

	_, err = svc.Debit(context.Background(), 42, -10, "测试", nil)
	assert.Error(t, err)
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewTokenService(db, nil, testConfig())

	_, err := svc.Credit(context.Background(), 42, 0, model.TransactionTypePurchase, "测试", nil)
	assert.Error(t, err)
}

func TestGrantSignupBonusIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db, nil, testConfig())

	// 已有 signup_bonus 流水时直接返回，不再发放
	mock.ExpectQuery("SELECT (.+) FROM `token_transactions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "transaction_type"}).
			AddRow(1, 42, 1000, model.TransactionTypeSignupBonus))

	trans, granted, err := svc.GrantSignupBonus(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, granted)
	require.NotNil(t, trans)
	assert.EqualValues(t, 1000, trans.Amount)

	assert.NoError(t, mock.ExpectationsWereMet())
}
