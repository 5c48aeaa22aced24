package handler

import (
	"errors"
	"strconv"

	"ideahub/internal/config"
	"ideahub/internal/repository"
	"ideahub/internal/service"
	"ideahub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	tokenService      *service.TokenService
	investmentService *service.InvestmentService
	ideaService       *service.IdeaService
	teamService       *service.TeamService
}

// NewHandler 创建处理器实例
func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		tokenService:      service.NewTokenService(db, rdb, cfg),
		investmentService: service.NewInvestmentService(db, rdb, cfg),
		ideaService:       service.NewIdeaService(db),
		teamService:       service.NewTeamService(db),
	}
}

// businessError 把服务层错误映射为业务码返回
func businessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrBalanceNotEnough):
		response.BusinessError(c, response.CodeInsufficientTokens, err.Error())
	case errors.Is(err, repository.ErrIdeaNotFound):
		response.BusinessError(c, response.CodeIdeaNotFound, err.Error())
	case errors.Is(err, repository.ErrTeamNotFound):
		response.BusinessError(c, response.CodeTeamNotFound, err.Error())
	case errors.Is(err, repository.ErrAlreadyMember):
		response.BusinessError(c, response.CodeDuplicateRequest, err.Error())
	case errors.Is(err, repository.ErrAccountNotFound):
		response.BusinessError(c, response.CodeAccountNotFound, err.Error())
	default:
		response.ServerError(c, err.Error())
	}
}

// ============================================================
// 代币相关接口
// ============================================================

// GetBalance 查询当前用户余额
// GET /api/v1/token/balance
func (h *Handler) GetBalance(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "需要登录")
		return
	}

	balance, err := h.tokenService.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"user_id": userID,
		"balance": balance,
	})
}

// ListTransactions 查询当前用户代币流水
// GET /api/v1/token/transactions?limit=20
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "需要登录")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	transactions, err := h.tokenService.ListTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list": transactions,
	})
}

// PurchaseRequest 购买代币请求
type PurchaseRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// Purchase 购买代币（简化版，实际应该走支付渠道）
// POST /api/v1/token/purchase
func (h *Handler) Purchase(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "需要登录")
		return
	}

	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	trans, err := h.tokenService.Purchase(c.Request.Context(), userID, req.Amount)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"transaction_no": trans.TransactionNo,
		"balance":        trans.BalanceAfter,
	})
}

// SignupBonus 领取注册奖励（幂等，重复调用不会二次发放）
// POST /api/v1/token/signup-bonus
func (h *Handler) SignupBonus(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "需要登录")
		return
	}

	trans, granted, err := h.tokenService.GrantSignupBonus(c.Request.Context(), userID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"granted":        granted,
		"amount":         trans.Amount,
		"transaction_no": trans.TransactionNo,
	})
}

// ============================================================
// 投资相关接口
// ============================================================

// InvestRequest 投资请求
type InvestRequest struct {
	IdeaID int64 `json:"idea_id" binding:"required"`
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// Invest 向创意投资
// POST /api/v1/invest/execute
//
// 【关键点】投资需要保证：
// 1. 服务端重新校验最低投资额，不信任客户端
// 2. 原子性：投资行累加、余额扣减、流水记录同时成功或同时失败
// 3. 并发安全：通过分布式锁防止同一用户并发超扣
func (h *Handler) Invest(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "需要登录")
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.investmentService.Invest(c.Request.Context(), userID, req.IdeaID, req.Amount)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, result)
}

// GetIdeaInvestments 查询某创意的投资列表（金额倒序）和聚合值
// GET /api/v1/invest/idea?idea_id=xxx
func (h *Handler) GetIdeaInvestments(c *gin.Context) {
	ideaID, err := strconv.ParseInt(c.Query("idea_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "idea_id 参数错误")
		return
	}

	investments, err := h.investmentService.GetIdeaInvestments(c.Request.Context(), ideaID)
	if err != nil {
		businessError(c, err)
		return
	}

	stats := service.ComputeAggregates(investments)

	response.Success(c, gin.H{
		"list":             investments,
		"total_investment": stats.TotalInvestment,
		"investor_count":   stats.InvestorCount,
	})
}

// GetMyInvestments 查询当前用户的投资列表（时间倒序）
// GET /api/v1/invest/mine
func (h *Handler) GetMyInvestments(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "需要登录")
		return
	}

	investments, err := h.investmentService.GetUserInvestments(c.Request.Context(), userID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list": investments,
	})
}

// ============================================================
// 创意相关接口
// ============================================================

// CreateIdeaRequest 创建创意请求
type CreateIdeaRequest struct {
	Title      string   `json:"title" binding:"required"`
	Domain     string   `json:"domain" binding:"required"`
	Problem    string   `json:"problem" binding:"required"`
	AISolution string   `json:"ai_solution" binding:"required"`
	Tags       []string `json:"tags"`
}

// CreateIdea 发布创意
// POST /api/v1/idea/create
func (h *Handler) CreateIdea(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "需要登录")
		return
	}

	var req CreateIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	idea, err := h.ideaService.CreateIdea(c.Request.Context(), userID, &service.CreateIdeaRequest{
		Title:      req.Title,
		Domain:     req.Domain,
		Problem:    req.Problem,
		AISolution: req.AISolution,
		Tags:       req.Tags,
	})
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, idea)
}

// ListIdeas 创意列表（可按关键词搜索）
// GET /api/v1/idea/list?q=xxx
func (h *Handler) ListIdeas(c *gin.Context) {
	ideas, err := h.ideaService.ListIdeas(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list": ideas,
	})
}

// GetIdea 创意详情
// GET /api/v1/idea/detail?idea_id=xxx
func (h *Handler) GetIdea(c *gin.Context) {
	ideaID, err := strconv.ParseInt(c.Query("idea_id"), 10, 64)
	if err != nil {
		response.ParamError(c, "idea_id 参数错误")
		return
	}

	idea, err := h.ideaService.GetIdea(c.Request.Context(), ideaID)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, idea)
}

// LikeIdea 点赞/取消点赞
// POST /api/v1/idea/like
func (h *Handler) LikeIdea(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "需要登录")
		return
	}

	var req struct {
		IdeaID int64 `json:"idea_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	liked, err := h.ideaService.LikeIdea(c.Request.Context(), userID, req.IdeaID)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, gin.H{
		"liked": liked,
	})
}

// ============================================================
// 团队相关接口
// ============================================================

// CreateTeamRequest 创建团队请求
type CreateTeamRequest struct {
	IdeaID         int64    `json:"idea_id" binding:"required"`
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	MaxMembers     int      `json:"max_members" binding:"required,gt=1"`
	RequiredSkills []string `json:"required_skills"`
}

// CreateTeam 创建团队
// POST /api/v1/team/create
func (h *Handler) CreateTeam(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "需要登录")
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), userID, &service.CreateTeamRequest{
		IdeaID:         req.IdeaID,
		Name:           req.Name,
		Description:    req.Description,
		MaxMembers:     req.MaxMembers,
		RequiredSkills: req.RequiredSkills,
	})
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, team)
}

// ListTeams 团队列表
// GET /api/v1/team/list
func (h *Handler) ListTeams(c *gin.Context) {
	teams, err := h.teamService.ListTeams(c.Request.Context())
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"list": teams,
	})
}

// JoinTeamRequest 申请加入团队请求
type JoinTeamRequest struct {
	TeamID int64    `json:"team_id" binding:"required"`
	Skills []string `json:"skills"`
}

// JoinTeam 申请加入团队
// POST /api/v1/team/join
func (h *Handler) JoinTeam(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "需要登录")
		return
	}

	var req JoinTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	member, err := h.teamService.JoinTeam(c.Request.Context(), userID, req.TeamID, req.Skills)
	if err != nil {
		businessError(c, err)
		return
	}

	response.Success(c, member)
}
