package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TeamStatusRecruiting = "RECRUITING" // 招募中
	TeamStatusFull       = "FULL"       // 招募完成
	TeamStatusActive     = "ACTIVE"     // 活动中
	TeamStatusDone       = "DONE"       // 已完成
)

const (
	MemberRoleLeader = "LEADER"
	MemberRoleMember = "MEMBER"
)

const (
	MemberStatusPending  = "PENDING"  // 待审批
	MemberStatusApproved = "APPROVED" // 已通过
	MemberStatusRejected = "REJECTED" // 已拒绝
)

// Team 团队表
// 围绕某个创意组建的团队，leader 在创建团队时自动成为第一名成员
type Team struct {
	ID             int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	IdeaID         int64                       `gorm:"index;not null" json:"idea_id"`
	Name           string                      `gorm:"type:varchar(128);not null" json:"name"`
	Description    string                      `gorm:"type:text;not null" json:"description"`
	MaxMembers     int                         `gorm:"not null" json:"max_members"`
	CurrentMembers int                         `gorm:"not null;default:1" json:"current_members"`
	RequiredSkills datatypes.JSONSlice[string] `gorm:"type:json" json:"required_skills"`
	LeaderID       int64                       `gorm:"index;not null" json:"leader_id"`
	Status         string                      `gorm:"type:varchar(20);index;not null;default:RECRUITING" json:"status"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Team) TableName() string {
	return "teams"
}

// TeamMember 团队成员表
type TeamMember struct {
	ID        int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	TeamID    int64                       `gorm:"not null;uniqueIndex:uk_team_user,priority:1" json:"team_id"`
	UserID    int64                       `gorm:"not null;uniqueIndex:uk_team_user,priority:2" json:"user_id"`
	Role      string                      `gorm:"type:varchar(20);not null" json:"role"`
	Skills    datatypes.JSONSlice[string] `gorm:"type:json" json:"skills"`
	Status    string                      `gorm:"type:varchar(20);index;not null" json:"status"`
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"created_at"`
}

func (TeamMember) TableName() string {
	return "team_members"
}
