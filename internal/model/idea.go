package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	IdeaStageIdea     = "IDEA"      // 创意阶段
	IdeaStageBuilding = "BUILDING"  // 开发中
	IdeaStageLaunched = "LAUNCHED"  // 已上线
)

// Idea 创意表
type Idea struct {
	ID          int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64                       `gorm:"index;not null" json:"user_id"` // 发布者ID
	Title       string                      `gorm:"type:varchar(128);not null" json:"title"`
	Domain      string                      `gorm:"type:varchar(64);not null" json:"domain"` // 领域（教育、医疗...）
	Problem     string                      `gorm:"type:text;not null" json:"problem"`       // 要解决的问题
	AISolution  string                      `gorm:"type:text;not null" json:"ai_solution"`   // AI 解决方案
	Tags        datatypes.JSONSlice[string] `gorm:"type:json" json:"tags"`
	Stage       string                      `gorm:"type:varchar(20);not null;default:IDEA" json:"stage"`
	IsVisible   bool                        `gorm:"not null;default:true" json:"is_visible"`
	LikeUserIDs datatypes.JSONSlice[int64]  `gorm:"type:json" json:"like_user_ids"` // 点赞用户列表
	CreatedAt   time.Time                   `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Idea) TableName() string {
	return "ideas"
}

// Liked 判断用户是否已点赞
func (i *Idea) Liked(userID int64) bool {
	for _, id := range i.LikeUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike 切换点赞状态，返回切换后是否为点赞
func (i *Idea) ToggleLike(userID int64) bool {
	for idx, id := range i.LikeUserIDs {
		if id == userID {
			i.LikeUserIDs = append(i.LikeUserIDs[:idx], i.LikeUserIDs[idx+1:]...)
			return false
		}
	}
	i.LikeUserIDs = append(i.LikeUserIDs, userID)
	return true
}
