package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleLike(t *testing.T) {
	idea := &Idea{}

	liked := idea.ToggleLike(7)
	assert.True(t, liked)
	assert.True(t, idea.Liked(7))

	// 再次切换取消点赞
	liked = idea.ToggleLike(7)
	assert.False(t, liked)
	assert.False(t, idea.Liked(7))
	assert.Empty(t, idea.LikeUserIDs)
}

func TestToggleLikeKeepsOtherUsers(t *testing.T) {
	idea := &Idea{}
	idea.ToggleLike(1)
	idea.ToggleLike(2)
	idea.ToggleLike(3)

	idea.ToggleLike(2)

	assert.True(t, idea.Liked(1))
	assert.False(t, idea.Liked(2))
	assert.True(t, idea.Liked(3))
	assert.Len(t, idea.LikeUserIDs, 2)
}

func TestLikedUnknownUser(t *testing.T) {
	idea := &Idea{}
	assert.False(t, idea.Liked(99))
}
