package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHeight(t *testing.T) {
	assert.Equal(t, 22, NewLayout(80, 24).ContentHeight())
	assert.Equal(t, 0, NewLayout(80, 1).ContentHeight())
}

func TestBadge(t *testing.T) {
	assert.Empty(t, Badge(0))
	assert.Contains(t, Badge(3), "3")
	assert.Contains(t, Badge(120), "99+")
}

func TestRenderHeaderShowsTitleAndStatus(t *testing.T) {
	header := NewLayout(60, 10).RenderHeader("memorybox", 2, "live")
	assert.True(t, strings.Contains(header, "memorybox"))
	assert.True(t, strings.Contains(header, "live"))
	assert.True(t, strings.Contains(header, "2"))
}
