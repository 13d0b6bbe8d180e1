package order

import (
	"testing"

	"ms-barpos/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{models.StatusPending, models.StatusPreparing, true},
		{models.StatusPending, models.StatusCompleted, true},
		{models.StatusPreparing, models.StatusReady, true},
		{models.StatusReady, models.StatusServed, true},
		{models.StatusServed, models.StatusCompleted, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusServed, models.StatusCancelled, true},

		{models.StatusPending, models.StatusPending, false},
		{models.StatusReady, models.StatusPreparing, false},
		{models.StatusServed, models.StatusPending, false},
		{models.StatusCompleted, models.StatusCancelled, false},
		{models.StatusCompleted, models.StatusPending, false},
		{models.StatusCancelled, models.StatusPending, false},
		{models.StatusCancelled, models.StatusCompleted, false},
		{models.StatusPending, "Delivered", false},
		{"pending", models.StatusReady, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusCompleted))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusServed))
}
