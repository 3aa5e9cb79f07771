package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func slot(start, end string) *Slot {
	return &Slot{StartTime: start, EndTime: end}
}

func TestSlotValidInterval(t *testing.T) {
	assert.True(t, slot("09:00:00", "10:00:00").ValidInterval())
	assert.False(t, slot("10:00:00", "10:00:00").ValidInterval())
	assert.False(t, slot("11:00:00", "10:00:00").ValidInterval())
}

func TestSlotOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     *Slot
		overlaps bool
	}{
		{"identical", slot("09:00:00", "10:00:00"), slot("09:00:00", "10:00:00"), true},
		{"contained", slot("09:00:00", "12:00:00"), slot("10:00:00", "11:00:00"), true},
		{"partial", slot("09:00:00", "10:30:00"), slot("10:00:00", "11:00:00"), true},
		{"touching", slot("09:00:00", "10:00:00"), slot("10:00:00", "11:00:00"), false},
		{"disjoint", slot("09:00:00", "10:00:00"), slot("12:00:00", "13:00:00"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.overlaps, tt.b.Overlaps(tt.a), "overlap is symmetric")
		})
	}
}
