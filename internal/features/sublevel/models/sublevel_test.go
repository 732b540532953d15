package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSublevel_State(t *testing.T) {
	tests := []struct {
		name string
		s    Sublevel
		want State
	}{
		{"locked", Sublevel{}, StateLocked},
		{"available", Sublevel{Unlocked: true}, StateAvailable},
		{"completed", Sublevel{Unlocked: true, Completed: true, Stars: 2}, StateCompleted},
		{"completed without unlocked flag", Sublevel{Completed: true}, StateCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.State())
		})
	}
}
