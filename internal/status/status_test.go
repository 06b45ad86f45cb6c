package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkerPresent(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		marker string
		want   bool
	}{
		{"marker in middle", "Welcome not found here", "not found", true},
		{"marker absent", "Welcome", "not found", false},
		{"empty text", "", "not found", false},
		{"exact match", "not found", "not found", true},
		{"case sensitive", "Welcome NOT FOUND here", "not found", false},
		{"accented marker", "Erro: Usuário não cadastrado.", "Usuário não cadastrado", true},
		{"marker longer than text", "not", "not found", false},
		{"empty marker", "anything", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MarkerPresent(tt.text, tt.marker))
		})
	}
}

func TestResult_OK(t *testing.T) {
	assert.True(t, Result{}.OK())
	assert.False(t, Result{Found: true}.OK())
	assert.False(t, Result{Err: errors.New("timeout")}.OK())
}
