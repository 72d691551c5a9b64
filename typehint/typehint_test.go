package typehint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy(t *testing.T) {
	tests := []struct {
		name string
		want Hint
	}{
		{"is_member", HintBoolean},
		{"has_discount", HintBoolean},
		{"can_edit", HintBoolean},
		{"should_retry", HintBoolean},
		{"age", HintNumber},
		{"item_count", HintNumber},
		{"total", HintNumber},
		{"price", HintNumber},
		{"qty", HintNumber},
		{"first_name", HintString},
		{"email", HintString},
		{"user_id", HintString},
		{"description", HintString},
		{"x", HintUnknown},
		{"flag", HintUnknown},
	}
	policy := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Hint(tt.name))
		})
	}
}

func TestHintIsCaseInsensitive(t *testing.T) {
	policy := Default()
	assert.Equal(t, HintBoolean, policy.Hint("Is_Member"))
	assert.Equal(t, HintNumber, policy.Hint("TotalPrice"))
}

func TestRuleOrder(t *testing.T) {
	// "is_total" matches both a boolean prefix and a number affix; the
	// boolean rule runs first
	assert.Equal(t, HintBoolean, Default().Hint("is_total"))
}

func TestFixedPolicy(t *testing.T) {
	assert.Equal(t, HintString, Fixed(HintString).Hint("anything"))
	assert.Equal(t, HintUnknown, Fixed(HintUnknown).Hint("is_member"))
}
