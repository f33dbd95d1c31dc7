package schemas_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/fospace/api/schemas"
)

// TestConstants pins the string values that appear in documents.
func TestConstants(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		constant interface{}
		expected string
	}{
		{"ElementBox", schemas.ElementBox, "box"},
		{"ElementGlue", schemas.ElementGlue, "glue"},
		{"ElementPenalty", schemas.ElementPenalty, "penalty"},
		{"ElementSpace", schemas.ElementSpace, "space"},
		{"ElementBorder", schemas.ElementBorder, "border"},
		{"ElementPadding", schemas.ElementPadding, "padding"},
		{"ElementBreak", schemas.ElementBreak, "break"},
		{"SideBefore", schemas.SideBefore, "before"},
		{"SideAfter", schemas.SideAfter, "after"},
	}

	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, fmt.Sprintf("%v", tt.constant))
		})
	}
}
