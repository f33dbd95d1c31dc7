package schemas_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/fospace/api/schemas"
)

// TestStructJSONTags uses reflection to verify the `json` tags on the wire
// structs. Documents written by other tools depend on these names.
func TestStructJSONTags(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		structRef    interface{}
		expectedTags map[string]string
	}{
		{
			name:      "Section",
			structRef: schemas.Section{},
			expectedTags: map[string]string{
				"ID":       "id",
				"Elements": "elements",
				"Breaks":   "breaks,omitempty",
			},
		},
		{
			name:      "NotificationRecord",
			structRef: schemas.NotificationRecord{},
			expectedTags: map[string]string{
				"Element":   "element",
				"Kind":      "kind",
				"Side":      "side",
				"Outcome":   "outcome",
				"Effective": "effective",
			},
		},
		{
			name:      "SectionResult",
			structRef: schemas.SectionResult{},
			expectedTags: map[string]string{
				"RunID":           "run_id",
				"SectionID":       "section_id",
				"Resolved":        "resolved",
				"Notifications":   "notifications",
				"Groups":          "groups",
				"Breaks":          "breaks,omitempty",
				"BreakCandidates": "break_candidates,omitempty",
				"Duration":        "duration_ns",
				"ResolvedAt":      "resolved_at",
			},
		},
		{
			name:      "Length",
			structRef: schemas.Length{},
			expectedTags: map[string]string{
				"Min": "min",
				"Opt": "opt",
				"Max": "max",
			},
		},
	}

	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			structType := reflect.TypeOf(tt.structRef)
			actualTags := make(map[string]string)

			for i := 0; i < structType.NumField(); i++ {
				field := structType.Field(i)
				if jsonTag := field.Tag.Get("json"); jsonTag != "" {
					actualTags[field.Name] = jsonTag
				}
			}

			// Also catches fields missing from expectedTags.
			assert.Equal(t, tt.expectedTags, actualTags, "JSON tags for struct %s do not match expectations", tt.name)
		})
	}
}

// TestElementSpecTagsAreOmittable checks that every optional ElementSpec field
// is dropped when empty, so hand-written documents stay short.
func TestElementSpecTagsAreOmittable(t *testing.T) {
	t.Parallel()
	structType := reflect.TypeOf(schemas.ElementSpec{})
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if field.Name == "Type" {
			continue
		}
		assert.Contains(t, field.Tag.Get("json"), ",omitempty", "field %s", field.Name)
	}
}
