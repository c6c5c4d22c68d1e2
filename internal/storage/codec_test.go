package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azam-Khan12/TODO-Task-Manager/internal/model"
)

func TestEncode_Formats(t *testing.T) {
	items := []model.Task{{ID: 1, Title: "X", Category: "Work", DueDate: "2024-01-01", TimeSlot: "09:00", Priority: "High"}}

	tests := []struct {
		format string
		want   []string
	}{
		{format: "json", want: []string{`"due_date": "2024-01-01"`, `"reminder_set": false`}},
		{format: "yaml", want: []string{"- id: 1", "  due_date: ", "2024-01-01", "  time_slot: "}},
		{format: "toml", want: []string{"[[tasks]]", `title = "X"`, "reminder_set = false"}},
	}
	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, tc.format, items))
			for _, w := range tc.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, "xml", []model.Task{})
	assert.Error(t, err)
}
