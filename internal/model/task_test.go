package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestPatch_ApplyTo_OnlyPresentFields(t *testing.T) {
	task := Task{ID: 7, Title: "X", Category: "Work", DueDate: "2024-01-01", TimeSlot: "09:00", Priority: "High"}

	Patch{Title: strPtr("Y"), Completed: boolPtr(true)}.ApplyTo(&task)

	assert.Equal(t, Task{ID: 7, Title: "Y", Category: "Work", DueDate: "2024-01-01", TimeSlot: "09:00", Priority: "High", Completed: true}, task)
}

func TestPatch_ApplyTo_EmptyStringOverwrites(t *testing.T) {
	task := Task{ID: 1, Category: "Work"}

	Patch{Category: strPtr("")}.ApplyTo(&task)

	assert.Equal(t, "", task.Category)
}

func TestIndexOfAndMaxID(t *testing.T) {
	tasks := []Task{{ID: 3}, {ID: 9}, {ID: 4}}

	assert.Equal(t, 1, IndexOf(tasks, 9))
	assert.Equal(t, -1, IndexOf(tasks, 5))
	assert.Equal(t, 9, MaxID(tasks))
	assert.Equal(t, 0, MaxID(nil))
}

func TestRemoveID(t *testing.T) {
	tasks := []Task{{ID: 1}, {ID: 2}, {ID: 1}, {ID: 3}}

	out, n := RemoveID(tasks, 1)
	assert.Equal(t, 2, n)
	assert.Equal(t, []Task{{ID: 2}, {ID: 3}}, out)

	out, n = RemoveID(out, 42)
	assert.Zero(t, n)
	assert.Len(t, out, 2)
}

func TestOrderByIDs(t *testing.T) {
	tasks := []Task{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}

	got := OrderByIDs(tasks, []int{3, 99, 1})

	assert.Equal(t, []Task{{ID: 3}, {ID: 1}, {ID: 2}, {ID: 4}}, got)
}

func TestOrderByIDs_DuplicateIDsKeepBoth(t *testing.T) {
	tasks := []Task{{ID: 1, Title: "a"}, {ID: 1, Title: "b"}, {ID: 2}}

	got := OrderByIDs(tasks, []int{2, 1, 1})

	assert.Equal(t, []Task{{ID: 2}, {ID: 1, Title: "a"}, {ID: 1, Title: "b"}}, got)
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(0, 1))
	assert.False(t, InRange(1, 1))
	assert.False(t, InRange(-1, 3))
	assert.False(t, InRange(0, 0))
}
