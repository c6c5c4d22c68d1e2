package model

// Task is the extended task record. The JSON keys are the on-disk format of tasks.json.
type Task struct {
	ID          int    `json:"id" yaml:"id" toml:"id"`
	Title       string `json:"title" yaml:"title" toml:"title"`
	Category    string `json:"category" yaml:"category" toml:"category"`
	DueDate     string `json:"due_date" yaml:"due_date" toml:"due_date"`
	TimeSlot    string `json:"time_slot" yaml:"time_slot" toml:"time_slot"`
	Completed   bool   `json:"completed" yaml:"completed" toml:"completed"`
	Priority    string `json:"priority" yaml:"priority" toml:"priority"`
	ReminderSet bool   `json:"reminder_set" yaml:"reminder_set" toml:"reminder_set"`
}

// Patch represents a shallow merge into a Task.
// nil pointer => field absent from the request, no change.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Category    *string `json:"category,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	TimeSlot    *string `json:"time_slot,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	ReminderSet *bool   `json:"reminder_set,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (p Patch) ApplyTo(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.TimeSlot != nil {
		t.TimeSlot = *p.TimeSlot
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ReminderSet != nil {
		t.ReminderSet = *p.ReminderSet
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// IndexOf returns the position of the first task with the given id, or -1.
func IndexOf(tasks []Task, id int) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// MaxID returns the highest id in tasks, 0 for an empty collection.
func MaxID(tasks []Task) int {
	highest := 0
	for _, t := range tasks {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest
}

// RemoveID drops every task carrying id and reports how many were removed.
func RemoveID(tasks []Task, id int) ([]Task, int) {
	out := tasks[:0]
	removed := 0
	for _, t := range tasks {
		if t.ID == id {
			removed++
			continue
		}
		out = append(out, t)
	}
	return out, removed
}

// OrderByIDs puts the tasks named in ids first, in that order. Unknown ids
// are skipped and unlisted tasks follow in their existing order.
func OrderByIDs(tasks []Task, ids []int) []Task {
	out := make([]Task, 0, len(tasks))
	used := make([]bool, len(tasks))
	for _, id := range ids {
		for i, t := range tasks {
			if used[i] || t.ID != id {
				continue
			}
			used[i] = true
			out = append(out, t)
			break
		}
	}
	for i, t := range tasks {
		if !used[i] {
			out = append(out, t)
		}
	}
	return out
}
