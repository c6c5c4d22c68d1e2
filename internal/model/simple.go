package model

// DateLayout is the creation date format of SimpleTask.
const DateLayout = "2006-01-02"

// SimpleTask is the positional task record: no id, addressed by index.
type SimpleTask struct {
	Task      string `json:"task" yaml:"task" toml:"task"`
	Date      string `json:"date" yaml:"date" toml:"date"`
	Completed bool   `json:"completed" yaml:"completed" toml:"completed"`
}

// InRange reports whether idx addresses an element of a collection of length n.
func InRange(idx, n int) bool {
	return idx >= 0 && idx < n
}
