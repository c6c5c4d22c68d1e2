// Package ui renders the single page the browser client runs in.
package ui

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

type PageData struct {
	Title  string
	Schema string
}

// HomePage is the app shell. All task data is fetched by /static/js/app.js.
func HomePage(d PageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		title := templ.EscapeString(d.Title)
		schema := templ.EscapeString(d.Schema)
		r := strings.NewReplacer("{{title}}", title, "{{schema}}", schema)
		_, err := io.WriteString(w, r.Replace(shell))
		return err
	})
}

const shell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{title}}</title>
<link rel="stylesheet" href="/static/css/style.css">
</head>
<body data-schema="{{schema}}">
<header class="topbar">
  <button id="menuBtn" class="icon-btn" aria-label="Menu">&#9776;</button>
  <h1>{{title}}</h1>
  <input id="searchInput" type="search" placeholder="Search tasks">
  <button id="themeToggle" class="icon-btn" aria-label="Theme">&#127769;</button>
</header>
<div class="layout">
  <aside class="sidebar">
    <ul class="categories">
      <li class="category-item active" data-filter="all">All</li>
      <li class="category-item" data-filter="today">Today</li>
      <li class="category-item" data-filter="upcoming">Upcoming</li>
      <li class="category-item" data-filter="completed">Completed</li>
      <li class="category-item" data-filter="priority">Priority</li>
    </ul>
    <div id="calendar" class="calendar"></div>
  </aside>
  <main>
    <section class="progress">
      <span id="tasksToday">0 Tasks</span>
      <span id="completedCount">0 Completed</span>
      <div class="progress-bar"><div id="progressFill" class="progress-fill"></div></div>
      <span id="progressText">0%</span>
    </section>
    <button id="addTaskBtn" class="primary">+ Add Task</button>
    <section class="group"><h2>Today</h2><ul id="todayList" class="task-list"></ul></section>
    <section class="group"><h2>Upcoming</h2><ul id="upcomingList" class="task-list"></ul></section>
    <section class="group"><h2>Priority</h2><ul id="priorityList" class="task-list"></ul></section>
    <section class="group"><h2>Completed</h2><ul id="completedList" class="task-list"></ul></section>
  </main>
</div>
<div id="taskModal" class="modal" hidden>
  <div class="modal-body">
    <h3 id="modalTitle">Add Task</h3>
    <input id="taskTitle" type="text" placeholder="Title">
    <select id="taskCategory">
      <option value="today">Today</option>
      <option value="upcoming">Upcoming</option>
      <option value="priority">Priority</option>
    </select>
    <input id="taskDueDate" type="date">
    <input id="taskTimeSlot" type="time">
    <select id="taskPriority">
      <option value="low">Low</option>
      <option value="medium">Medium</option>
      <option value="high">High</option>
    </select>
    <label><input id="taskReminder" type="checkbox"> Remind me</label>
    <div class="modal-actions">
      <button id="cancelTask">Cancel</button>
      <button id="saveTask" class="primary">Save</button>
    </div>
  </div>
</div>
<script src="/static/js/app.js" defer></script>
</body>
</html>
`
