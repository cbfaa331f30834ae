package model

import (
	"fmt"
	"sort"
)

// Document is the per-user task store. Every mutation rewrites it whole.
type Document struct {
	Inbox    []Task            `json:"inbox" yaml:"inbox"`
	Projects map[string][]Task `json:"projects" yaml:"projects"`
	// Contexts is carried for forward compatibility; nothing populates it.
	Contexts    map[string][]Task `json:"contexts" yaml:"contexts"`
	NextActions []Task            `json:"nextActions" yaml:"nextActions"`
	Waiting     []Task            `json:"waiting" yaml:"waiting"`
	Someday     []Task            `json:"someday" yaml:"someday"`
	Completed   []Task            `json:"completed" yaml:"completed"`
}

func NewDocument() *Document {
	d := &Document{}
	d.Normalize()
	return d
}

// Normalize replaces nil collections with empty ones so encoded documents
// always carry every key.
func (d *Document) Normalize() {
	if d.Inbox == nil {
		d.Inbox = []Task{}
	}
	if d.Projects == nil {
		d.Projects = map[string][]Task{}
	}
	if d.Contexts == nil {
		d.Contexts = map[string][]Task{}
	}
	if d.NextActions == nil {
		d.NextActions = []Task{}
	}
	if d.Waiting == nil {
		d.Waiting = []Task{}
	}
	if d.Someday == nil {
		d.Someday = []Task{}
	}
	if d.Completed == nil {
		d.Completed = []Task{}
	}
	for name, tasks := range d.Projects {
		if tasks == nil {
			d.Projects[name] = []Task{}
		}
	}
}

type Counts struct {
	Inbox       int `json:"inbox"`
	NextActions int `json:"nextActions"`
	Projects    int `json:"projects"`
	Waiting     int `json:"waiting"`
	Someday     int `json:"someday"`
	Completed   int `json:"completed"`
}

func (d *Document) Counts() Counts {
	return Counts{
		Inbox:       len(d.Inbox),
		NextActions: len(d.NextActions),
		Projects:    len(d.Projects),
		Waiting:     len(d.Waiting),
		Someday:     len(d.Someday),
		Completed:   len(d.Completed),
	}
}

func (d *Document) TotalTasks() int {
	total := len(d.Inbox) + len(d.NextActions) + len(d.Waiting) + len(d.Someday) + len(d.Completed)
	for _, tasks := range d.Projects {
		total += len(tasks)
	}
	return total
}

// ProjectNames returns bucket names in lexical order.
func (d *Document) ProjectNames() []string {
	names := make([]string, 0, len(d.Projects))
	for name := range d.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MaxID returns the highest task id held anywhere in the document.
func (d *Document) MaxID() int64 {
	var maxID int64
	d.each(func(_ string, t Task) {
		if t.ID > maxID {
			maxID = t.ID
		}
	})
	return maxID
}

// Validate checks that every task is well formed, unique, and sits in the
// collection its status names.
func (d *Document) Validate() error {
	seen := make(map[int64]string)
	var firstErr error
	d.each(func(where string, t Task) {
		if firstErr != nil {
			return
		}
		if err := t.Validate(); err != nil {
			firstErr = fmt.Errorf("%s: task %d: %w", where, t.ID, err)
			return
		}
		if prev, ok := seen[t.ID]; ok {
			firstErr = fmt.Errorf("%w: duplicate id %d in %s and %s", ErrInvalidTask, t.ID, prev, where)
			return
		}
		seen[t.ID] = where
		if want := collectionFor(t); want != where {
			firstErr = fmt.Errorf("%w: task %d with status %s found in %s", ErrInvalidTask, t.ID, t.Status, where)
		}
	})
	return firstErr
}

func (d *Document) each(fn func(where string, t Task)) {
	for _, t := range d.Inbox {
		fn("inbox", t)
	}
	for _, t := range d.NextActions {
		fn("nextActions", t)
	}
	for _, name := range d.ProjectNames() {
		for _, t := range d.Projects[name] {
			fn("projects/"+name, t)
		}
	}
	for _, t := range d.Waiting {
		fn("waiting", t)
	}
	for _, t := range d.Someday {
		fn("someday", t)
	}
	for _, t := range d.Completed {
		fn("completed", t)
	}
}

func collectionFor(t Task) string {
	switch t.Status {
	case StatusInbox:
		return "inbox"
	case StatusNext:
		return "nextActions"
	case StatusProject:
		return "projects/" + t.Project
	case StatusWaiting:
		return "waiting"
	case StatusSomeday:
		return "someday"
	case StatusDone:
		return "completed"
	default:
		return ""
	}
}
