package engine

import (
	"time"

	"github.com/salama135/discord-bots/internal/model"
)

// moveTask is the only place a task's status is assigned or a task is put
// into a collection. The caller has already removed it from where it was
// and validated dest and info.
func moveTask(doc *model.Document, task model.Task, dest model.Destination, info string, now time.Time) model.Task {
	task.Status = dest.Status()
	task.Project = ""
	task.WaitingFor = ""
	task.Completed = nil

	switch dest {
	case model.DestinationNextAction:
		doc.NextActions = append(doc.NextActions, task)
	case model.DestinationProject:
		task.Project = info
		if doc.Projects == nil {
			doc.Projects = map[string][]model.Task{}
		}
		doc.Projects[info] = append(doc.Projects[info], task)
	case model.DestinationWaiting:
		task.WaitingFor = info
		doc.Waiting = append(doc.Waiting, task)
	case model.DestinationSomeday:
		doc.Someday = append(doc.Someday, task)
	case model.DestinationDone:
		completed := now
		task.Completed = &completed
		doc.Completed = append(doc.Completed, task)
	}
	return task
}

// newTask builds an inbox task. Ids are millisecond timestamps bumped past
// any id already in the document so captures within one millisecond stay
// unique.
func newTask(doc *model.Document, content string, now time.Time) model.Task {
	id := now.UnixMilli()
	if maxID := doc.MaxID(); id <= maxID {
		id = maxID + 1
	}
	return model.Task{
		ID:      id,
		Content: content,
		Created: now,
		Status:  model.StatusInbox,
	}
}
