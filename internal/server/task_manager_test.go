package server

import (
	"errors"
	"testing"
)

func TestTaskLifecycle(t *testing.T) {
	tm := NewTaskManager()

	task := tm.NewTask()
	if task.ID == "" {
		t.Fatal("expected a non-empty task id")
	}
	if task.Status != TaskStatusStarted {
		t.Errorf("new task status = %s, want started", task.Status)
	}

	got, found := tm.GetTask(task.ID)
	if !found || got != task {
		t.Fatal("registered task not retrievable")
	}

	task.SetStatus(TaskStatusRunning)
	task.SetResult(map[string]int{"a": 0})

	snap := task.Snapshot()
	if snap.Status != TaskStatusCompleted {
		t.Errorf("status after SetResult = %s, want completed", snap.Status)
	}
	if snap.Result == nil {
		t.Error("expected a result payload")
	}
}

func TestTaskError(t *testing.T) {
	tm := NewTaskManager()
	task := tm.NewTask()

	task.SetError(errors.New("boom"))

	snap := task.Snapshot()
	if snap.Status != TaskStatusFailed {
		t.Errorf("status = %s, want failed", snap.Status)
	}
	if snap.Error != "boom" {
		t.Errorf("error = %q, want boom", snap.Error)
	}
}

func TestUnknownTaskNotFound(t *testing.T) {
	tm := NewTaskManager()
	if _, found := tm.GetTask("missing"); found {
		t.Error("expected missing task to not be found")
	}
}

func TestTaskIDsAreUnique(t *testing.T) {
	tm := NewTaskManager()
	seen := make(map[string]bool)
	for range 100 {
		id := tm.NewTask().ID
		if seen[id] {
			t.Fatalf("duplicate task id %s", id)
		}
		seen[id] = true
	}
}
