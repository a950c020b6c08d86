package store_test

import (
	"encoding/json"

	"github.com/taskdaemon/taskstore/internal/record"
)

// testTask is a minimal Record implementation used across this package's
// tests: a task with a status and priority, both indexed.
type testTask struct {
	ID        string `json:"id"`
	UpdatedMs int64  `json:"updated_at"`
	Status    string `json:"status"`
	Priority  int64  `json:"priority"`
}

func (t testTask) Identity() string       { return t.ID }
func (t testTask) UpdatedAt() int64       { return t.UpdatedMs }
func (t testTask) CollectionName() string { return "tasks" }

func (t testTask) IndexedFields() map[string]record.Scalar {
	return map[string]record.Scalar{
		"status":   record.Text(t.Status),
		"priority": record.Int(t.Priority),
	}
}

func (t testTask) Serialize() ([]byte, error) {
	return json.Marshal(t)
}

func deserializeTestTask(body []byte) (testTask, error) {
	var t testTask
	err := json.Unmarshal(body, &t)
	return t, err
}
