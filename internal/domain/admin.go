package domain

// LogTaskStatus is the state of an asynchronous log report.
type LogTaskStatus string

const (
	LogTaskPending    LogTaskStatus = "PENDING"
	LogTaskInProgress LogTaskStatus = "IN_PROGRESS"
	LogTaskDone       LogTaskStatus = "DONE"
	LogTaskFailed     LogTaskStatus = "FAILED"
)

// IsFinal reports whether the task will not change state anymore.
func (s LogTaskStatus) IsFinal() bool {
	return s == LogTaskDone || s == LogTaskFailed
}

// LogTask identifies a started log report.
type LogTask struct {
	TaskID string `json:"taskId"`
}

// LogTaskState is the polled state of a log report.
type LogTaskState struct {
	TaskID string        `json:"taskId"`
	Status LogTaskStatus `json:"status"`
}

// DateLayout is the layout of report and archive dates.
const DateLayout = "2006-01-02"
