package domain

import (
	"encoding/json"
	"time"
)

type Status int32

const (
	StatusToDo       Status = 0
	StatusInProgress Status = 1
	StatusOnReview   Status = 2
	StatusDone       Status = 3
)

func (s Status) Valid() bool {
	return s >= StatusToDo && s <= StatusDone
}

func (s Status) Text() string {
	switch s {
	case StatusToDo:
		return "TO DO"
	case StatusInProgress:
		return "IN PROGRESS"
	case StatusOnReview:
		return "ON REVIEW"
	default:
		return "DONE"
	}
}

type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AuthorID    int64      `json:"authorId"`
	Status      Status     `json:"status"`
	Started     time.Time  `json:"started"`
	Finished    *time.Time `json:"finished"`
	Performers  []User     `json:"performers"`
}

// SetStatus 更新任务状态。finished 只会在任务第一次到达 DONE 时被记录，
// 之后无论状态怎么变化都不会再改动
func (t *Task) SetStatus(next Status, now time.Time) {
	if next == StatusDone && t.Finished == nil {
		t.Finished = &now
	}
	t.Status = next
}

// Elapsed 返回任务从创建到完成的耗时，未完成的任务按当前时间计算
func (t *Task) Elapsed(now time.Time) time.Duration {
	if t.Status == StatusDone && t.Finished != nil {
		return t.Finished.Sub(t.Started)
	}
	return now.Sub(t.Started)
}

// MarshalJSON 在序列化时附上状态文本和耗时（秒），供前端直接展示
func (t *Task) MarshalJSON() ([]byte, error) {
	type alias Task
	return json.Marshal(struct {
		*alias
		StatusText string `json:"statusText"`
		Elapsed    int64  `json:"elapsed"`
	}{
		alias:      (*alias)(t),
		StatusText: t.Status.Text(),
		Elapsed:    int64(t.Elapsed(time.Now()).Seconds()),
	})
}

func (t *Task) HasPerformer(userID int64) bool {
	for _, u := range t.Performers {
		if u.ID == userID {
			return true
		}
	}
	return false
}
