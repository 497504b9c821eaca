package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStatusStampsFinishedOnce(t *testing.T) {
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	task := &Task{Status: StatusToDo, Started: started}

	firstDone := started.Add(time.Hour)
	task.SetStatus(StatusDone, firstDone)
	require.NotNil(t, task.Finished)
	assert.Equal(t, firstDone, *task.Finished)

	// 回退再完成，finished 保持第一次的时间戳
	task.SetStatus(StatusInProgress, firstDone.Add(time.Hour))
	assert.Equal(t, StatusInProgress, task.Status)
	require.NotNil(t, task.Finished)
	assert.Equal(t, firstDone, *task.Finished)

	task.SetStatus(StatusDone, firstDone.Add(2*time.Hour))
	assert.Equal(t, StatusDone, task.Status)
	assert.Equal(t, firstDone, *task.Finished)
}

func TestSetStatusWithoutDone(t *testing.T) {
	task := &Task{Status: StatusToDo}

	task.SetStatus(StatusInProgress, time.Now())
	assert.Equal(t, StatusInProgress, task.Status)
	assert.Nil(t, task.Finished)

	task.SetStatus(StatusOnReview, time.Now())
	assert.Equal(t, StatusOnReview, task.Status)
	assert.Nil(t, task.Finished)
}

func TestElapsed(t *testing.T) {
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(3 * time.Hour)
	now := started.Add(10 * time.Hour)

	done := &Task{Status: StatusDone, Started: started, Finished: &finished}
	assert.Equal(t, 3*time.Hour, done.Elapsed(now))

	// 完成过但又被打回的任务按当前时间计算
	reopened := &Task{Status: StatusInProgress, Started: started, Finished: &finished}
	assert.Equal(t, 10*time.Hour, reopened.Elapsed(now))

	live := &Task{Status: StatusToDo, Started: started}
	assert.Equal(t, 10*time.Hour, live.Elapsed(now))
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "TO DO", StatusToDo.Text())
	assert.Equal(t, "IN PROGRESS", StatusInProgress.Text())
	assert.Equal(t, "ON REVIEW", StatusOnReview.Text())
	assert.Equal(t, "DONE", StatusDone.Text())
}

func TestStatusValid(t *testing.T) {
	for s := StatusToDo; s <= StatusDone; s++ {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status(-1).Valid())
	assert.False(t, Status(4).Valid())
}

func TestTaskMarshalJSON(t *testing.T) {
	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	finished := started.Add(time.Hour)
	task := &Task{
		ID:       1,
		Title:    "上线准备",
		Status:   StatusDone,
		Started:  started,
		Finished: &finished,
	}

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "DONE", decoded["statusText"])
	assert.Equal(t, float64(3600), decoded["elapsed"])
}

func TestHasPerformer(t *testing.T) {
	task := &Task{Performers: []User{{ID: 1}, {ID: 3}}}
	assert.True(t, task.HasPerformer(1))
	assert.True(t, task.HasPerformer(3))
	assert.False(t, task.HasPerformer(2))
}
