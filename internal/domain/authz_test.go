package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	assert.False(t, RoleWorker.Can(CapabilityCreateTask))
	assert.False(t, RoleWorker.Can(CapabilityEditTask))
	assert.False(t, RoleWorker.Can(CapabilityViewAuthoredTasks))
	assert.False(t, RoleWorker.Can(CapabilityListUsers))
	assert.True(t, RoleWorker.Can(CapabilityEditTaskStatus))

	assert.True(t, RoleAdmin.Can(CapabilityCreateTask))
	assert.True(t, RoleAdmin.Can(CapabilityEditTask))
	assert.True(t, RoleAdmin.Can(CapabilityEditTaskStatus))
	assert.True(t, RoleAdmin.Can(CapabilityViewAuthoredTasks))
	assert.True(t, RoleAdmin.Can(CapabilityListUsers))
}

func TestWorkerStatusAllowed(t *testing.T) {
	// 无论开关如何，普通用户都不能把任务改成 TO DO 或 DONE
	for _, forwardOnly := range []bool{false, true} {
		assert.False(t, WorkerStatusAllowed(StatusInProgress, StatusToDo, forwardOnly))
		assert.False(t, WorkerStatusAllowed(StatusOnReview, StatusDone, forwardOnly))
	}

	// 开关关闭时 IN PROGRESS 和 ON REVIEW 之间随意切换
	assert.True(t, WorkerStatusAllowed(StatusToDo, StatusInProgress, false))
	assert.True(t, WorkerStatusAllowed(StatusToDo, StatusOnReview, false))
	assert.True(t, WorkerStatusAllowed(StatusOnReview, StatusInProgress, false))

	// 开关开启时只能逐级推进
	assert.True(t, WorkerStatusAllowed(StatusToDo, StatusInProgress, true))
	assert.True(t, WorkerStatusAllowed(StatusInProgress, StatusOnReview, true))
	assert.False(t, WorkerStatusAllowed(StatusToDo, StatusOnReview, true))
	assert.False(t, WorkerStatusAllowed(StatusOnReview, StatusInProgress, true))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleWorker.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role(2).Valid())
	assert.False(t, Role(-1).Valid())
}
