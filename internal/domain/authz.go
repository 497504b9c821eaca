package domain

import (
	"slices"
)

type Capability int

const (
	CapabilityCreateTask Capability = iota
	CapabilityEditTask
	CapabilityEditTaskStatus
	CapabilityViewAuthoredTasks
	CapabilityListUsers
)

// 各个角色拥有的能力。普通用户只能修改自己参与的任务的状态，
// 管理员才能创建任务、编辑自己发布的任务
var roleCapabilities = map[Role][]Capability{
	RoleWorker: {
		CapabilityEditTaskStatus,
	},
	RoleAdmin: {
		CapabilityCreateTask,
		CapabilityEditTask,
		CapabilityEditTaskStatus,
		CapabilityViewAuthoredTasks,
		CapabilityListUsers,
	},
}

func (r Role) Can(c Capability) bool {
	return slices.Contains(roleCapabilities[r], c)
}

// WorkerStatusAllowed 判断普通用户能否把任务状态从 cur 改成 next。
// 普通用户只能在 IN PROGRESS 和 ON REVIEW 之间选择，
// forwardOnly 开启时还要求状态只能逐级向前推进
func WorkerStatusAllowed(cur, next Status, forwardOnly bool) bool {
	if next != StatusInProgress && next != StatusOnReview {
		return false
	}
	if forwardOnly {
		return next == cur+1
	}
	return true
}
