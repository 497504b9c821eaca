package domain

import (
	"time"
)

type Role int32

const (
	RoleWorker Role = 0
	RoleAdmin  Role = 1
)

func (r Role) Valid() bool {
	return r == RoleWorker || r == RoleAdmin
}

type User struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StatusCounts 是首页看板上每一列的任务数量
type StatusCounts struct {
	Total      int64 `json:"total"`
	ToDo       int64 `json:"toDo"`
	InProgress int64 `json:"inProgress"`
	OnReview   int64 `json:"onReview"`
	Done       int64 `json:"done"`
}

func (sc *StatusCounts) Add(status Status, n int64) {
	sc.Total += n
	switch status {
	case StatusToDo:
		sc.ToDo += n
	case StatusInProgress:
		sc.InProgress += n
	case StatusOnReview:
		sc.OnReview += n
	case StatusDone:
		sc.Done += n
	}
}

type TaskCounts struct {
	Authored StatusCounts `json:"authored"`
	Assigned StatusCounts `json:"assigned"`
}
