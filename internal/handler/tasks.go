package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MBkkt/TaskManager/internal/domain"
)

// notifyAssignedPerformers 给新加入任务的参与者发送通知邮件
func (h *Handler) notifyAssignedPerformers(task *domain.Task, author *domain.User, performerIDs []int64) error {
	for _, id := range performerIDs {
		performer, err := h.repository.GetUserByID(id)
		if err != nil {
			return err
		}

		mailMessage := domain.MailMessage{
			Type: "task_assigned",
			To:   performer.Email,
			Data: domain.TaskAssignedMailData{
				FirstName:   performer.FirstName,
				TaskTitle:   task.Title,
				AuthorLogin: author.Login,
			},
		}
		if err := h.publishMail(mailMessage); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title        string  `json:"title" validate:"required"`
		Description  string  `json:"description" validate:"required"`
		PerformerIDs []int64 `json:"performerIds" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		AuthorID:    myInfo.ID,
	}

	if err := h.repository.CreateTask(task, req.PerformerIDs); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "tasks_title_key":
				h.badRequest(w, r, errors.New("任务标题已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "有参与者不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.notifyAssignedPerformers(task, myInfo, req.PerformerIDs); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 重新读取以便返回完整的参与者信息
	created, err := h.repository.GetTaskByID(task.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "任务创建成功", created)
}

// GetMyTasks 返回当前用户参与的任务
func (h *Handler) GetMyTasks(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	tasks, err := h.repository.GetTasksByPerformer(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取任务列表成功", tasks)
}

// GetAuthoredTasks 返回当前用户发布的任务
func (h *Handler) GetAuthoredTasks(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	tasks, err := h.repository.GetTasksByAuthor(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取任务列表成功", tasks)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskCtx).(*domain.Task)
	h.successResponse(w, r, "获取任务成功", task)
}

// UpdateTask 是作者对任务的完整编辑，标题、描述、状态和参与者都可以修改。
// 非作者（包括其他管理员）只能走 UpdateTaskStatus
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	// omitnil 而不是 omitempty：缺省的字段跳过校验，
	// 显式传来的空字符串要被拒绝
	var req struct {
		Title        *string        `json:"title" validate:"omitnil,min=1"`
		Description  *string        `json:"description" validate:"omitnil,min=1"`
		Status       *domain.Status `json:"status" validate:"omitnil,oneof=0 1 2 3"`
		PerformerIDs []int64        `json:"performerIds" validate:"omitnil,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	task := r.Context().Value(TaskCtx).(*domain.Task)

	if !myInfo.Role.Can(domain.CapabilityEditTask) || task.AuthorID != myInfo.ID {
		h.errorResponse(w, r, "权限不足")
		return
	}

	// 只更新请求中出现的字段
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.SetStatus(*req.Status, time.Now())
	}

	added, err := h.repository.UpdateTask(task, req.PerformerIDs)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "tasks_title_key":
				h.badRequest(w, r, errors.New("任务标题已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "有参与者不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.notifyAssignedPerformers(task, myInfo, added); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	updated, err := h.repository.GetTaskByID(task.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "任务更新成功", updated)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	task := r.Context().Value(TaskCtx).(*domain.Task)

	if !myInfo.Role.Can(domain.CapabilityEditTask) || task.AuthorID != myInfo.ID {
		h.errorResponse(w, r, "权限不足")
		return
	}

	if err := h.repository.DeleteTask(task.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "任务删除成功", nil)
}

// UpdateTaskStatus 只修改任务状态：作者可以改成任意状态，
// 非作者的管理员也允许走这个窄接口，普通用户必须是参与者
// 且只能在 IN PROGRESS 和 ON REVIEW 之间选择
func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status *domain.Status `json:"status" validate:"required,oneof=0 1 2 3"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	task := r.Context().Value(TaskCtx).(*domain.Task)

	switch {
	case task.AuthorID == myInfo.ID:
		// 作者不受限制
	case myInfo.Role == domain.RoleAdmin:
		// 非作者的管理员只能改状态，不能碰标题、描述和参与者
	case task.HasPerformer(myInfo.ID) && myInfo.Role.Can(domain.CapabilityEditTaskStatus):
		if !domain.WorkerStatusAllowed(task.Status, *req.Status, h.config.Tasks.WorkerForwardOnly) {
			h.errorResponse(w, r, "不允许的状态变更")
			return
		}
	default:
		h.errorResponse(w, r, "权限不足")
		return
	}

	task.SetStatus(*req.Status, time.Now())

	if err := h.repository.UpdateTaskStatus(task); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "任务不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "任务状态更新成功", task)
}
