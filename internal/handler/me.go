package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/MBkkt/TaskManager/internal/domain"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取个人信息成功", myInfo)
}

func (h *Handler) UpdateMyInfo(w http.ResponseWriter, r *http.Request) {
	// omitnil 而不是 omitempty：缺省的字段跳过校验，
	// 显式传来的空字符串要被拒绝
	var req struct {
		Login     *string      `json:"login" validate:"omitnil,min=1"`
		Email     *string      `json:"email" validate:"omitnil,email"`
		FirstName *string      `json:"firstName" validate:"omitnil,min=1"`
		LastName  *string      `json:"lastName" validate:"omitnil,min=1"`
		Role      *domain.Role `json:"role" validate:"omitnil,oneof=0 1"`
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

	// 只更新请求中出现的字段，缺省的字段保持原样
	if req.Login != nil {
		myInfo.Login = *req.Login
	}
	if req.Email != nil {
		myInfo.Email = *req.Email
	}
	if req.FirstName != nil {
		myInfo.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		myInfo.LastName = *req.LastName
	}
	if req.Role != nil {
		myInfo.Role = *req.Role
	}

	if err := h.repository.UpdateUser(myInfo); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "users_login_key":
				h.badRequest(w, r, errors.New("登录名已存在"))
			case pgErr.ConstraintName == "users_email_key":
				h.badRequest(w, r, errors.New("邮箱已存在"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新个人信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新个人信息成功", myInfo)
}

// DeleteMyInfo 删除自己的账号，其发布的所有任务也会被级联删除
func (h *Handler) DeleteMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(myInfo.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	clearSessionCookie(w)

	h.successResponse(w, r, "删除账号成功", nil)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(myInfo.PasswordHash), []byte(req.OldPassword)); err != nil {
		h.errorResponse(w, r, "旧密码错误")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	myInfo.PasswordHash = string(hashedPassword)

	if err := h.repository.UpdateUser(myInfo); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新密码失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新密码成功", nil)
}

// GetMyTaskCounts 返回首页看板所需的任务统计
func (h *Handler) GetMyTaskCounts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	counts, err := h.repository.GetTaskCounts(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取任务统计成功", counts)
}
