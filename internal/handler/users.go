package handler

import (
	"net/http"
)

// GetAllUserInfo 返回所有用户，管理员在创建任务时用它来选择参与者
func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}
