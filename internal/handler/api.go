package handler

import (
	"database/sql"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/MBkkt/TaskManager/internal/domain"
)

// 批量 JSON API。请求体是一个记录数组，响应也是一个数组，
// 每条记录单独处理，一条失败不影响其余记录。
// 消息文本是对外契约的一部分，保持英文不翻译。

type apiRecord map[string]any

func (h *Handler) APIIndex(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]any{
		"api_function": []string{
			"get_users", "add_users", "edit_users",
			"get_tasks", "add_tasks", "edit_tasks",
		},
	})
}

func (h *Handler) readBatch(w http.ResponseWriter, r *http.Request) ([]apiRecord, bool) {
	var records []apiRecord
	if err := h.readJSON(r, &records); err != nil {
		h.errorResponse(w, r, err.Error())
		return nil, false
	}
	return records, true
}

// emptyValue 判断字段值是否为空，数字 0 不算空（type=0 表示普通用户）
func emptyValue(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return value == ""
	case []any:
		return len(value) == 0
	case map[string]any:
		return len(value) == 0
	default:
		return false
	}
}

// checkFields 检查记录中必填字段是否齐全、是否有空值，
// 有问题时返回对应的错误响应
func checkFields(record apiRecord, fields ...string) *Response {
	for _, field := range fields {
		if _, exists := record[field]; !exists {
			return &Response{
				Result:  false,
				Message: "Few fields are not exist",
				Data:    record,
			}
		}
	}

	for _, value := range record {
		if emptyValue(value) {
			return &Response{
				Result:  false,
				Message: "Few fields are empty",
				Data:    record,
			}
		}
	}

	return nil
}

// checkPatchFields 检查编辑记录中出现的字符串字段。
// 这些字段写入的都是非空列，空字符串和非字符串值都要拒绝
func checkPatchFields(record apiRecord, fields ...string) *Response {
	for _, field := range fields {
		if value, exists := record[field]; exists && asString(value) == "" {
			return &Response{
				Result:  false,
				Message: "Few fields are empty",
				Data:    record,
			}
		}
	}
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) (int64, bool) {
	switch value := v.(type) {
	case float64:
		// JSON 的数字都是 float64，只接受整数值
		if value != math.Trunc(value) {
			return 0, false
		}
		return int64(value), true
	case string:
		n, err := strconv.ParseInt(value, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asRefs 把 users 字段解析成用户引用数组，非数组和空数组都视为非法
func asRefs(v any) ([]any, bool) {
	refs, ok := v.([]any)
	return refs, ok && len(refs) > 0
}

// lookupUser 按原始契约查找用户：先按 login 再按 email，
// 找到后还要校验密码
func (h *Handler) lookupUser(record apiRecord) (*domain.User, *Response) {
	identifier := asString(record["login"])
	if identifier == "" {
		identifier = asString(record["email"])
	}

	user, err := h.repository.GetUserByLoginOrEmail(identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &Response{Result: false, Message: "Account no exist", Data: record}
		}
		return nil, &Response{Result: false, Message: "Internal server error", Data: record}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(asString(record["password"]))); err != nil {
		return nil, &Response{Result: false, Message: "Wrong password", Data: record}
	}

	return user, nil
}

func (h *Handler) lookupTask(record apiRecord) (*domain.Task, *Response) {
	task, err := h.repository.GetTaskByTitle(asString(record["title"]))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &Response{Result: false, Message: "Task no exist", Data: record}
		}
		return nil, &Response{Result: false, Message: "Internal server error", Data: record}
	}
	return task, nil
}

// userExists 检查登录名或邮箱是否已被占用
func (h *Handler) userExists(record apiRecord) (bool, error) {
	for _, identifier := range []string{asString(record["login"]), asString(record["email"])} {
		if identifier == "" {
			continue
		}
		if _, err := h.repository.GetUserByLoginOrEmail(identifier); err == nil {
			return true, nil
		} else if !errors.Is(err, sql.ErrNoRows) {
			return false, err
		}
	}
	return false, nil
}

// resolveUserRef 把 id 或登录名解析成用户
func (h *Handler) resolveUserRef(ref any) (*domain.User, error) {
	if id, ok := asInt64(ref); ok {
		return h.repository.GetUserByID(id)
	}
	return h.repository.GetUserByLogin(asString(ref))
}

func (h *Handler) resolvePerformerRefs(refs []any) ([]int64, error) {
	ids := make([]int64, 0, len(refs))
	for _, ref := range refs {
		user, err := h.resolveUserRef(ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, user.ID)
	}
	return ids, nil
}

func (h *Handler) APIAddUsers(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readBatch(w, r)
	if !ok {
		return
	}

	results := make([]Response, 0, len(records))
	for _, record := range records {
		if resp := checkFields(record, "login", "email", "first_name", "last_name", "type", "password"); resp != nil {
			results = append(results, *resp)
			continue
		}

		exists, err := h.userExists(record)
		if err != nil {
			h.logInternalServerError(r, err)
			results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
			continue
		}
		if exists {
			results = append(results, Response{Result: false, Message: "User exist", Data: record})
			continue
		}

		roleValue, ok := asInt64(record["type"])
		role := domain.Role(roleValue)
		if !ok || !role.Valid() {
			results = append(results, Response{Result: false, Message: "Invalid type field", Data: record})
			continue
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(asString(record["password"])), bcrypt.DefaultCost)
		if err != nil {
			h.logInternalServerError(r, err)
			results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
			continue
		}

		user := &domain.User{
			Login:        asString(record["login"]),
			Email:        asString(record["email"]),
			FirstName:    asString(record["first_name"]),
			LastName:     asString(record["last_name"]),
			Role:         role,
			PasswordHash: string(hashedPassword),
		}

		if err := h.repository.CreateUser(user); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && (pgErr.ConstraintName == "users_login_key" || pgErr.ConstraintName == "users_email_key") {
				results = append(results, Response{Result: false, Message: "User exist", Data: record})
			} else {
				h.logInternalServerError(r, err)
				results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
			}
			continue
		}

		results = append(results, Response{Result: true, Message: "User successfully added", Data: record})
	}

	h.writeJSON(w, r, http.StatusOK, results)
}

func (h *Handler) APIGetUsers(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readBatch(w, r)
	if !ok {
		return
	}

	results := make([]Response, 0, len(records))
	for _, record := range records {
		user, errResp := h.lookupUser(record)
		if errResp != nil {
			results = append(results, *errResp)
			continue
		}

		results = append(results, Response{Result: true, Message: "Success", Data: user})
	}

	h.writeJSON(w, r, http.StatusOK, results)
}

func (h *Handler) APIEditUsers(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readBatch(w, r)
	if !ok {
		return
	}

	results := make([]Response, 0, len(records))
	for _, record := range records {
		user, errResp := h.lookupUser(record)
		if errResp != nil {
			results = append(results, *errResp)
			continue
		}

		if asBool(record["delete"]) {
			if err := h.repository.DeleteUser(user.ID); err != nil {
				h.logInternalServerError(r, err)
				results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
				continue
			}
			results = append(results, Response{Result: true, Message: "User successfully edited", Data: record})
			continue
		}

		if resp := checkPatchFields(record, "new_login", "new_email", "first_name", "last_name"); resp != nil {
			results = append(results, *resp)
			continue
		}

		// 只更新记录中出现的字段。login 和 email 同时也是查找键，
		// 改动它们需要用 new_login / new_email
		if value, exists := record["new_login"]; exists {
			user.Login = asString(value)
		}
		if value, exists := record["new_email"]; exists {
			user.Email = asString(value)
		}
		if value, exists := record["first_name"]; exists {
			user.FirstName = asString(value)
		}
		if value, exists := record["last_name"]; exists {
			user.LastName = asString(value)
		}
		if value, exists := record["type"]; exists {
			roleValue, ok := asInt64(value)
			role := domain.Role(roleValue)
			if !ok || !role.Valid() {
				results = append(results, Response{Result: false, Message: "Invalid type field", Data: record})
				continue
			}
			user.Role = role
		}

		if err := h.repository.UpdateUser(user); err != nil {
			var pgErr *pgconn.PgError
			switch {
			case errors.As(err, &pgErr) && (pgErr.ConstraintName == "users_login_key" || pgErr.ConstraintName == "users_email_key"):
				results = append(results, Response{Result: false, Message: "User exist", Data: record})
			case errors.Is(err, sql.ErrNoRows):
				// 查找和更新之间用户被删除了
				results = append(results, Response{Result: false, Message: "Account no exist", Data: record})
			default:
				h.logInternalServerError(r, err)
				results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
			}
			continue
		}

		results = append(results, Response{Result: true, Message: "User successfully edited", Data: record})
	}

	h.writeJSON(w, r, http.StatusOK, results)
}

func (h *Handler) APIAddTasks(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readBatch(w, r)
	if !ok {
		return
	}

	results := make([]Response, 0, len(records))
	for _, record := range records {
		if resp := checkFields(record, "title", "description", "author", "users"); resp != nil {
			results = append(results, *resp)
			continue
		}

		if _, err := h.repository.GetTaskByTitle(asString(record["title"])); err == nil {
			results = append(results, Response{Result: false, Message: "Task exist", Data: record})
			continue
		} else if !errors.Is(err, sql.ErrNoRows) {
			h.logInternalServerError(r, err)
			results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
			continue
		}

		author, err := h.resolveUserRef(record["author"])
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				results = append(results, Response{Result: false, Message: "Account no exist", Data: record})
			} else {
				h.logInternalServerError(r, err)
				results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
			}
			continue
		}

		refs, ok := asRefs(record["users"])
		if !ok {
			results = append(results, Response{Result: false, Message: "Invalid users field", Data: record})
			continue
		}
		performerIDs, err := h.resolvePerformerRefs(refs)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				results = append(results, Response{Result: false, Message: "Account no exist", Data: record})
			} else {
				h.logInternalServerError(r, err)
				results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
			}
			continue
		}

		task := &domain.Task{
			Title:       asString(record["title"]),
			Description: asString(record["description"]),
			AuthorID:    author.ID,
		}

		if err := h.repository.CreateTask(task, performerIDs); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "tasks_title_key" {
				results = append(results, Response{Result: false, Message: "Task exist", Data: record})
			} else {
				h.logInternalServerError(r, err)
				results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
			}
			continue
		}

		results = append(results, Response{Result: true, Message: "Task successfully added", Data: record})
	}

	h.writeJSON(w, r, http.StatusOK, results)
}

func (h *Handler) APIGetTasks(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readBatch(w, r)
	if !ok {
		return
	}

	results := make([]Response, 0, len(records))
	for _, record := range records {
		task, errResp := h.lookupTask(record)
		if errResp != nil {
			results = append(results, *errResp)
			continue
		}

		results = append(results, Response{Result: true, Message: "Success", Data: task})
	}

	h.writeJSON(w, r, http.StatusOK, results)
}

func (h *Handler) APIEditTasks(w http.ResponseWriter, r *http.Request) {
	records, ok := h.readBatch(w, r)
	if !ok {
		return
	}

	results := make([]Response, 0, len(records))
	for _, record := range records {
		task, errResp := h.lookupTask(record)
		if errResp != nil {
			results = append(results, *errResp)
			continue
		}

		if asBool(record["delete"]) {
			if err := h.repository.DeleteTask(task.ID); err != nil {
				h.logInternalServerError(r, err)
				results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
				continue
			}
			results = append(results, Response{Result: true, Message: "Task successfully edited", Data: record})
			continue
		}

		if resp := checkPatchFields(record, "new_title", "description"); resp != nil {
			results = append(results, *resp)
			continue
		}

		// title 是查找键，改标题要用 new_title
		if value, exists := record["new_title"]; exists {
			task.Title = asString(value)
		}
		if value, exists := record["description"]; exists {
			task.Description = asString(value)
		}
		if value, exists := record["status"]; exists {
			statusValue, ok := asInt64(value)
			status := domain.Status(statusValue)
			if !ok || !status.Valid() {
				results = append(results, Response{Result: false, Message: "Invalid status field", Data: record})
				continue
			}
			task.SetStatus(status, time.Now())
		}

		var performerIDs []int64
		if value, exists := record["users"]; exists {
			refs, ok := asRefs(value)
			if !ok {
				results = append(results, Response{Result: false, Message: "Invalid users field", Data: record})
				continue
			}
			ids, err := h.resolvePerformerRefs(refs)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					results = append(results, Response{Result: false, Message: "Account no exist", Data: record})
				} else {
					h.logInternalServerError(r, err)
					results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
				}
				continue
			}
			performerIDs = ids
		}

		if _, err := h.repository.UpdateTask(task, performerIDs); err != nil {
			var pgErr *pgconn.PgError
			switch {
			case errors.As(err, &pgErr) && pgErr.ConstraintName == "tasks_title_key":
				results = append(results, Response{Result: false, Message: "Task exist", Data: record})
			case errors.Is(err, sql.ErrNoRows):
				// 查找和更新之间任务被删除了
				results = append(results, Response{Result: false, Message: "Task no exist", Data: record})
			default:
				h.logInternalServerError(r, err)
				results = append(results, Response{Result: false, Message: "Internal server error", Data: record})
			}
			continue
		}

		results = append(results, Response{Result: true, Message: "Task successfully edited", Data: record})
	}

	h.writeJSON(w, r, http.StatusOK, results)
}
