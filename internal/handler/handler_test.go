package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MBkkt/TaskManager/internal/config"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	h, err := NewHandler(&config.Config{}, nil, nil, nil)
	require.NoError(t, err)
	return h
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// 标题是非空的唯一键，编辑时不允许改成空字符串
func TestUpdateTaskRejectsEmptyTitle(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPatch, "/tasks/1", strings.NewReader(`{"title": ""}`))
	rec := httptest.NewRecorder()
	h.UpdateTask(rec, req)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Result)
}

// 编辑任务时不允许把参与者集合清空
func TestUpdateTaskRejectsEmptyPerformers(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPatch, "/tasks/1", strings.NewReader(`{"performerIds": []}`))
	rec := httptest.NewRecorder()
	h.UpdateTask(rec, req)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Result)
}

// 登录名和邮箱同样是非空的唯一键
func TestUpdateMyInfoRejectsEmptyFields(t *testing.T) {
	h := newTestHandler(t)

	bodies := []string{
		`{"login": ""}`,
		`{"email": ""}`,
		`{"firstName": ""}`,
		`{"lastName": ""}`,
	}
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPatch, "/my-info", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.UpdateMyInfo(rec, req)

		resp := decodeResponse(t, rec)
		assert.False(t, resp.Result, body)
	}
}
