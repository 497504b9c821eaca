package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFieldsMissing(t *testing.T) {
	record := apiRecord{"login": "alice", "email": "a@x.com"}

	resp := checkFields(record, "login", "email", "password")
	require.NotNil(t, resp)
	assert.False(t, resp.Result)
	assert.Equal(t, "Few fields are not exist", resp.Message)
}

func TestCheckFieldsEmpty(t *testing.T) {
	record := apiRecord{"login": "alice", "email": ""}

	resp := checkFields(record, "login", "email")
	require.NotNil(t, resp)
	assert.False(t, resp.Result)
	assert.Equal(t, "Few fields are empty", resp.Message)
}

func TestCheckFieldsOK(t *testing.T) {
	record := apiRecord{
		"login":      "alice",
		"email":      "a@x.com",
		"first_name": "Alice",
		"last_name":  "Liddell",
		"type":       float64(0), // type=0 表示普通用户，不能被当成空值
		"password":   "pw",
	}

	resp := checkFields(record, "login", "email", "first_name", "last_name", "type", "password")
	assert.Nil(t, resp)
}

func TestEmptyValue(t *testing.T) {
	assert.True(t, emptyValue(nil))
	assert.True(t, emptyValue(""))
	assert.True(t, emptyValue([]any{}))
	assert.True(t, emptyValue(map[string]any{}))

	assert.False(t, emptyValue("x"))
	assert.False(t, emptyValue(float64(0)))
	assert.False(t, emptyValue(false))
	assert.False(t, emptyValue([]any{float64(1)}))
}

func TestCheckPatchFields(t *testing.T) {
	record := apiRecord{"login": "alice", "password": "pw", "new_login": ""}
	resp := checkPatchFields(record, "new_login", "new_email")
	require.NotNil(t, resp)
	assert.False(t, resp.Result)
	assert.Equal(t, "Few fields are empty", resp.Message)

	// 非字符串值同样视为非法
	resp = checkPatchFields(apiRecord{"new_email": float64(5)}, "new_email")
	require.NotNil(t, resp)
	assert.Equal(t, "Few fields are empty", resp.Message)

	// 缺省的字段不参与检查
	assert.Nil(t, checkPatchFields(apiRecord{"login": "alice"}, "new_login", "new_email"))
	assert.Nil(t, checkPatchFields(apiRecord{"new_login": "bob"}, "new_login"))
}

func TestAsInt64(t *testing.T) {
	n, ok := asInt64(float64(3))
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	n, ok = asInt64("42")
	assert.True(t, ok)
	assert.Equal(t, int64(42), n)

	// 非整数不能被截断成合法的角色或状态值
	_, ok = asInt64(1.9)
	assert.False(t, ok)

	_, ok = asInt64("abc")
	assert.False(t, ok)

	_, ok = asInt64(nil)
	assert.False(t, ok)
}

func TestAsRefs(t *testing.T) {
	refs, ok := asRefs([]any{"alice", float64(2)})
	assert.True(t, ok)
	assert.Len(t, refs, 2)

	// 非数组和空数组都会清空参与者集合，必须拒绝
	_, ok = asRefs("alice")
	assert.False(t, ok)
	_, ok = asRefs([]any{})
	assert.False(t, ok)
	_, ok = asRefs(nil)
	assert.False(t, ok)
}

func TestAsStringAndBool(t *testing.T) {
	assert.Equal(t, "alice", asString("alice"))
	assert.Equal(t, "", asString(nil))
	assert.Equal(t, "", asString(float64(1)))

	assert.True(t, asBool(true))
	assert.False(t, asBool(nil))
	assert.False(t, asBool("true"))
}
