package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MBkkt/TaskManager/internal/domain"
)

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("pw123456", "example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, user.Login)
	assert.True(t, strings.HasSuffix(user.Email, "@example.com"))
	assert.NotEmpty(t, user.FirstName)
	assert.NotEmpty(t, user.LastName)
	assert.True(t, user.Role.Valid())

	// 密码保存的是哈希而不是明文
	assert.NotEqual(t, "pw123456", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw123456")))
}

func TestGenerateRandomOTP(t *testing.T) {
	for i := 0; i < 100; i++ {
		otp := GenerateRandomOTP()
		assert.Len(t, otp, 6)
	}
}

func TestGenerateRandomID(t *testing.T) {
	id := GenerateRandomID(3, 4)
	assert.Len(t, id, 7)
	for _, c := range id[3:] {
		assert.True(t, c >= '0' && c <= '9')
	}
}

func TestGenerateRandomTask(t *testing.T) {
	task := GenerateRandomTask(7)
	assert.Equal(t, int64(7), task.AuthorID)
	assert.NotEmpty(t, task.Title)
	assert.NotEmpty(t, task.Description)
	assert.Equal(t, domain.StatusToDo, task.Status)
}
