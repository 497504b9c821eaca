package repository

import (
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MBkkt/TaskManager/internal/config"
	"github.com/MBkkt/TaskManager/internal/domain"
)

// 这些测试需要一个真实的 postgres，连接串通过 TEST_DATABASE_DSN 提供，
// 未设置时自动跳过。每个测试开始前都会清空所有表
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("未设置 TEST_DATABASE_DSN，跳过数据库测试")
	}

	dbpool, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbpool.Close() })

	schema, err := os.ReadFile("../../migrations/00001_init.sql")
	require.NoError(t, err)
	_, err = dbpool.Exec(string(schema))
	require.NoError(t, err)

	_, err = dbpool.Exec(`TRUNCATE users_tasks, tasks, users RESTART IDENTITY`)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 10
	cfg.Database.TransactionTimeout = 20

	return NewRepository(cfg, dbpool)
}

func createTestUser(t *testing.T, repo *Repository, login string) *domain.User {
	t.Helper()

	user := &domain.User{
		Login:        login,
		Email:        login + "@example.com",
		FirstName:    "测试",
		LastName:     "用户",
		Role:         domain.RoleAdmin,
		PasswordHash: "hash",
	}
	require.NoError(t, repo.CreateUser(user))
	return user
}

func createTestTask(t *testing.T, repo *Repository, title string, authorID int64, performerIDs ...int64) *domain.Task {
	t.Helper()

	task := &domain.Task{
		Title:       title,
		Description: "描述",
		AuthorID:    authorID,
	}
	require.NoError(t, repo.CreateTask(task, performerIDs))
	return task
}

func performerIDsOf(task *domain.Task) []int64 {
	ids := make([]int64, 0, len(task.Performers))
	for _, p := range task.Performers {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestDeleteUserCascades(t *testing.T) {
	repo := newTestRepository(t)

	author := createTestUser(t, repo, "author")
	performer := createTestUser(t, repo, "performer")
	other := createTestUser(t, repo, "other")

	authored := createTestTask(t, repo, "发布的任务", author.ID, performer.ID)
	performed := createTestTask(t, repo, "参与的任务", other.ID, author.ID, performer.ID)

	require.NoError(t, repo.DeleteUser(author.ID))

	// 其发布的任务连同参与关系一起消失
	_, err := repo.GetTaskByID(authored.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// 其仅参与的任务保留，只移除了其参与关系
	survived, err := repo.GetTaskByID(performed.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{performer.ID}, performerIDsOf(survived))

	// 其他用户不受影响
	_, err = repo.GetUserByID(performer.ID)
	assert.NoError(t, err)
	_, err = repo.GetUserByID(author.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateTaskReconcilesPerformers(t *testing.T) {
	repo := newTestRepository(t)

	author := createTestUser(t, repo, "author")
	u1 := createTestUser(t, repo, "u1")
	u2 := createTestUser(t, repo, "u2")

	task := createTestTask(t, repo, "任务", author.ID, author.ID, u1.ID)

	added, err := repo.UpdateTask(task, []int64{u1.ID, u2.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{u2.ID}, added)

	reloaded, err := repo.GetTaskByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{u1.ID, u2.ID}, performerIDsOf(reloaded))
}

func TestUpdateTaskRejectsUnknownPerformer(t *testing.T) {
	repo := newTestRepository(t)

	author := createTestUser(t, repo, "author")
	u1 := createTestUser(t, repo, "u1")

	task := createTestTask(t, repo, "任务", author.ID, u1.ID)

	_, err := repo.UpdateTask(task, []int64{u1.ID, 99999})
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// 事务回滚，参与者集合保持不变
	reloaded, err := repo.GetTaskByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{u1.ID}, performerIDsOf(reloaded))
}

func TestUniqueKeysReusableAfterDelete(t *testing.T) {
	repo := newTestRepository(t)

	user := createTestUser(t, repo, "reuse")
	task := createTestTask(t, repo, "可复用标题", user.ID, user.ID)

	// 删除后标题和登录名都可以立刻被重新使用
	require.NoError(t, repo.DeleteTask(task.ID))
	createTestTask(t, repo, "可复用标题", user.ID, user.ID)

	require.NoError(t, repo.DeleteUser(user.ID))
	createTestUser(t, repo, "reuse")
}
