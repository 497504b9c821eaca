package seed

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/MBkkt/TaskManager/internal/domain"
	"github.com/MBkkt/TaskManager/internal/repository"
)

type demoUser struct {
	login     string
	email     string
	firstName string
	lastName  string
	role      domain.Role
}

type demoTask struct {
	title       string
	description string
	author      string
	performers  []string
}

var demoUsers = []demoUser{
	{"zhangwei", "zhangwei@example.com", "伟", "张", domain.RoleAdmin},
	{"liqiang", "liqiang@example.com", "强", "李", domain.RoleWorker},
	{"wangfang", "wangfang@example.com", "芳", "王", domain.RoleWorker},
	{"liujing", "liujing@example.com", "静", "刘", domain.RoleWorker},
	{"chenmin", "chenmin@example.com", "敏", "陈", domain.RoleAdmin},
}

var demoTasks = []demoTask{
	{"搭建开发环境", "为新成员准备统一的开发环境", "zhangwei", []string{"liqiang", "wangfang"}},
	{"整理需求文档", "把上次评审的结论整理进需求文档", "zhangwei", []string{"liujing"}},
	{"修复登录页样式", "移动端登录页的按钮错位", "chenmin", []string{"wangfang"}},
	{"编写接口文档", "给批量 API 补充使用示例", "chenmin", []string{"liqiang", "liujing"}},
}

// SeedDemoData 插入一组固定的演示用户和任务，方便本地联调
func SeedDemoData(repo *repository.Repository, password string) {
	users := make(map[string]*domain.User, len(demoUsers))

	for _, du := range demoUsers {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("无法生成密码哈希", slog.String("error", err.Error()))
			return
		}

		user := &domain.User{
			Login:        du.login,
			Email:        du.email,
			FirstName:    du.firstName,
			LastName:     du.lastName,
			Role:         du.role,
			PasswordHash: string(passwordHash),
		}

		if err := repo.CreateUser(user); err != nil {
			slog.Error("无法插入演示用户", slog.String("login", du.login), slog.String("error", err.Error()))
			continue
		}

		users[du.login] = user
	}

	slog.Info("插入演示用户完成", slog.Int("count", len(users)))

	cnt := 0
	for _, dt := range demoTasks {
		author, exists := users[dt.author]
		if !exists {
			slog.Error("演示任务的作者不存在", slog.String("title", dt.title), slog.String("author", dt.author))
			continue
		}

		performerIDs := make([]int64, 0, len(dt.performers))
		for _, login := range dt.performers {
			performer, exists := users[login]
			if !exists {
				continue
			}
			performerIDs = append(performerIDs, performer.ID)
		}

		task := &domain.Task{
			Title:       dt.title,
			Description: dt.description,
			AuthorID:    author.ID,
		}

		if err := repo.CreateTask(task, performerIDs); err != nil {
			slog.Error("无法插入演示任务", slog.String("title", dt.title), slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	slog.Info("插入演示任务完成", slog.Int("count", cnt))
}
