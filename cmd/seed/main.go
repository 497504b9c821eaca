package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/MBkkt/TaskManager/internal/config"
	"github.com/MBkkt/TaskManager/internal/domain"
	"github.com/MBkkt/TaskManager/internal/repository"
	"github.com/MBkkt/TaskManager/internal/seed"
	"github.com/MBkkt/TaskManager/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机任务, 3: 插入演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机用户", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(user); err != nil {
					slog.Error("无法插入用户", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入用户成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的任务数量")
			return
		}

		// 先获取所有用户，从管理员中随机选作者，其余的随机选作参与者
		users, err := repo.GetAllUsers()
		if err != nil {
			slog.Error("无法获取所有用户", slog.String("error", err.Error()))
			return
		}

		admins := make([]*domain.User, 0)
		for _, user := range users {
			if user.Role == domain.RoleAdmin {
				admins = append(admins, user)
			}
		}
		if len(admins) == 0 {
			slog.Error("数据库中没有管理员，无法生成任务")
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			author := admins[rand.Intn(len(admins))]
			task := utils.GenerateRandomTask(author.ID)

			performerIDs := make([]int64, 0)
			for _, user := range users {
				if rand.Intn(3) == 0 {
					performerIDs = append(performerIDs, user.ID)
				}
			}

			if err := repo.CreateTask(task, performerIDs); err != nil {
				slog.Error("无法插入任务", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入任务成功", slog.Int("count", n-cnt))
	case 3:
		seed.SeedDemoData(repo, cfg.Seed.User.Password)
	default:
		slog.Error("指定的操作非法")
	}
}
