package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/MBkkt/TaskManager/internal/config"
	"github.com/MBkkt/TaskManager/internal/domain"
	"github.com/MBkkt/TaskManager/internal/repository"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 批量 JSON API，供非浏览器客户端使用
	h.Mux.Route("/api", func(r chi.Router) {
		r.Get("/", h.APIIndex)
		r.Post("/add_users", h.APIAddUsers)
		r.Post("/get_users", h.APIGetUsers)
		r.Post("/edit_users", h.APIEditUsers)
		r.Post("/add_tasks", h.APIAddTasks)
		r.Post("/get_tasks", h.APIGetTasks)
		r.Post("/edit_tasks", h.APIEditTasks)
	})

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Route("/reset-password", func(r chi.Router) {
			r.Post("/require", h.RequireResetPassword)
			r.Post("/confirm", h.ConfirmResetPassword)
		})
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/my-info", func(r chi.Router) {
			r.Use(h.myInfo)
			r.Get("/", h.GetMyInfo)
			r.Patch("/", h.UpdateMyInfo)
			r.Delete("/", h.DeleteMyInfo)
			r.Patch("/password", h.UpdateMyPassword)
			r.Get("/task-counts", h.GetMyTaskCounts)
		})

		// 用户列表只给管理员看，用于选择任务的参与者
		r.With(h.requireCapability(domain.CapabilityListUsers)).Get("/users", h.GetAllUserInfo)

		r.Route("/tasks", func(r chi.Router) {
			r.Use(h.myInfo)
			r.With(h.requireCapability(domain.CapabilityCreateTask)).Post("/", h.CreateTask)
			r.Get("/", h.GetMyTasks)
			r.With(h.requireCapability(domain.CapabilityViewAuthoredTasks)).Get("/authored", h.GetAuthoredTasks)
			r.Route("/{id}", func(r chi.Router) {
				r.Use(h.task)
				r.Get("/", h.GetTask)
				r.Patch("/", h.UpdateTask)
				r.Delete("/", h.DeleteTask)
				r.Patch("/status", h.UpdateTaskStatus)
			})
		})
	})
}
