package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/MBkkt/TaskManager/internal/domain"
)

// CreateTask 创建任务并在同一个事务中写入参与者关系。
// 任何一个参与者不存在时整个事务回滚
func (r *Repository) CreateTask(task *domain.Task, performerIDs []int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO tasks (title, description, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, status, started
	`
	args := []any{task.Title, task.Description, task.AuthorID}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&task.ID, &task.Status, &task.Started); err != nil {
		return err
	}

	if _, err := r.reconcileTaskPerformers(ctx, tx, task.ID, performerIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTaskByID(id int64) (*domain.Task, error) {
	query := taskSelectQuery + ` WHERE t.id = $1 ORDER BY u.id`
	return r.getTask(query, id)
}

func (r *Repository) GetTaskByTitle(title string) (*domain.Task, error) {
	query := taskSelectQuery + ` WHERE t.title = $1 ORDER BY u.id`
	return r.getTask(query, title)
}

const taskSelectQuery = `
	SELECT
		t.id,
		t.title,
		t.description,
		t.author_id,
		t.status,
		t.started,
		t.finished,
		u.id,
		u.login,
		u.email,
		u.first_name,
		u.last_name,
		u.role,
		u.created_at
	FROM tasks t
	LEFT JOIN users_tasks ut ON ut.task_id = t.id
	LEFT JOIN users u ON u.id = ut.user_id
`

func (r *Repository) getTask(query string, arg any) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var task *domain.Task

	for rows.Next() {
		t, performer, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}

		if task == nil {
			task = t
		}
		if performer != nil {
			task.Performers = append(task.Performers, *performer)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if task == nil {
		return nil, sql.ErrNoRows
	}

	return task, nil
}

func (r *Repository) GetTasksByAuthor(authorID int64) ([]*domain.Task, error) {
	query := taskSelectQuery + ` WHERE t.author_id = $1 ORDER BY t.id, u.id`
	return r.getTasks(query, authorID)
}

func (r *Repository) getTasks(query string, arg any) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasksMap := make(map[int64]*domain.Task)
	tasks := make([]*domain.Task, 0)

	for rows.Next() {
		t, performer, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}

		task, exists := tasksMap[t.ID]
		if !exists {
			// 第一次查到这个任务，需要初始化
			task = t
			tasksMap[t.ID] = task
			tasks = append(tasks, task)
		}

		if performer != nil {
			task.Performers = append(task.Performers, *performer)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// scanTaskRow 解析任务和参与者的 LEFT JOIN 结果，没有参与者时 performer 为 nil
func scanTaskRow(rows *sql.Rows) (*domain.Task, *domain.User, error) {
	task := &domain.Task{
		Performers: make([]domain.User, 0),
	}

	var row struct {
		userID    sql.NullInt64
		login     sql.NullString
		email     sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
		role      sql.NullInt32
		createdAt sql.NullTime
	}

	dst := []any{
		&task.ID,
		&task.Title,
		&task.Description,
		&task.AuthorID,
		&task.Status,
		&task.Started,
		&task.Finished,
		&row.userID,
		&row.login,
		&row.email,
		&row.firstName,
		&row.lastName,
		&row.role,
		&row.createdAt,
	}
	if err := rows.Scan(dst...); err != nil {
		return nil, nil, err
	}

	if !row.userID.Valid {
		return task, nil, nil
	}

	performer := &domain.User{
		ID:        row.userID.Int64,
		Login:     row.login.String,
		Email:     row.email.String,
		FirstName: row.firstName.String,
		LastName:  row.lastName.String,
		Role:      domain.Role(row.role.Int32),
		CreatedAt: row.createdAt.Time,
	}

	return task, performer, nil
}

// UpdateTask 更新任务字段，performerIDs 不为 nil 时在同一个事务中调整参与者集合，
// 返回新加入的参与者 ID。author_id 在创建后不可变，这里不会更新它
func (r *Repository) UpdateTask(task *domain.Task, performerIDs []int64) ([]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE tasks
		SET
			title = $1,
			description = $2,
			status = $3,
			finished = $4
		WHERE id = $5
	`
	args := []any{task.Title, task.Description, task.Status, task.Finished, task.ID}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, sql.ErrNoRows
	}

	var added []int64
	if performerIDs != nil {
		if added, err = r.reconcileTaskPerformers(ctx, tx, task.ID, performerIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return added, nil
}

// UpdateTaskStatus 只更新状态和完成时间，不碰标题、描述和参与者
func (r *Repository) UpdateTaskStatus(task *domain.Task) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE tasks
		SET status = $1, finished = $2
		WHERE id = $3
	`
	res, err := r.dbpool.ExecContext(ctx, query, task.Status, task.Finished, task.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *Repository) DeleteTask(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `DELETE FROM users_tasks WHERE task_id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	query = `DELETE FROM tasks WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
