package repository

import (
	"context"
	"time"

	"github.com/MBkkt/TaskManager/internal/domain"
)

func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO users (login, email, first_name, last_name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	args := []any{user.Login, user.Email, user.FirstName, user.LastName, user.Role, user.PasswordHash}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetUserByID(id int64) (*domain.User, error) {
	query := `
		SELECT login, email, first_name, last_name, role, password_hash, created_at
		FROM users WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.Login, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.PasswordHash, &user.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByLogin(login string) (*domain.User, error) {
	query := `
		SELECT id, email, first_name, last_name, role, password_hash, created_at
		FROM users WHERE login = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		Login: login,
	}

	dst := []any{&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.PasswordHash, &user.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, login).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByLoginOrEmail 同时用于登录查找和唯一性检查，identifier 既可以是登录名也可以是邮箱
func (r *Repository) GetUserByLoginOrEmail(identifier string) (*domain.User, error) {
	query := `
		SELECT id, login, email, first_name, last_name, role, password_hash, created_at
		FROM users WHERE login = $1 OR email = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{}

	dst := []any{&user.ID, &user.Login, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.PasswordHash, &user.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, identifier).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetAllUsers() ([]*domain.User, error) {
	query := `
		SELECT id, login, email, first_name, last_name, role, password_hash, created_at
		FROM users ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.Login, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.PasswordHash, &user.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) UpdateUser(user *domain.User) error {
	query := `
		UPDATE users
		SET
			login = $1,
			email = $2,
			first_name = $3,
			last_name = $4,
			role = $5,
			password_hash = $6
		WHERE id = $7
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{user.Login, user.Email, user.FirstName, user.LastName, user.Role, user.PasswordHash, user.ID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt); err != nil {
		return err
	}

	return nil
}

// DeleteUser 删除用户并级联删除其发布的所有任务。
// 用户只是参与（而不是发布）的任务不受影响，只移除其参与关系
func (r *Repository) DeleteUser(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 先删掉其发布的任务的参与关系，再删任务本身
	query := `
		DELETE FROM users_tasks
		WHERE task_id IN (SELECT id FROM tasks WHERE author_id = $1)
	`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	query = `DELETE FROM tasks WHERE author_id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	query = `DELETE FROM users_tasks WHERE user_id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	query = `DELETE FROM users WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetTaskCounts 统计用户发布的和参与的任务在各个状态下的数量，用于首页看板
func (r *Repository) GetTaskCounts(userID int64) (*domain.TaskCounts, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	counts := &domain.TaskCounts{}

	query := `
		SELECT status, COUNT(*) FROM tasks
		WHERE author_id = $1
		GROUP BY status
	`
	if err := r.scanStatusCounts(ctx, query, userID, &counts.Authored); err != nil {
		return nil, err
	}

	query = `
		SELECT t.status, COUNT(*) FROM tasks t
		JOIN users_tasks ut ON ut.task_id = t.id
		WHERE ut.user_id = $1
		GROUP BY t.status
	`
	if err := r.scanStatusCounts(ctx, query, userID, &counts.Assigned); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *Repository) scanStatusCounts(ctx context.Context, query string, userID int64, counts *domain.StatusCounts) error {
	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.Status
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		counts.Add(status, n)
	}

	return rows.Err()
}
