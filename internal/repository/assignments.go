package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MBkkt/TaskManager/internal/domain"
)

// diffPerformerIDs 计算把 current 调整成 desired 需要增加和移除哪些用户
func diffPerformerIDs(current, desired []int64) (added, removed []int64) {
	currentSet := make(map[int64]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	desiredSet := make(map[int64]bool, len(desired))
	for _, id := range desired {
		desiredSet[id] = true
	}

	for _, id := range desired {
		if !currentSet[id] {
			added = append(added, id)
			currentSet[id] = true // desired 中可能含有重复的 ID
		}
	}
	for _, id := range current {
		if !desiredSet[id] {
			removed = append(removed, id)
		}
	}

	return added, removed
}

// reconcileTaskPerformers 把任务的参与者集合调整成 desired。
// 先校验 desired 中的所有用户都存在再开始改动，避免出现改到一半的情况
func (r *Repository) reconcileTaskPerformers(ctx context.Context, tx *sql.Tx, taskID int64, desired []int64) (added []int64, err error) {
	for _, id := range desired {
		var exists bool
		query := `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
		if err := tx.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("用户 %d 不存在: %w", id, sql.ErrNoRows)
		}
	}

	query := `SELECT user_id FROM users_tasks WHERE task_id = $1`
	rows, err := tx.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	current := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		current = append(current, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	added, removed := diffPerformerIDs(current, desired)

	for _, id := range added {
		query := `INSERT INTO users_tasks (user_id, task_id) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, query, id, taskID); err != nil {
			return nil, err
		}
	}
	for _, id := range removed {
		query := `DELETE FROM users_tasks WHERE user_id = $1 AND task_id = $2`
		if _, err := tx.ExecContext(ctx, query, id, taskID); err != nil {
			return nil, err
		}
	}

	return added, nil
}

// GetTasksByPerformer 返回用户参与的任务，不包含其发布但未参与的任务
func (r *Repository) GetTasksByPerformer(userID int64) ([]*domain.Task, error) {
	query := taskSelectQuery + `
		WHERE t.id IN (SELECT task_id FROM users_tasks WHERE user_id = $1)
		ORDER BY t.id, u.id
	`
	return r.getTasks(query, userID)
}
