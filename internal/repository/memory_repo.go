package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/todoman/internal/model"
)

// MemoryUserRepo はプロセス内メモリに保持するユーザーリポジトリ。
// PostgreSQLの一意インデックスと同じ規則（メールは大文字小文字を区別しない）で重複を検出する。
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[string]model.User
}

// NewMemoryUserRepo はMemoryUserRepoを生成する。
func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{users: make(map[string]model.User)}
}

// FindByID は指定IDのユーザーを取得する。
func (r *MemoryUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// FindByEmail はメールアドレスを大文字小文字を区別せずに検索する。
func (r *MemoryUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

// FindByUsername はユーザー名を完全一致で検索する。
func (r *MemoryUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

// Create はユーザーを作成する。
func (r *MemoryUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
		if u.Username == user.Username {
			return ErrDuplicateUsername
		}
	}
	r.users[user.ID] = *user
	return nil
}

// MemoryTaskRepo はプロセス内メモリに保持するタスクリポジトリ。
type MemoryTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]model.Task
}

// NewMemoryTaskRepo はMemoryTaskRepoを生成する。
func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{tasks: make(map[string]model.Task)}
}

// ListByOwner は所有者のタスクを作成日時の降順で返す。
func (r *MemoryTaskRepo) ListByOwner(_ context.Context, ownerID string) ([]*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := make([]*model.Task, 0)
	for _, t := range r.tasks {
		if t.UserID == ownerID {
			tasks = append(tasks, &t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// FindByIDAndOwner はIDと所有者が一致するタスクを取得する。
func (r *MemoryTaskRepo) FindByIDAndOwner(_ context.Context, id, ownerID string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, nil
	}
	return &t, nil
}

// Create はタスクを作成する。
func (r *MemoryTaskRepo) Create(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = *task
	return nil
}

// UpdateByIDAndOwner はタイトル、説明、完了状態、更新日時を更新する。
func (r *MemoryTaskRepo) UpdateByIDAndOwner(_ context.Context, task *model.Task) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.tasks[task.ID]
	if !ok || cur.UserID != task.UserID {
		return false, nil
	}
	cur.Title = task.Title
	cur.Description = task.Description
	cur.Completed = task.Completed
	cur.UpdatedAt = task.UpdatedAt
	r.tasks[task.ID] = cur
	return true, nil
}

// DeleteByIDAndOwner はタスクを削除する。
func (r *MemoryTaskRepo) DeleteByIDAndOwner(_ context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

// ToggleByIDAndOwner は完了状態を反転し、更新後のタスクを返す。
func (r *MemoryTaskRepo) ToggleByIDAndOwner(_ context.Context, id, ownerID string, now time.Time) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, nil
	}
	t.Completed = !t.Completed
	t.UpdatedAt = now
	r.tasks[id] = t
	return &t, nil
}

var (
	_ UserRepository = (*MemoryUserRepo)(nil)
	_ TaskRepository = (*MemoryTaskRepo)(nil)
)
