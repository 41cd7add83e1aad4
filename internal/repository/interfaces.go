// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/todoman/internal/model"
)

// ストア層で検出した一意制約違反。
// アプリケーション側の事前チェックをすり抜けた同時登録もここで検出される。
var (
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスを大文字小文字を区別せずに検索する。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByUsername はユーザー名を完全一致で検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	// 一意制約違反時はErrDuplicateEmailまたはErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error
}

// TaskRepository はタスクデータの永続化インターフェース。
// すべての操作は所有者IDを条件に含み、他ユーザーの行には一切触れない。
type TaskRepository interface {
	// ListByOwner は所有者のタスクを作成日時の降順で返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Task, error)

	// FindByIDAndOwner はIDと所有者が一致するタスクを取得する。
	// 一致しない場合はnilを返す。
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// UpdateByIDAndOwner はタイトル、説明、完了状態、更新日時を更新する。
	// 対象が存在しない場合はfalseを返す。
	UpdateByIDAndOwner(ctx context.Context, task *model.Task) (bool, error)

	// DeleteByIDAndOwner はタスクを削除する。対象が存在しない場合はfalseを返す。
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) (bool, error)

	// ToggleByIDAndOwner は完了状態を反転し、更新後のタスクを返す。
	// 対象が存在しない場合はnilを返す。
	ToggleByIDAndOwner(ctx context.Context, id, ownerID string, now time.Time) (*model.Task, error)
}
