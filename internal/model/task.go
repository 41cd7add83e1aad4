package model

import "time"

// Task はユーザーが所有するタスクを表す。
// UserIDは作成時に認証済みユーザーから設定され、以後変更されない。
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description *string
	Completed   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// タスク入力値の上限
const (
	TaskTitleMaxLength       = 200
	TaskDescriptionMaxLength = 2000
)
