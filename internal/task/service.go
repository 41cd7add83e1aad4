// Package task は認証済みユーザーが所有するタスクの操作を提供する。
// 全ての操作は呼び出し元の所有するタスクだけを対象とする。
package task

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
	"github.com/hitoshi/todoman/internal/security"
)

// バリデーションメッセージ
const (
	msgTitleRequired      = "Title cannot be empty or whitespace-only"
	msgTitleTooLong       = "Title must be at most 200 characters"
	msgDescriptionTooLong = "Description must be at most 2000 characters"
)

// CreateInput はタスク作成の入力値。所有者は常に呼び出し元になる。
type CreateInput struct {
	Title       string
	Description *string
	Completed   *bool // nilの場合はfalse
}

// UpdateInput はタスク更新の入力値。nilのフィールドは変更しない。
// ClearDescriptionがtrueの場合は説明をNULLにする。
type UpdateInput struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Completed        *bool
}

// Service はタスクのCRUDを所有者単位で提供する。
type Service struct {
	repo      repository.TaskRepository
	sanitizer security.TextSanitizer
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.TaskRepository, sanitizer security.TextSanitizer) *Service {
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// List は呼び出し元のタスクを作成日時の降順で返す。
func (s *Service) List(ctx context.Context, identity *model.Identity) ([]*model.Task, error) {
	tasks, err := s.repo.ListByOwner(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	return tasks, nil
}

// Get はタスクを1件返す。
// 存在しない場合と他人のタスクの場合は同じTASK_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, identity *model.Identity, id string) (*model.Task, error) {
	if !validID(id) {
		return nil, model.NewTaskNotFoundError()
	}

	t, err := s.repo.FindByIDAndOwner(ctx, id, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError()
	}
	return t, nil
}

// Create は呼び出し元を所有者としてタスクを作成する。
func (s *Service) Create(ctx context.Context, identity *model.Identity, in CreateInput) (*model.Task, error) {
	title := s.sanitizer.Sanitize(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	description, err := s.sanitizeDescription(in.Description)
	if err != nil {
		return nil, err
	}

	completed := false
	if in.Completed != nil {
		completed = *in.Completed
	}

	now := s.now().UTC()
	t := &model.Task{
		ID:          uuid.New().String(),
		UserID:      identity.UserID,
		Title:       title,
		Description: description,
		Completed:   completed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

// Update は指定されたフィールドのみを更新する。
func (s *Service) Update(ctx context.Context, identity *model.Identity, id string, in UpdateInput) (*model.Task, error) {
	// 入力の検証は対象の存在確認より先に行う
	var title *string
	if in.Title != nil {
		v := s.sanitizer.Sanitize(*in.Title)
		if err := validateTitle(v); err != nil {
			return nil, err
		}
		title = &v
	}

	var description *string
	if !in.ClearDescription && in.Description != nil {
		v, err := s.sanitizeDescription(in.Description)
		if err != nil {
			return nil, err
		}
		description = v
	}

	t, err := s.Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if title != nil {
		t.Title = *title
	}
	switch {
	case in.ClearDescription:
		t.Description = nil
	case description != nil:
		t.Description = description
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	t.UpdatedAt = s.now().UTC()

	ok, err := s.repo.UpdateByIDAndOwner(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if !ok {
		// 取得後に削除された
		return nil, model.NewTaskNotFoundError()
	}
	return t, nil
}

// Delete はタスクを削除する。
func (s *Service) Delete(ctx context.Context, identity *model.Identity, id string) error {
	if !validID(id) {
		return model.NewTaskNotFoundError()
	}

	ok, err := s.repo.DeleteByIDAndOwner(ctx, id, identity.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !ok {
		return model.NewTaskNotFoundError()
	}
	return nil
}

// Toggle は完了状態を反転する。
func (s *Service) Toggle(ctx context.Context, identity *model.Identity, id string) (*model.Task, error) {
	if !validID(id) {
		return nil, model.NewTaskNotFoundError()
	}

	t, err := s.repo.ToggleByIDAndOwner(ctx, id, identity.UserID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to toggle task: %w", err)
	}
	if t == nil {
		return nil, model.NewTaskNotFoundError()
	}
	return t, nil
}

func (s *Service) sanitizeDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	v := s.sanitizer.Sanitize(*description)
	if utf8.RuneCountInString(v) > model.TaskDescriptionMaxLength {
		return nil, model.NewValidationError(msgDescriptionTooLong)
	}
	return &v, nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return model.NewValidationError(msgTitleRequired)
	}
	if utf8.RuneCountInString(title) > model.TaskTitleMaxLength {
		return model.NewValidationError(msgTitleTooLong)
	}
	return nil
}

// validID はIDがUUID形式かを判定する。
// 不正な形式はストアに問い合わせずに存在しないものとして扱う。
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
