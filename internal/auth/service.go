// Package auth はパスワード認証、JWTの発行と検証、リクエストの認可を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/todoman/internal/logger"
	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// TokenType はログインレスポンスのtoken_type。
const TokenType = "bearer"

// 認証イベントの結果ラベル
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder は認証イベントのメトリクス記録インターフェース。
type Recorder interface {
	RecordRegistration(outcome string)
	RecordLogin(outcome string)
	RecordTokenRejected(reason string)
}

type noopRecorder struct{}

func (noopRecorder) RecordRegistration(string)  {}
func (noopRecorder) RecordLogin(string)         {}
func (noopRecorder) RecordTokenRejected(string) {}

// RegisterInput はユーザー登録の入力値。
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// LoginInput はログインの入力値。
type LoginInput struct {
	Email    string
	Password string
}

// ClientInfo はセキュリティログに記録する呼び出し元情報。
type ClientInfo struct {
	IP        string
	UserAgent string
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int64 // 秒
	User        *model.User
}

// Service はユーザー登録とログインのビジネスロジックを提供する。
type Service struct {
	users       repository.UserRepository
	hasher      PasswordHasher
	codec       *TokenCodec
	securityLog *slog.Logger
	recorder    Recorder
	now         func() time.Time
}

// ServiceOption はServiceの生成オプション。
type ServiceOption func(*Service)

// WithSecurityLogger はセキュリティログの出力先を指定する。
func WithSecurityLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.securityLog = logger.Security(l)
	}
}

// WithRecorder はメトリクス記録先を指定する。
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

// NewService はServiceを生成する。
func NewService(
	users repository.UserRepository,
	hasher PasswordHasher,
	codec *TokenCodec,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		users:       users,
		hasher:      hasher,
		codec:       codec,
		securityLog: logger.Security(nil),
		recorder:    noopRecorder{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register はユーザーを登録する。
// 検証順序: メール形式 → ユーザー名形式 → パスワード強度 → メール重複 → ユーザー名重複。
// 最初に違反した規則のエラーを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	user, err := s.register(ctx, in)
	if err != nil {
		s.recorder.RecordRegistration(OutcomeFailure)
		return nil, err
	}
	s.recorder.RecordRegistration(OutcomeSuccess)
	return user, nil
}

func (s *Service) register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.TrimSpace(in.Email)

	// 1. 形式の検証
	if !ValidEmail(email) {
		return nil, model.NewValidationError(msgInvalidEmail)
	}
	if !ValidUsername(in.Username) {
		return nil, model.NewValidationError(msgInvalidUsername)
	}
	if reasons := PasswordViolations(in.Password); len(reasons) > 0 {
		return nil, model.NewValidationError(msgWeakPassword, reasons...)
	}

	// 2. 重複の事前確認（最終的な一意性はDB制約が保証する）
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailAlreadyRegisteredError()
	}

	existing, err = s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username uniqueness: %w", err)
	}
	if existing != nil {
		return nil, model.NewUsernameTakenError()
	}

	// 3. ハッシュ化して保存
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     in.Username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, model.NewEmailAlreadyRegisteredError()
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, model.NewUsernameTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login はメールアドレスとパスワードを照合し、アクセストークンを発行する。
// 未登録ユーザーとパスワード不一致は同一のエラーを返す。
// 成否にかかわらずセキュリティログを出力する。
func (s *Service) Login(ctx context.Context, in LoginInput, client ClientInfo) (*LoginResult, error) {
	email := strings.TrimSpace(in.Email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.logLogin(ctx, email, client, OutcomeFailure, "store_error")
		s.recorder.RecordLogin(OutcomeFailure)
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	if user == nil {
		s.hasher.VerifyDummy(in.Password)
		s.logLogin(ctx, email, client, OutcomeFailure, "unknown_email")
		s.recorder.RecordLogin(OutcomeFailure)
		return nil, model.NewInvalidCredentialsError()
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.logLogin(ctx, email, client, OutcomeFailure, "wrong_password")
		s.recorder.RecordLogin(OutcomeFailure)
		return nil, model.NewInvalidCredentialsError()
	}

	token, claims, err := s.codec.Encode(ClaimsInput{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		s.logLogin(ctx, email, client, OutcomeFailure, "token_error")
		s.recorder.RecordLogin(OutcomeFailure)
		return nil, err
	}

	s.logLogin(ctx, email, client, OutcomeSuccess, "")
	s.recorder.RecordLogin(OutcomeSuccess)

	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresIn:   int64(claims.ExpiresAt.Sub(claims.IssuedAt) / time.Second),
		User:        user,
	}, nil
}

// Logout はログアウトを記録する。
// トークンはサーバー側に保存していないため、破棄はクライアント側で行う。
func (s *Service) Logout(ctx context.Context, identity *model.Identity, client ClientInfo) {
	s.securityLog.LogAttrs(ctx, slog.LevelInfo, "logout",
		slog.String("security_event", "logout"),
		slog.String("user_id", identity.UserID),
		slog.String("client_ip", client.IP),
		slog.String("user_agent", client.UserAgent),
	)
}

// CurrentUser は認証済みユーザーの最新レコードを返す。
// ユーザーが存在しない場合はトークン不正として扱う。
func (s *Service) CurrentUser(ctx context.Context, identity *model.Identity) (*model.User, error) {
	user, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidTokenError()
	}
	return user, nil
}

func (s *Service) logLogin(ctx context.Context, email string, client ClientInfo, outcome, reason string) {
	attrs := []slog.Attr{
		slog.String("security_event", "login"),
		slog.String("email", email),
		slog.String("outcome", outcome),
		slog.String("client_ip", client.IP),
		slog.String("user_agent", client.UserAgent),
	}
	level := slog.LevelInfo
	if outcome != OutcomeSuccess {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("reason", reason))
	}
	s.securityLog.LogAttrs(ctx, level, "login attempt", attrs...)
}
