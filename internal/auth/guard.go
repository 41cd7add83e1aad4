package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hitoshi/todoman/internal/model"
	"github.com/hitoshi/todoman/internal/repository"
)

// トークン拒否理由のメトリクスラベル
const (
	RejectMissing   = "missing"
	RejectSignature = "signature"
	RejectMalformed = "malformed"
	RejectExpired   = "expired"
	RejectNoUser    = "unknown_user"
)

const bearerScheme = "bearer"

// UserFinder はユーザーの存在確認に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

var _ UserFinder = (repository.UserRepository)(nil)

// Guard はBearerトークンを検証し、呼び出し元のIdentityを解決する。
// 副作用はユーザー存在確認のクエリのみで、冪等に動作する。
type Guard struct {
	codec    *TokenCodec
	users    UserFinder
	recorder Recorder
}

// NewGuard はGuardを生成する。recorderがnilの場合は記録しない。
func NewGuard(codec *TokenCodec, users UserFinder, recorder Recorder) *Guard {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	return &Guard{
		codec:    codec,
		users:    users,
		recorder: recorder,
	}
}

// ExtractBearerToken はAuthorizationヘッダーからトークン部分を取り出す。
// スキーム名は大文字小文字を区別しない。
func ExtractBearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// Authenticate はAuthorizationヘッダーの値を検証し、Identityを返す。
// 失敗時は *model.APIError（MISSING_TOKEN, INVALID_TOKEN, SESSION_EXPIRED）を返す。
// ストアの障害はそれ以外のエラーとして返す。
func (g *Guard) Authenticate(ctx context.Context, authorizationHeader string) (*model.Identity, error) {
	// 1. Bearerトークンの取り出し
	raw, ok := ExtractBearerToken(authorizationHeader)
	if !ok {
		g.recorder.RecordTokenRejected(RejectMissing)
		return nil, model.NewMissingTokenError()
	}

	// 2. 署名と有効期限の検証
	claims, err := g.codec.Decode(raw)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenExpired):
			g.recorder.RecordTokenRejected(RejectExpired)
			return nil, model.NewSessionExpiredError()
		case errors.Is(err, ErrInvalidSignature):
			g.recorder.RecordTokenRejected(RejectSignature)
		default:
			g.recorder.RecordTokenRejected(RejectMalformed)
		}
		return nil, model.NewInvalidTokenError()
	}

	// 3. ユーザーの存在確認（クレームの値だけを信用しない）
	user, err := g.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	if user == nil {
		g.recorder.RecordTokenRejected(RejectNoUser)
		return nil, model.NewInvalidTokenError()
	}

	return model.IdentityFromUser(user), nil
}
