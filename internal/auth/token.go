package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength はHS256署名鍵の最小バイト長（256bit）。
const MinSecretLength = 32

// トークン検証の失敗理由
var (
	// ErrInvalidSignature は署名不一致（改ざん、鍵の変更、想定外のアルゴリズム）を示す。
	ErrInvalidSignature = errors.New("token signature is invalid")
	// ErrTokenExpired は署名は正しいが有効期限を過ぎていることを示す。
	ErrTokenExpired = errors.New("token is expired")
	// ErrMalformedToken は形式不正または必須クレームの欠落を示す。
	ErrMalformedToken = errors.New("token is malformed")
)

// Claims はトークンから取り出した検証済みのクレーム。
type Claims struct {
	UserID    string
	Email     string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ClaimsInput はトークン発行時に埋め込むユーザー属性。
type ClaimsInput struct {
	UserID   string
	Email    string
	Username string
}

// tokenClaims はJWTペイロードのワイヤ表現。subにユーザーIDを格納する。
type tokenClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec はHS256署名付きJWTの発行と検証を行う。
// 署名鍵は生成後に変更しない。
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenCodecOption はTokenCodecの生成オプション。
type TokenCodecOption func(*TokenCodec)

// WithClock は発行と検証に使う現在時刻の取得関数を差し替える。
func WithClock(now func() time.Time) TokenCodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec はTokenCodecを生成する。
// ttlに負の値を与えると発行時点で失効したトークンになる。
func NewTokenCodec(secret []byte, ttl time.Duration, opts ...TokenCodecOption) (*TokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", MinSecretLength)
	}

	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)

	return c, nil
}

// TTL はトークンの有効期間を返す。
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Encode はクレームに発行時刻と有効期限を付与して署名する。
func (c *TokenCodec) Encode(in ClaimsInput) (string, *Claims, error) {
	now := c.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(c.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		Email:    in.Email,
		Username: in.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.UserID,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, &Claims{
		UserID:    in.UserID,
		Email:     in.Email,
		Username:  in.Username,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}

// Decode は署名を検証してからクレームを返す。
// 署名検証に失敗したトークンのクレームは有効期限を含め一切参照しない。
func (c *TokenCodec) Decode(raw string) (*Claims, error) {
	// 末尾の余剰ビットだけを書き換えた署名も改ざんとして扱う
	if parts := strings.Split(raw, "."); len(parts) == 3 {
		if _, err := base64.RawURLEncoding.Strict().DecodeString(parts[2]); err != nil {
			return nil, ErrInvalidSignature
		}
	}

	var tc tokenClaims
	_, err := c.parser.ParseWithClaims(raw, &tc, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	if tc.Subject == "" || tc.Email == "" || tc.Username == "" || tc.IssuedAt == nil || tc.ExpiresAt == nil {
		return nil, ErrMalformedToken
	}

	return &Claims{
		UserID:    tc.Subject,
		Email:     tc.Email,
		Username:  tc.Username,
		IssuedAt:  tc.IssuedAt.Time,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}

// classifyParseError はjwtライブラリのエラーを検証失敗理由に変換する。
// jwt/v5は署名検証後にのみクレーム検証を行うため、期限切れは署名が正しい場合に限られる。
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrMalformedToken
	}
}
