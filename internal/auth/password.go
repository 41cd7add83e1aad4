package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost は本番環境で使用するbcryptのコスト。
const DefaultBcryptCost = 12

// dummyPassword は存在しないユーザーのログイン時に比較する固定値。
const dummyPassword = "todoman-dummy-password"

// PasswordHasher はパスワードの一方向ハッシュと照合のインターフェース。
type PasswordHasher interface {
	// Hash はランダムなソルト付きでハッシュ化する。同じ入力でも毎回異なる値を返す。
	Hash(plaintext string) (string, error)
	// Verify は平文とハッシュを照合する。不正な形式のハッシュにはfalseを返す。
	Verify(plaintext, hash string) bool
	// VerifyDummy は照合対象のユーザーがいない場合に同等の計算時間を消費する。
	VerifyDummy(plaintext string)
}

// BcryptHasher はbcryptを使用したPasswordHasherの実装。
type BcryptHasher struct {
	cost      int
	dummyHash []byte
}

// NewBcryptHasher は指定コストのBcryptHasherを生成する。
// ダミーハッシュは同じコストで生成し、照合時間を揃える。
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &BcryptHasher{cost: cost, dummyHash: dummy}, nil
}

// Hash はパスワードをbcryptでハッシュ化する。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify はハッシュに埋め込まれたソルトで再計算し、定数時間で比較する。
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// VerifyDummy はダミーハッシュとの比較を行い、結果を捨てる。
func (h *BcryptHasher) VerifyDummy(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(plaintext))
}

var _ PasswordHasher = (*BcryptHasher)(nil)
