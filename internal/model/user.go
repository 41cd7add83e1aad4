// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはいかなるレスポンスにも含めない。
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity は認証済みリクエストの呼び出し元を表す。
// トークン検証とユーザー存在確認を通過した場合にのみ生成される。
type Identity struct {
	UserID   string
	Email    string
	Username string
}

// IdentityFromUser は保存済みユーザーからIdentityを生成する。
func IdentityFromUser(u *User) *Identity {
	return &Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
	}
}
