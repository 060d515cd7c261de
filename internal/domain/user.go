package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole разбирает роль. Пустая строка означает роль по умолчанию (customer).
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleCustomer, true
	case RoleCustomer, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// HasRole - проверка прав: разрешена ли операция с набором required для роли actual.
func HasRole(required []Role, actual Role) bool {
	return slices.Contains(required, actual)
}

// User описывает учётную запись покупателя или администратора
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

func NewUser(username string, passwordHash string, role Role) *User {
	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}
}

// Principal - аутентифицированный субъект запроса. Определяется один раз на границе (HTTP)
// и явно передаётся в каждый use case.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return HasRole([]Role{RoleAdmin}, p.Role)
}

// CanAccess сообщает, может ли субъект читать ресурс пользователя ownerID.
func (p Principal) CanAccess(ownerID uuid.UUID) bool {
	return p.UserID == ownerID || p.IsAdmin()
}
