package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/DRSN-tech/storefront-backend/internal/domain"
	"github.com/DRSN-tech/storefront-backend/pkg/e"
	"github.com/DRSN-tech/storefront-backend/pkg/logger"
)

// AuthUseCase регистрирует пользователей и выдаёт токены доступа.
type AuthUseCase struct {
	userRepo UserRepository
	hasher   PasswordHasher
	tokens   TokenManager
	logger   logger.Logger
}

func NewAuthUC(userRepo UserRepository, hasher PasswordHasher, tokens TokenManager, logger logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register создаёт покупателя. Администраторы заводятся только через EnsureAdmin.
func (a *AuthUseCase) Register(ctx context.Context, req *RegisterReq) (*domain.User, error) {
	const op = "AuthUseCase.Register"

	user, err := a.createUser(ctx, req.Username, req.Password, domain.RoleCustomer)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("user registered. user_id: %s", user.ID)
	return user, nil
}

// Login проверяет пароль и выдаёт JWT. Неизвестный логин и неверный пароль неразличимы для клиента.
func (a *AuthUseCase) Login(ctx context.Context, req *LoginReq) (*LoginRes, error) {
	const op = "AuthUseCase.Login"

	user, err := a.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Wrap(op, err)
	}

	if err := a.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	token, expiresAt, err := a.tokens.Issue(domain.Principal{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &LoginRes{Token: token, ExpiresAt: expiresAt}, nil
}

// Authenticate превращает bearer-токен в субъект запроса.
func (a *AuthUseCase) Authenticate(_ context.Context, token string) (domain.Principal, error) {
	const op = "AuthUseCase.Authenticate"

	principal, err := a.tokens.Parse(token)
	if err != nil {
		return domain.Principal{}, e.Wrap(op, e.ErrUnauthorized)
	}

	return principal, nil
}

// EnsureAdmin создаёт учётную запись администратора при старте, если её ещё нет.
func (a *AuthUseCase) EnsureAdmin(ctx context.Context, username string, password string) error {
	const op = "AuthUseCase.EnsureAdmin"

	if strings.TrimSpace(username) == "" {
		return nil
	}

	_, err := a.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		return nil
	}
	if !errors.Is(err, e.ErrUserNotFound) {
		return e.Wrap(op, err)
	}

	user, err := a.createUser(ctx, username, password, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, e.ErrUserAlreadyExists) {
			return nil
		}
		return e.Wrap(op, err)
	}

	a.logger.Infof("admin account created. user_id: %s", user.ID)
	return nil
}

func (a *AuthUseCase) createUser(ctx context.Context, username string, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, e.ErrMissingFields
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	return a.userRepo.Create(ctx, domain.NewUser(username, hash, role))
}
