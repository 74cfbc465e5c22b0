package service

import (
	"context"
	"net/mail"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/domain"
	"storefront/internal/repository"
)

// RegisterInput данные регистрации
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Age       int
	Password  string
}

// UserUpdate частичное обновление; пароль этим путём не меняется
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Age       *int
	Role      *domain.Role
}

// UserService регистрация, вход и администрирование пользователей
type UserService struct {
	users  repository.UserRepository
	carts  repository.CartRepository
	tx     repository.TxManager
	tokens *auth.TokenManager
}

func NewUserService(users repository.UserRepository, carts repository.CartRepository, tx repository.TxManager, tokens *auth.TokenManager) *UserService {
	return &UserService{users: users, carts: carts, tx: tx, tokens: tokens}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", domain.InvalidArgument("email", "required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", domain.InvalidArgument("email", "malformed")
	}
	return email, nil
}

// Register создаёт пустую корзину, затем пользователя, затем передаёт ему корзину
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	return s.register(ctx, in, domain.RoleUser)
}

func (s *UserService) register(ctx context.Context, in RegisterInput, role domain.Role) (*domain.User, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" || in.Password == "" || in.Age <= 0 {
		return nil, domain.InvalidArgument("registration", "missing fields")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return domain.Conflict(domain.ResourceUser, "user already exists")
		} else if domain.KindOf(err) != domain.KindNotFound {
			return domain.Storage("get user", err)
		}
		cart := domain.Cart{}
		if err := s.carts.Create(ctx, &cart); err != nil {
			return domain.Storage("create cart", err)
		}
		u := &domain.User{
			FirstName:    strings.TrimSpace(in.FirstName),
			LastName:     strings.TrimSpace(in.LastName),
			Email:        email,
			Age:          in.Age,
			PasswordHash: hash,
			CartID:       cart.ID,
			Role:         role,
		}
		if err := s.users.Create(ctx, u); err != nil {
			return domain.Storage("create user", err)
		}
		if err := s.carts.SetOwner(ctx, cart.ID, u.ID); err != nil {
			return domain.Storage("assign cart owner", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin создаёт администратора, если пользователя с таким email ещё нет
func (s *UserService) EnsureAdmin(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if u, err := s.users.GetByEmail(ctx, email); err == nil {
		if u.Role != domain.RoleAdmin {
			u.Role = domain.RoleAdmin
			if err := s.users.Update(ctx, u); err != nil {
				return nil, domain.Storage("update user", err)
			}
		}
		return u, nil
	}
	return s.register(ctx, in, domain.RoleAdmin)
}

// Login проверяет пароль и выпускает токен
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return "", nil, domain.Unauthorized("invalid credentials")
		}
		return "", nil, domain.Storage("get user", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, domain.Unauthorized("invalid credentials")
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Authenticate разбирает токен и загружает пользователя
func (s *UserService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, domain.Unauthorized(err.Error())
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, domain.Unauthorized("user no longer exists")
		}
		return nil, domain.Storage("get user", err)
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Storage("get user", err)
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.Storage("list users", err)
	}
	return users, nil
}

func (s *UserService) Update(ctx context.Context, id string, upd UserUpdate) (*domain.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		u.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		u.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return nil, err
		}
		u.Email = email
	}
	if upd.Age != nil {
		if *upd.Age <= 0 {
			return nil, domain.InvalidArgument("age", "must be positive")
		}
		u.Age = *upd.Age
	}
	if upd.Role != nil {
		if *upd.Role != domain.RoleUser && *upd.Role != domain.RoleAdmin {
			return nil, domain.InvalidArgument("role", "unknown value "+string(*upd.Role))
		}
		u.Role = *upd.Role
	}
	if u.FirstName == "" || u.LastName == "" {
		return nil, domain.InvalidArgument("name", "required")
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, domain.Storage("update user", err)
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return domain.Storage("delete user", s.users.Delete(ctx, id))
}
