package biz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/fx"

	"github.com/looplj/tenanthub/internal/log"
	"github.com/looplj/tenanthub/internal/objects"
	"github.com/looplj/tenanthub/internal/server/db"
)

type UserServiceParams struct {
	fx.In

	DB *db.DB
}

func NewUserService(params UserServiceParams) *UserService {
	return &UserService{
		AbstractService: &AbstractService{db: params.DB},
	}
}

// UserService manages user accounts. Users are system-scoped: accounts are
// global and join organizations through memberships.
type UserService struct {
	*AbstractService
}

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	IsOwner   bool
	Scopes    []string
}

func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*objects.User, error) {
	hashedPassword, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	if input.Scopes == nil {
		input.Scopes = []string{}
	}

	scopesJSON, err := json.Marshal(input.Scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scopes: %w", err)
	}

	if existing, err := s.GetUserByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	query := fmt.Sprintf(
		`INSERT INTO users (email, hashed_password, first_name, last_name, is_owner, scopes) VALUES (%s, %s, %s, %s, %s, %s)`,
		s.db.Ph(1), s.db.Ph(2), s.db.Ph(3), s.db.Ph(4), s.db.Ph(5), s.db.Ph(6),
	)

	id, err := s.insertReturningID(ctx, query,
		input.Email, hashedPassword, input.FirstName, input.LastName, input.IsOwner, string(scopesJSON),
	)
	if err != nil {
		log.Error(ctx, "failed to create user", log.Cause(err))
		return nil, ErrInternal
	}

	log.Info(ctx, "user created", log.Int64("user_id", id), log.String("email", input.Email))

	return s.GetUserByID(ctx, id)
}

func (s *UserService) GetUserByID(ctx context.Context, id int64) (*objects.User, error) {
	query := fmt.Sprintf(`%s WHERE id = %s`, selectUser, s.db.Ph(1))

	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*objects.User, error) {
	query := fmt.Sprintf(`%s WHERE email = %s`, selectUser, s.db.Ph(1))

	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *UserService) ListUsers(ctx context.Context) ([]*objects.User, error) {
	rows, err := s.db.QueryContext(ctx, selectUser+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*objects.User

	for rows.Next() {
		user, err := s.scanUser(rows)
		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	return users, rows.Err()
}

const selectUser = `SELECT id, email, hashed_password, first_name, last_name, is_owner, scopes, created_at FROM users`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *UserService) scanUser(row rowScanner) (*objects.User, error) {
	var (
		user       objects.User
		scopesJSON string
	)

	err := row.Scan(
		&user.ID, &user.Email, &user.HashedPassword,
		&user.FirstName, &user.LastName, &user.IsOwner,
		&scopesJSON, &user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(scopesJSON), &user.Scopes); err != nil {
		return nil, fmt.Errorf("failed to decode scopes of user %d: %w", user.ID, err)
	}

	return &user, nil
}
