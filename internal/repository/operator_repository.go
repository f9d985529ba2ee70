package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/database"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type OperatorRepository interface {
	CreateOperator(ctx context.Context, email, password, name string, roles []models.Role) (models.Operator, error)
	AuthenticateOperator(ctx context.Context, email, password string) (models.Operator, error)
	GetOperatorByEmail(ctx context.Context, email string) (models.Operator, error)
}

type operatorRepository struct {
	db *database.DB
}

func NewOperatorRepository(db *database.DB) OperatorRepository {
	return &operatorRepository{db: db}
}

func (r *operatorRepository) CreateOperator(ctx context.Context, email, password, name string, roles []models.Role) (models.Operator, error) {
	if len(roles) == 0 {
		roles = []models.Role{models.RoleStaff}
	}
	if !models.IsValidRoleList(roles) {
		return models.Operator{}, errors.New("invalid roles")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return models.Operator{}, errors.New("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Operator{}, err
	}

	op := models.Operator{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		IsActive:     true,
		Roles:        models.EnsureDefaultRole(models.NormalizeRoles(roles)),
		CreatedAt:    time.Now().UTC(),
	}

	const query = `
		INSERT INTO operators (id, email, name, password_hash, is_active, roles, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, op.ID, op.Email, op.Name, op.PasswordHash, op.IsActive, joinRoles(op.Roles), op.CreatedAt)
	if err != nil {
		return models.Operator{}, err
	}
	return op, nil
}

func (r *operatorRepository) AuthenticateOperator(ctx context.Context, email, password string) (models.Operator, error) {
	op, err := r.GetOperatorByEmail(ctx, email)
	if err != nil {
		return models.Operator{}, ErrInvalidCredentials
	}
	if !op.IsActive {
		return models.Operator{}, errors.New("operator is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return models.Operator{}, ErrInvalidCredentials
	}
	return op, nil
}

func (r *operatorRepository) GetOperatorByEmail(ctx context.Context, email string) (models.Operator, error) {
	const query = `
		SELECT id, email, name, password_hash, is_active, roles, created_at
		FROM operators
		WHERE email = ?`

	var (
		op    models.Operator
		roles string
	)
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(
		&op.ID,
		&op.Email,
		&op.Name,
		&op.PasswordHash,
		&op.IsActive,
		&roles,
		&op.CreatedAt,
	)
	if err != nil {
		return models.Operator{}, err
	}
	op.Roles = models.EnsureDefaultRole(models.NormalizeRoles(splitRoles(roles)))
	return op, nil
}
