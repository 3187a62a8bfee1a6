package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrUserNotFound is returned when a lookup matches no user
var ErrUserNotFound = errors.New("user not found")

// User represents an account in the profile store. Premium is the
// server-trusted subscription flag; it is never taken from request input.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Name             string    `json:"name"`
	Premium          bool      `json:"premium"`
	StripeCustomerID *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Users handles user database operations
type Users struct {
	db *DB
}

// NewUsers creates a user repository
func NewUsers(db *DB) *Users {
	return &Users{db: db}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Premium,
		&u.StripeCustomerID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. IDs are minted application-side so they are
// known before the insert round-trips.
func (r *Users) Create(ctx context.Context, email, passwordHash, name string) (*User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx, queryCreateUser, uuid.NewString(), email, passwordHash, name))
}

// FindByEmail finds a user by email
func (r *Users) FindByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx, queryFindUserByEmail, email))
}

// FindByID finds a user by id
func (r *Users) FindByID(ctx context.Context, userID string) (*User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx, queryFindUserByID, userID))
}

// FindByStripeCustomer finds a user by their Stripe customer id
func (r *Users) FindByStripeCustomer(ctx context.Context, customerID string) (*User, error) {
	return scanUser(r.db.Pool.QueryRow(ctx, queryFindUserByStripeCustomer, customerID))
}

// ExistsByEmail reports whether a user with the email exists
func (r *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, queryUserExistsByEmail, email).Scan(&exists)
	return exists, err
}

// IsPremium reports the persisted premium flag for a user
func (r *Users) IsPremium(ctx context.Context, userID string) (bool, error) {
	var premium bool
	err := r.db.Pool.QueryRow(ctx, queryUserPremium, userID).Scan(&premium)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed reading premium flag: %w", err)
	}
	return premium, nil
}

// SetPremium updates the premium flag for a user
func (r *Users) SetPremium(ctx context.Context, userID string, premium bool) error {
	tag, err := r.db.Pool.Exec(ctx, querySetPremium, premium, userID)
	if err != nil {
		return fmt.Errorf("failed updating premium flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetStripeCustomerID stores the Stripe customer id for a user
func (r *Users) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	_, err := r.db.Pool.Exec(ctx, querySetStripeCustomerID, customerID, userID)
	return err
}
