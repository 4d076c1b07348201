package model

import (
	"context"
	"database/sql"
	"time"
	"whist-server/pkg/db"

	"github.com/lib/pq"
	"github.com/synacor/argon2id"
)

const userColumns = `
users.id,
users.email,
users.nickname,
users.is_site_admin,
users.password_hash,
users.created,
users.updated`

// ErrInvalidEmailOrPassword is an error for an invalid email or password
var ErrInvalidEmailOrPassword = UserError("invalid email address and/or password")

// User is a record in the `users` table
// A user keeps the scores of the games they create
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"-"`
	Nickname     string `json:"nickname"`
	IsSiteAdmin  bool   `json:"isSiteAdmin"`
	passwordHash string
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

func getUserByRow(row db.Scanner) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Email, &user.Nickname, &user.IsSiteAdmin, &user.passwordHash, &user.Created, &user.Updated); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByID returns user based on the ID
func GetUserByID(ctx context.Context, id int64) (*User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1`

	row := db.Instance().QueryRowContext(ctx, query, id)
	return getUserByRow(row)
}

// GetUserByEmail will return a user by the email address
func GetUserByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE LOWER(email) = LOWER($1)`

	row := db.Instance().QueryRowContext(ctx, query, email)
	return getUserByRow(row)
}

// GetUserByEmailAndPassword will return a user if the email and password are valid
func GetUserByEmailAndPassword(ctx context.Context, email, password string) (*User, error) {
	user, err := GetUserByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			// prevent timing attacks
			_ = argon2id.Compare("", "")
			return nil, ErrInvalidEmailOrPassword
		}

		return nil, err
	}

	if err := user.ValidatePassword(password); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUsersWithSearch returns users whose email or nickname contains search
func GetUsersWithSearch(ctx context.Context, search string, offset int64, limit int) ([]*User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE $1 = '' OR email ILIKE '%' || $1 || '%' OR nickname ILIKE '%' || $1 || '%'
ORDER BY id
OFFSET $2
LIMIT $3`

	rows, err := db.Instance().QueryContext(ctx, query, search, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*User, 0, limit)
	for rows.Next() {
		user, err := getUserByRow(rows)
		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	return users, rows.Err()
}

// ValidatePassword will validate a user's password
// Returns nil if the password is valid
func (u *User) ValidatePassword(password string) error {
	if err := argon2id.Compare(u.passwordHash, password); err != nil {
		return ErrInvalidEmailOrPassword
	}

	return nil
}

// LastUserCreatedAt returns the last time a user was created by the remote address
// If a user hasn't been created yet, this will return a nil error and a time.Time{} object (i.e., zero)
func LastUserCreatedAt(ctx context.Context, remoteAddr string) (time.Time, error) {
	const query = `
SELECT MAX(created)
FROM users
WHERE remote_addr = $1`

	var created sql.NullTime
	if err := db.Instance().QueryRowContext(ctx, query, remoteAddr).Scan(&created); err != nil {
		return time.Time{}, err
	}

	return created.Time, nil
}

// CreateUser creates a new user
func CreateUser(ctx context.Context, email, nickname, password, remoteAddr string) (*User, error) {
	hashPassword, err := argon2id.DefaultHashPassword(password)
	if err != nil {
		return nil, err
	}

	const query = `
INSERT INTO users (email, nickname, password_hash, remote_addr)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

	row := db.Instance().QueryRowContext(ctx, query, email, nickname, hashPassword, remoteAddr)
	user, err := getUserByRow(row)
	if err != nil {
		if _, ok := duplicateKeyConstraint(err); ok {
			return nil, ErrDuplicateKey
		}

		return nil, err
	}

	return user, nil
}

// Save will persist any changes made to the user to the database
func (u *User) Save(ctx context.Context) error {
	const query = `
UPDATE users
SET email = $1,
    password_hash = $2,
    nickname = $3,
    is_site_admin = $4,
    updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $5`

	_, err := db.Instance().ExecContext(ctx, query, u.Email, u.passwordHash, u.Nickname, u.IsSiteAdmin, u.ID)
	if _, ok := duplicateKeyConstraint(err); ok {
		return ErrDuplicateKey
	}

	return err
}

// SetPassword will set a new password on the user instance
// Important: you must call Save() to persist this change
func (u *User) SetPassword(password string) error {
	newHash, err := argon2id.DefaultHashPassword(password)
	if err != nil {
		return err
	}

	u.passwordHash = newHash
	return nil
}

// SetIsSiteAdmin sets whether the user is a site admin
func (u *User) SetIsSiteAdmin(ctx context.Context, isSiteAdmin bool) error {
	if u.IsSiteAdmin == isSiteAdmin {
		return nil
	}

	u.IsSiteAdmin = isSiteAdmin
	return u.Save(ctx)
}

// AddPlayers remembers the player names the user has played with
func AddPlayers(ctx context.Context, userID int64, names []string) error {
	const query = `
INSERT INTO user_players (user_id, name)
SELECT $1, UNNEST($2::TEXT[])
ON CONFLICT DO NOTHING`

	_, err := db.Instance().ExecContext(ctx, query, userID, pq.Array(names))
	return err
}

// GetPlayers returns the player names the user has played with
func GetPlayers(ctx context.Context, userID int64) ([]string, error) {
	const query = `
SELECT COALESCE(ARRAY_AGG(name ORDER BY name), '{}')
FROM user_players
WHERE user_id = $1`

	var names []string
	if err := db.Instance().QueryRowContext(ctx, query, userID).Scan(pq.Array(&names)); err != nil {
		return nil, err
	}

	return names, nil
}

// Players returns the player names the user has played with
func (u *User) Players(ctx context.Context) ([]string, error) {
	return GetPlayers(ctx, u.ID)
}
