package database

import (
	"database/sql"
	"errors"
	"fmt"

	"renovaflow-backend/internal/models"
)

func (s *Store) CreateUser(u *models.User) error {
	_, err := s.db.Exec(`
		INSERT INTO users (id, email, password, name, role, remarks, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Email, u.Password, u.Name, u.Role, u.Remarks, u.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(id string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(`
		SELECT id, email, password, name, role, remarks, is_active, created_at
		FROM users
		WHERE id = ?
	`, id).Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.Remarks, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(`
		SELECT id, email, password, name, role, remarks, is_active, created_at
		FROM users
		WHERE email = ?
	`, email).Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.Remarks, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *Store) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query(`
		SELECT id, email, password, name, role, remarks, is_active, created_at
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Role, &u.Remarks, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser rewrites the user record. An empty password leaves the stored
// one untouched.
func (s *Store) UpdateUser(u *models.User) error {
	var (
		res sql.Result
		err error
	)
	if u.Password == "" {
		res, err = s.db.Exec(`
			UPDATE users SET email = ?, name = ?, role = ?, remarks = ?, is_active = ?
			WHERE id = ?
		`, u.Email, u.Name, u.Role, u.Remarks, u.IsActive, u.ID)
	} else {
		res, err = s.db.Exec(`
			UPDATE users SET email = ?, password = ?, name = ?, role = ?, remarks = ?, is_active = ?
			WHERE id = ?
		`, u.Email, u.Password, u.Name, u.Role, u.Remarks, u.IsActive, u.ID)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(id string) error {
	res, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
