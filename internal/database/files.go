package database

import (
	"database/sql"
	"errors"
	"fmt"

	"renovaflow-backend/internal/models"
)

func (s *Store) CreateProjectFile(f *models.ProjectFile) error {
	_, err := s.db.Exec(`
		INSERT INTO project_files (id, project_id, name, url)
		VALUES (?, ?, ?, ?)
	`, f.ID, f.ProjectID, f.Name, f.URL)
	if err != nil {
		return fmt.Errorf("failed to create project file: %w", err)
	}
	return nil
}

func (s *Store) GetProjectFile(id string) (*models.ProjectFile, error) {
	var f models.ProjectFile
	err := s.db.QueryRow(`
		SELECT id, project_id, name, url, created_at
		FROM project_files
		WHERE id = ?
	`, id).Scan(&f.ID, &f.ProjectID, &f.Name, &f.URL, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project file: %w", err)
	}
	return &f, nil
}

func (s *Store) DeleteProjectFile(id string) error {
	res, err := s.db.Exec(`DELETE FROM project_files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project file: %w", err)
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

func (s *Store) listProjectFiles(projectID string) ([]models.ProjectFile, error) {
	rows, err := s.db.Query(`
		SELECT id, project_id, name, url, created_at
		FROM project_files
		WHERE project_id = ?
		ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}
	defer rows.Close()

	files := make([]models.ProjectFile, 0)
	for rows.Next() {
		var f models.ProjectFile
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.Name, &f.URL, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
