package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"renovaflow-backend/internal/lifecycle"
	"renovaflow-backend/internal/models"
)

const projectColumns = `id, status, title, property_name, estimate_date, order_date,
	construction_start_date, completion_date, estimate_remarks, order_remarks,
	construction_remarks, billing_remarks, payment_in_remarks, payment_out_remarks,
	customer_name, customer_postal_code, customer_address, customer_phone,
	customer_email, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.Status, &p.Title, &p.PropertyName, &p.EstimateDate, &p.OrderDate,
		&p.ConstructionStartDate, &p.CompletionDate, &p.EstimateRemarks, &p.OrderRemarks,
		&p.ConstructionRemarks, &p.BillingRemarks, &p.PaymentInRemarks, &p.PaymentOutRemarks,
		&p.CustomerName, &p.CustomerPostalCode, &p.CustomerAddress, &p.CustomerPhone,
		&p.CustomerEmail, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts the project row and its child collections inside
// one transaction. Children without an identifier are assigned one before
// insertion.
func (s *Store) CreateProject(p *models.Project) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO projects (
			id, status, title, property_name, estimate_date, order_date,
			construction_start_date, completion_date, estimate_remarks, order_remarks,
			construction_remarks, billing_remarks, payment_in_remarks, payment_out_remarks,
			customer_name, customer_postal_code, customer_address, customer_phone,
			customer_email
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Status, p.Title, p.PropertyName, p.EstimateDate, p.OrderDate,
		p.ConstructionStartDate, p.CompletionDate, p.EstimateRemarks, p.OrderRemarks,
		p.ConstructionRemarks, p.BillingRemarks, p.PaymentInRemarks, p.PaymentOutRemarks,
		p.CustomerName, p.CustomerPostalCode, p.CustomerAddress, p.CustomerPhone,
		p.CustomerEmail)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert project: %w", err)
	}

	if err := s.insertChildren(tx, p.ID, p.ConstructionStaff, p.BillingItems, p.OutboundPayments); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (s *Store) GetProject(id string) (*models.Project, error) {
	row := s.db.QueryRow(`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := s.loadChildren(p); err != nil {
		return nil, err
	}

	files, err := s.listProjectFiles(p.ID)
	if err != nil {
		return nil, err
	}
	p.Files = files

	return p, nil
}

// ListProjects returns every project with its child collections inlined.
// File registry rows are only loaded on single-project fetches.
func (s *Store) ListProjects() ([]models.Project, error) {
	rows, err := s.db.Query(`SELECT ` + projectColumns + ` FROM projects ORDER BY estimate_date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range projects {
		if err := s.loadChildren(&projects[i]); err != nil {
			return nil, err
		}
	}

	return projects, nil
}

// UpdateProject performs the full-replace update: the whole project row is
// rewritten and every child collection is replaced with the supplied set,
// all inside one transaction. No partial application is observable.
func (s *Store) UpdateProject(p *models.Project) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.Exec(`
		UPDATE projects SET
			status = ?, title = ?, property_name = ?, estimate_date = ?, order_date = ?,
			construction_start_date = ?, completion_date = ?, estimate_remarks = ?,
			order_remarks = ?, construction_remarks = ?, billing_remarks = ?,
			payment_in_remarks = ?, payment_out_remarks = ?, customer_name = ?,
			customer_postal_code = ?, customer_address = ?, customer_phone = ?,
			customer_email = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Status, p.Title, p.PropertyName, p.EstimateDate, p.OrderDate,
		p.ConstructionStartDate, p.CompletionDate, p.EstimateRemarks,
		p.OrderRemarks, p.ConstructionRemarks, p.BillingRemarks,
		p.PaymentInRemarks, p.PaymentOutRemarks, p.CustomerName,
		p.CustomerPostalCode, p.CustomerAddress, p.CustomerPhone,
		p.CustomerEmail, p.ID)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update project: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if affected == 0 {
		tx.Rollback()
		return ErrNotFound
	}

	if err := s.replaceChildren(tx, p.ID, p.ConstructionStaff, p.BillingItems, p.OutboundPayments); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// PatchProjectRemarks updates any subset of the six per-phase remark
// fields. A patch with no fields set is a no-op.
func (s *Store) PatchProjectRemarks(id string, patch *models.ProjectPatchRequest) error {
	setClauses := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)

	add := func(column string, value *string) {
		if value != nil {
			setClauses = append(setClauses, column+" = ?")
			args = append(args, *value)
		}
	}
	add("estimate_remarks", patch.EstimateRemarks)
	add("order_remarks", patch.OrderRemarks)
	add("construction_remarks", patch.ConstructionRemarks)
	add("billing_remarks", patch.BillingRemarks)
	add("payment_in_remarks", patch.PaymentInRemarks)
	add("payment_out_remarks", patch.PaymentOutRemarks)

	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := s.db.Exec(
		"UPDATE projects SET "+strings.Join(setClauses, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to patch project: %w", err)
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

// DeleteProject removes the project row; foreign keys cascade to staff,
// billing items, outbound payments and file registry rows.
func (s *Store) DeleteProject(id string) error {
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
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

// ProjectStatus implements lifecycle.Store.
func (s *Store) ProjectStatus(projectID string) (lifecycle.Status, error) {
	var status lifecycle.Status
	err := s.db.QueryRow(`SELECT status FROM projects WHERE id = ?`, projectID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get project status: %w", err)
	}
	return status, nil
}

// SetProjectStatus implements lifecycle.Store.
func (s *Store) SetProjectStatus(projectID string, status lifecycle.Status) error {
	res, err := s.db.Exec(`
		UPDATE projects SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, projectID)
	if err != nil {
		return fmt.Errorf("failed to set project status: %w", err)
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
