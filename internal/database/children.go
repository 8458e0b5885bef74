package database

import (
	"database/sql"
	"fmt"
	"strings"

	"renovaflow-backend/internal/models"
)

// replaceChildren is the collection replacement protocol: within the
// caller's transaction, every existing child row of each kind is deleted
// and the supplied sequences are inserted in full. Child identifiers are
// preserved only when the caller echoes them back; new rows are assigned
// a fresh identifier before insertion.
func (s *Store) replaceChildren(tx *sql.Tx, projectID string,
	staff []models.ConstructionStaff, billing []models.BillingItem,
	outbound []models.OutboundPayment) error {

	for _, table := range []string{"construction_staff", "billing_items", "outbound_payments"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE project_id = ?", projectID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return s.insertChildren(tx, projectID, staff, billing, outbound)
}

// insertChildren bulk-inserts the three child collections. Creation uses it
// directly; replacement uses it after the delete step.
func (s *Store) insertChildren(tx *sql.Tx, projectID string,
	staff []models.ConstructionStaff, billing []models.BillingItem,
	outbound []models.OutboundPayment) error {

	for _, member := range staff {
		if member.ID == "" {
			member.ID = s.newID()
		}
		_, err := tx.Exec(`
			INSERT INTO construction_staff (id, project_id, name, role)
			VALUES (?, ?, ?, ?)
		`, member.ID, projectID, member.Name, member.Role)
		if err != nil {
			return fmt.Errorf("failed to insert construction staff: %w", err)
		}
	}

	for _, item := range billing {
		if item.ID == "" {
			item.ID = s.newID()
		}
		_, err := tx.Exec(`
			INSERT INTO billing_items (id, project_id, name, amount, is_billed, is_paid)
			VALUES (?, ?, ?, ?, ?, ?)
		`, item.ID, projectID, item.Name, item.Amount, item.IsBilled, item.IsPaid)
		if err != nil {
			return fmt.Errorf("failed to insert billing item: %w", err)
		}
	}

	for _, payment := range outbound {
		if payment.ID == "" {
			payment.ID = s.newID()
		}
		_, err := tx.Exec(`
			INSERT INTO outbound_payments (id, project_id, payee, amount, is_paid)
			VALUES (?, ?, ?, ?, ?)
		`, payment.ID, projectID, payment.Payee, payment.Amount, payment.IsPaid)
		if err != nil {
			return fmt.Errorf("failed to insert outbound payment: %w", err)
		}
	}

	return nil
}

func (s *Store) loadChildren(p *models.Project) error {
	staff, err := s.constructionStaffByProject(p.ID)
	if err != nil {
		return err
	}
	billing, err := s.BillingItemsByProject(p.ID)
	if err != nil {
		return err
	}
	outbound, err := s.outboundPaymentsByProject(p.ID)
	if err != nil {
		return err
	}

	p.ConstructionStaff = staff
	p.BillingItems = billing
	p.OutboundPayments = outbound
	return nil
}

func (s *Store) constructionStaffByProject(projectID string) ([]models.ConstructionStaff, error) {
	rows, err := s.db.Query(`
		SELECT id, project_id, name, role
		FROM construction_staff
		WHERE project_id = ?
		ORDER BY rowid
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get construction staff: %w", err)
	}
	defer rows.Close()

	staff := make([]models.ConstructionStaff, 0)
	for rows.Next() {
		var member models.ConstructionStaff
		if err := rows.Scan(&member.ID, &member.ProjectID, &member.Name, &member.Role); err != nil {
			return nil, fmt.Errorf("failed to scan construction staff: %w", err)
		}
		staff = append(staff, member)
	}
	return staff, rows.Err()
}

func (s *Store) BillingItemsByProject(projectID string) ([]models.BillingItem, error) {
	rows, err := s.db.Query(`
		SELECT id, project_id, name, amount, is_billed, is_paid
		FROM billing_items
		WHERE project_id = ?
		ORDER BY rowid
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get billing items: %w", err)
	}
	defer rows.Close()

	items := make([]models.BillingItem, 0)
	for rows.Next() {
		var item models.BillingItem
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.Name, &item.Amount, &item.IsBilled, &item.IsPaid); err != nil {
			return nil, fmt.Errorf("failed to scan billing item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) outboundPaymentsByProject(projectID string) ([]models.OutboundPayment, error) {
	rows, err := s.db.Query(`
		SELECT id, project_id, payee, amount, is_paid
		FROM outbound_payments
		WHERE project_id = ?
		ORDER BY rowid
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get outbound payments: %w", err)
	}
	defer rows.Close()

	payments := make([]models.OutboundPayment, 0)
	for rows.Next() {
		var payment models.OutboundPayment
		if err := rows.Scan(&payment.ID, &payment.ProjectID, &payment.Payee, &payment.Amount, &payment.IsPaid); err != nil {
			return nil, fmt.Errorf("failed to scan outbound payment: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// SetBillingItemFlags applies the billed/paid flag patch to one billing
// item and returns the owning project's identifier so the caller can run
// the auto-advance check. Only flags present in the patch are touched.
func (s *Store) SetBillingItemFlags(id string, billed, paid *bool) (string, error) {
	var projectID string
	err := s.db.QueryRow(`SELECT project_id FROM billing_items WHERE id = ?`, id).Scan(&projectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get billing item: %w", err)
	}

	setClauses := make([]string, 0, 2)
	args := make([]interface{}, 0, 3)
	if billed != nil {
		setClauses = append(setClauses, "is_billed = ?")
		args = append(args, *billed)
	}
	if paid != nil {
		setClauses = append(setClauses, "is_paid = ?")
		args = append(args, *paid)
	}
	if len(setClauses) == 0 {
		return projectID, nil
	}
	args = append(args, id)

	_, err = s.db.Exec(
		"UPDATE billing_items SET "+strings.Join(setClauses, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return "", fmt.Errorf("failed to update billing item: %w", err)
	}
	return projectID, nil
}

// SetOutboundPaymentPaid marks one outbound payment as paid.
func (s *Store) SetOutboundPaymentPaid(id string) error {
	res, err := s.db.Exec(`UPDATE outbound_payments SET is_paid = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to update outbound payment: %w", err)
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

// AllBillingItemsBilled implements lifecycle.Store: it reports whether no
// unbilled item remains for the project.
func (s *Store) AllBillingItemsBilled(projectID string) (bool, error) {
	var unbilled int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM billing_items WHERE project_id = ? AND is_billed = 0
	`, projectID).Scan(&unbilled)
	if err != nil {
		return false, fmt.Errorf("failed to count unbilled items: %w", err)
	}
	return unbilled == 0, nil
}
