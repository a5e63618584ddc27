package store

import (
	"context"
	"fmt"
	"strings"

	"service-crm/internal/database"
	"service-crm/internal/models"
)

// ContactInput is the validated form of a contact create or update.
type ContactInput struct {
	FirstName string
	LastName  *string
	Company   *string
	Ruc       *string
	Email     *string
	Phone     *string
	Tags      models.Tags
}

func (in ContactInput) normalize() (ContactInput, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	if in.FirstName == "" {
		return in, invalid("first name is required")
	}
	in.LastName = optionalText(in.LastName)
	in.Company = optionalText(in.Company)
	in.Ruc = optionalText(in.Ruc)
	in.Email = optionalText(in.Email)
	in.Phone = optionalText(in.Phone)
	in.Tags = models.NormalizeTags(in.Tags)
	return in, nil
}

const contactColumns = `id, user_id, first_name, last_name, company, ruc, email, phone, tags, created_at`

// searchableContactColumns are matched by ListContacts' search term.
var searchableContactColumns = []string{"first_name", "last_name", "company", "ruc", "email"}

// ListContacts returns the owner's contacts, newest first. A non-blank
// search keeps contacts where any searchable column contains the term,
// ignoring case.
func (s *Store) ListContacts(ctx context.Context, ownerID int64, search string) ([]models.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = ?`
	args := []any{ownerID}

	if term := strings.TrimSpace(search); term != "" {
		// Both sides go through the same Unicode-aware fold.
		lower := database.LowerFunc(s.DB.DriverName())
		pattern := "%" + escapeLike(term) + "%"
		clauses := make([]string, 0, len(searchableContactColumns))
		for _, col := range searchableContactColumns {
			clauses = append(clauses, fmt.Sprintf(`%[1]s(%[2]s) LIKE %[1]s(?) ESCAPE '\'`, lower, col))
			args = append(args, pattern)
		}
		query += ` AND (` + strings.Join(clauses, ` OR `) + `)`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	contacts := []models.Contact{}
	if err := s.DB.SelectContext(ctx, &contacts, s.rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (s *Store) GetContact(ctx context.Context, ownerID, id int64) (models.Contact, error) {
	var c models.Contact
	err := s.DB.GetContext(ctx, &c,
		s.rebind(`SELECT `+contactColumns+` FROM contacts WHERE id = ? AND user_id = ?`), id, ownerID)
	if err != nil {
		return models.Contact{}, notFound(err)
	}
	return c, nil
}

func (s *Store) CreateContact(ctx context.Context, ownerID int64, in ContactInput) (models.Contact, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Contact{}, err
	}
	id, err := s.insertReturningID(ctx, `INSERT INTO contacts
		(user_id, first_name, last_name, company, ruc, email, phone, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		ownerID, in.FirstName, in.LastName, in.Company, in.Ruc, in.Email, in.Phone, in.Tags, s.Now())
	if err != nil {
		return models.Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	return s.GetContact(ctx, ownerID, id)
}

// UpdateContact replaces every editable field of the contact.
func (s *Store) UpdateContact(ctx context.Context, ownerID, id int64, in ContactInput) (models.Contact, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Contact{}, err
	}
	err = s.execOwned(ctx, `UPDATE contacts
		SET first_name = ?, last_name = ?, company = ?, ruc = ?, email = ?, phone = ?, tags = ?
		WHERE id = ? AND user_id = ?`,
		in.FirstName, in.LastName, in.Company, in.Ruc, in.Email, in.Phone, in.Tags, id, ownerID)
	if err != nil {
		return models.Contact{}, err
	}
	return s.GetContact(ctx, ownerID, id)
}

// DeleteContact removes the contact. Leads, tasks and communications that
// referenced it keep existing with the reference cleared.
func (s *Store) DeleteContact(ctx context.Context, ownerID, id int64) error {
	return s.execOwned(ctx, `DELETE FROM contacts WHERE id = ? AND user_id = ?`, id, ownerID)
}
