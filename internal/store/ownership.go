package store

import (
	"context"
	"fmt"
)

// ownedTables lists the tables an ownership check may target. The table
// name is interpolated into SQL, so it must never come from input.
var ownedTables = map[string]bool{
	"contacts": true,
	"leads":    true,
}

// OwnsContact reports whether contactID belongs to ownerID. A nil id means
// "no reference" and is always allowed.
func (s *Store) OwnsContact(ctx context.Context, ownerID int64, contactID *int64) (bool, error) {
	return s.owns(ctx, "contacts", ownerID, contactID)
}

// OwnsLead reports whether leadID belongs to ownerID. A nil id is allowed.
func (s *Store) OwnsLead(ctx context.Context, ownerID int64, leadID *int64) (bool, error) {
	return s.owns(ctx, "leads", ownerID, leadID)
}

func (s *Store) owns(ctx context.Context, table string, ownerID int64, id *int64) (bool, error) {
	if id == nil {
		return true, nil
	}
	if !ownedTables[table] {
		return false, fmt.Errorf("ownership check on unknown table %q", table)
	}
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = ? AND user_id = ?)", table)
	var exists bool
	if err := s.DB.GetContext(ctx, &exists, s.rebind(query), *id, ownerID); err != nil {
		return false, fmt.Errorf("check %s ownership: %w", table, err)
	}
	return exists, nil
}

func (s *Store) ensureContact(ctx context.Context, ownerID int64, contactID *int64) error {
	ok, err := s.OwnsContact(ctx, ownerID, contactID)
	if err != nil {
		return err
	}
	if !ok {
		return badReference("associated contact does not exist")
	}
	return nil
}

func (s *Store) ensureLead(ctx context.Context, ownerID int64, leadID *int64) error {
	ok, err := s.OwnsLead(ctx, ownerID, leadID)
	if err != nil {
		return err
	}
	if !ok {
		return badReference("associated lead does not exist")
	}
	return nil
}
