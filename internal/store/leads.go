package store

import (
	"context"
	"fmt"
	"strings"

	"service-crm/internal/models"
)

// LeadInput is the validated form of a lead create or update.
type LeadInput struct {
	Name      string
	Notes     *string
	Stage     string
	Value     models.Money
	ContactID *int64
}

func (in LeadInput) normalize() (LeadInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, invalid("lead name is required")
	}
	if in.ContactID == nil {
		return in, invalid("a lead must be associated with a contact")
	}
	if in.Value < 0 {
		return in, invalid("lead value cannot be negative")
	}
	in.Notes = optionalText(in.Notes)
	stage, err := canonicalStage(in.Stage)
	if err != nil {
		return in, err
	}
	in.Stage = stage
	return in, nil
}

// canonicalStage applies the stage default and rejects unknown stages.
func canonicalStage(stage string) (string, error) {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return models.StageIncoming, nil
	}
	if !models.IsValidStage(stage) {
		return "", invalid("unknown stage %q", stage)
	}
	return stage, nil
}

const leadSelect = `SELECT l.id, l.user_id, l.name, l.notes, l.stage, l.value_cents, l.contact_id,
	TRIM(COALESCE(c.first_name, '') || ' ' || COALESCE(c.last_name, '')) AS contact_name,
	l.created_at
	FROM leads l
	LEFT JOIN contacts c ON c.id = l.contact_id`

// ListLeads returns the owner's leads with their contact name, newest first.
func (s *Store) ListLeads(ctx context.Context, ownerID int64) ([]models.Lead, error) {
	leads := []models.Lead{}
	err := s.DB.SelectContext(ctx, &leads,
		s.rebind(leadSelect+` WHERE l.user_id = ? ORDER BY l.created_at DESC, l.id DESC`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func (s *Store) GetLead(ctx context.Context, ownerID, id int64) (models.Lead, error) {
	var l models.Lead
	err := s.DB.GetContext(ctx, &l, s.rebind(leadSelect+` WHERE l.id = ? AND l.user_id = ?`), id, ownerID)
	if err != nil {
		return models.Lead{}, notFound(err)
	}
	return l, nil
}

func (s *Store) CreateLead(ctx context.Context, ownerID int64, in LeadInput) (models.Lead, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Lead{}, err
	}
	if err := s.ensureContact(ctx, ownerID, in.ContactID); err != nil {
		return models.Lead{}, err
	}
	id, err := s.insertReturningID(ctx, `INSERT INTO leads
		(user_id, name, notes, stage, value_cents, contact_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		ownerID, in.Name, in.Notes, in.Stage, in.Value.Cents(), in.ContactID, s.Now())
	if err != nil {
		return models.Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return s.GetLead(ctx, ownerID, id)
}

// UpdateLead replaces every editable field of the lead.
func (s *Store) UpdateLead(ctx context.Context, ownerID, id int64, in LeadInput) (models.Lead, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Lead{}, err
	}
	if err := s.ensureContact(ctx, ownerID, in.ContactID); err != nil {
		return models.Lead{}, err
	}
	err = s.execOwned(ctx, `UPDATE leads
		SET name = ?, notes = ?, stage = ?, value_cents = ?, contact_id = ?
		WHERE id = ? AND user_id = ?`,
		in.Name, in.Notes, in.Stage, in.Value.Cents(), in.ContactID, id, ownerID)
	if err != nil {
		return models.Lead{}, err
	}
	return s.GetLead(ctx, ownerID, id)
}

// UpdateLeadStage moves a lead to another pipeline stage and leaves the
// rest of the row untouched.
func (s *Store) UpdateLeadStage(ctx context.Context, ownerID, id int64, stage string) (models.Lead, error) {
	stage = strings.TrimSpace(stage)
	if stage == "" {
		return models.Lead{}, invalid("stage is required")
	}
	stage, err := canonicalStage(stage)
	if err != nil {
		return models.Lead{}, err
	}
	err = s.execOwned(ctx, `UPDATE leads SET stage = ? WHERE id = ? AND user_id = ?`, stage, id, ownerID)
	if err != nil {
		return models.Lead{}, err
	}
	return s.GetLead(ctx, ownerID, id)
}

func (s *Store) DeleteLead(ctx context.Context, ownerID, id int64) error {
	return s.execOwned(ctx, `DELETE FROM leads WHERE id = ? AND user_id = ?`, id, ownerID)
}
