package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-crm/internal/models"
)

// CommunicationInput is the validated form of a communication create or
// update. A nil CommunicationDate means "now".
type CommunicationInput struct {
	Channel           string
	Subject           *string
	Summary           *string
	CommunicationDate *time.Time
	ContactID         *int64
}

func (in CommunicationInput) normalize(now time.Time) (CommunicationInput, error) {
	in.Channel = strings.TrimSpace(in.Channel)
	if in.Channel == "" {
		in.Channel = models.ChannelEmail
	}
	if !models.IsValidChannel(in.Channel) {
		return in, invalid("unknown channel %q", in.Channel)
	}
	in.Subject = optionalText(in.Subject)
	in.Summary = optionalText(in.Summary)
	if in.CommunicationDate == nil {
		in.CommunicationDate = &now
	}
	in.CommunicationDate = utcPtr(in.CommunicationDate)
	return in, nil
}

const communicationSelect = `SELECT m.id, m.user_id, m.channel, m.subject, m.summary,
	m.communication_date, m.contact_id,
	TRIM(COALESCE(c.first_name, '') || ' ' || COALESCE(c.last_name, '')) AS contact_name,
	m.created_at
	FROM communications m
	LEFT JOIN contacts c ON c.id = m.contact_id`

// ListCommunications returns the owner's communications, most recent first.
func (s *Store) ListCommunications(ctx context.Context, ownerID int64) ([]models.Communication, error) {
	comms := []models.Communication{}
	err := s.DB.SelectContext(ctx, &comms, s.rebind(communicationSelect+
		` WHERE m.user_id = ? ORDER BY m.communication_date DESC, m.id DESC`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list communications: %w", err)
	}
	return comms, nil
}

func (s *Store) GetCommunication(ctx context.Context, ownerID, id int64) (models.Communication, error) {
	var m models.Communication
	err := s.DB.GetContext(ctx, &m,
		s.rebind(communicationSelect+` WHERE m.id = ? AND m.user_id = ?`), id, ownerID)
	if err != nil {
		return models.Communication{}, notFound(err)
	}
	return m, nil
}

func (s *Store) CreateCommunication(ctx context.Context, ownerID int64, in CommunicationInput) (models.Communication, error) {
	now := s.Now()
	in, err := in.normalize(now)
	if err != nil {
		return models.Communication{}, err
	}
	if err := s.ensureContact(ctx, ownerID, in.ContactID); err != nil {
		return models.Communication{}, err
	}
	id, err := s.insertReturningID(ctx, `INSERT INTO communications
		(user_id, channel, subject, summary, communication_date, contact_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		ownerID, in.Channel, in.Subject, in.Summary, in.CommunicationDate, in.ContactID, now)
	if err != nil {
		return models.Communication{}, fmt.Errorf("insert communication: %w", err)
	}
	return s.GetCommunication(ctx, ownerID, id)
}

// UpdateCommunication replaces every editable field of the communication.
func (s *Store) UpdateCommunication(ctx context.Context, ownerID, id int64, in CommunicationInput) (models.Communication, error) {
	in, err := in.normalize(s.Now())
	if err != nil {
		return models.Communication{}, err
	}
	if err := s.ensureContact(ctx, ownerID, in.ContactID); err != nil {
		return models.Communication{}, err
	}
	err = s.execOwned(ctx, `UPDATE communications
		SET channel = ?, subject = ?, summary = ?, communication_date = ?, contact_id = ?
		WHERE id = ? AND user_id = ?`,
		in.Channel, in.Subject, in.Summary, in.CommunicationDate, in.ContactID, id, ownerID)
	if err != nil {
		return models.Communication{}, err
	}
	return s.GetCommunication(ctx, ownerID, id)
}

func (s *Store) DeleteCommunication(ctx context.Context, ownerID, id int64) error {
	return s.execOwned(ctx, `DELETE FROM communications WHERE id = ? AND user_id = ?`, id, ownerID)
}
