package models

import "time"

// User is an account owning every other record.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Don't expose password hash in JSON
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Credentials is the payload of the register and login endpoints.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// MessageResponse is returned by deletes and other body-less operations.
type MessageResponse struct {
	Message string `json:"message"`
}

// Contact represents a contact person.
type Contact struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  *string   `json:"last_name" db:"last_name"`
	Company   *string   `json:"company" db:"company"`
	Ruc       *string   `json:"ruc" db:"ruc"`
	Email     *string   `json:"email" db:"email"`
	Phone     *string   `json:"phone" db:"phone"`
	Tags      Tags      `json:"tags" db:"tags"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ContactPayload is the create/update body for contacts.
type ContactPayload struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Company   *string `json:"company"`
	Ruc       *string `json:"ruc"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Tags      Tags    `json:"tags"`
}

// Lead is a deal moving through the sales pipeline.
type Lead struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Notes       *string   `json:"notes" db:"notes"`
	Stage       string    `json:"stage" db:"stage"`
	Value       Money     `json:"value" db:"value_cents"`
	ContactID   *int64    `json:"contact_id" db:"contact_id"`
	ContactName string    `json:"contact_name" db:"contact_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// LeadPayload is the create/update body for leads.
// Value is a pointer so an explicit 0 can be told apart from an omitted value.
type LeadPayload struct {
	Name      *string `json:"name"`
	Notes     *string `json:"notes"`
	Stage     *string `json:"stage"`
	Value     *Money  `json:"value"`
	ContactID Ref     `json:"contactId"`
}

// StagePayload moves a lead to another pipeline stage.
type StagePayload struct {
	Stage string `json:"stage"`
}

// Task is a to-do item, optionally linked to a contact and/or lead.
type Task struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Status      string     `json:"status" db:"status"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	ContactID   *int64     `json:"contact_id" db:"contact_id"`
	LeadID      *int64     `json:"lead_id" db:"lead_id"`
	ContactName string     `json:"contact_name" db:"contact_name"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
}

// TaskPayload is the create/update body for tasks.
type TaskPayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"dueDate"`
	ContactID   Ref     `json:"contactId"`
	LeadID      Ref     `json:"leadId"`
}

// Communication is a logged call, e-mail, message or meeting.
type Communication struct {
	ID                int64     `json:"id" db:"id"`
	UserID            int64     `json:"user_id" db:"user_id"`
	Channel           string    `json:"channel" db:"channel"`
	Subject           *string   `json:"subject" db:"subject"`
	Summary           *string   `json:"summary" db:"summary"`
	CommunicationDate time.Time `json:"communication_date" db:"communication_date"`
	ContactID         *int64    `json:"contact_id" db:"contact_id"`
	ContactName       string    `json:"contact_name" db:"contact_name"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// CommunicationPayload is the create/update body for communications.
type CommunicationPayload struct {
	Channel           *string `json:"channel"`
	Subject           *string `json:"subject"`
	Summary           *string `json:"summary"`
	CommunicationDate *string `json:"communicationDate"`
	ContactID         Ref     `json:"contactId"`
}

// ContextKey for storing user ID in context.
type ContextKey string

const (
	UserIDContextKey   ContextKey = "userID"
	TokenIDContextKey  ContextKey = "tokenID"
	TokenExpContextKey ContextKey = "tokenExp"
)
