package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"service-crm/internal/models"
)

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password string) (models.User, error) {
	var u models.User
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/register",
		body:   models.Credentials{Email: email, Password: password},
		public: true,
	}, &u)
	return u, err
}

// Login stores the issued token in the session.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp models.LoginResponse
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   models.Credentials{Email: email, Password: password},
		public: true,
	}, &resp)
	if err != nil {
		return err
	}
	c.Session.Set(resp.AccessToken)
	return nil
}

// Logout revokes the token server side and clears the session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout"}, nil)
	c.Session.Clear()
	return err
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me"}, &u)
	return u, err
}

func (c *Client) ListContacts(ctx context.Context, search string) ([]models.Contact, error) {
	var q url.Values
	if search != "" {
		q = url.Values{"search": {search}}
	}
	var out []models.Contact
	err := c.do(ctx, request{method: http.MethodGet, path: "/contacts", query: q}, &out)
	return out, err
}

func (c *Client) GetContact(ctx context.Context, id int64) (models.Contact, error) {
	var out models.Contact
	err := c.do(ctx, request{method: http.MethodGet, path: idPath("/contacts", id)}, &out)
	return out, err
}

func (c *Client) CreateContact(ctx context.Context, p models.ContactPayload) (models.Contact, error) {
	var out models.Contact
	err := c.do(ctx, request{method: http.MethodPost, path: "/contacts", body: p}, &out)
	return out, err
}

func (c *Client) UpdateContact(ctx context.Context, id int64, p models.ContactPayload) (models.Contact, error) {
	var out models.Contact
	err := c.do(ctx, request{method: http.MethodPut, path: idPath("/contacts", id), body: p}, &out)
	return out, err
}

func (c *Client) DeleteContact(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/contacts", id)}, nil)
}

func (c *Client) ListLeads(ctx context.Context) ([]models.Lead, error) {
	var out []models.Lead
	err := c.do(ctx, request{method: http.MethodGet, path: "/leads"}, &out)
	return out, err
}

func (c *Client) GetLead(ctx context.Context, id int64) (models.Lead, error) {
	var out models.Lead
	err := c.do(ctx, request{method: http.MethodGet, path: idPath("/leads", id)}, &out)
	return out, err
}

func (c *Client) CreateLead(ctx context.Context, p models.LeadPayload) (models.Lead, error) {
	var out models.Lead
	err := c.do(ctx, request{method: http.MethodPost, path: "/leads", body: p}, &out)
	return out, err
}

func (c *Client) UpdateLead(ctx context.Context, id int64, p models.LeadPayload) (models.Lead, error) {
	var out models.Lead
	err := c.do(ctx, request{method: http.MethodPut, path: idPath("/leads", id), body: p}, &out)
	return out, err
}

// MoveLeadStage changes only the stage of a lead.
func (c *Client) MoveLeadStage(ctx context.Context, id int64, stage string) (models.Lead, error) {
	var out models.Lead
	err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   idPath("/leads", id) + "/stage",
		body:   models.StagePayload{Stage: stage},
	}, &out)
	return out, err
}

func (c *Client) DeleteLead(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/leads", id)}, nil)
}

func (c *Client) ListTasks(ctx context.Context, status string) ([]models.Task, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	var out []models.Task
	err := c.do(ctx, request{method: http.MethodGet, path: "/tasks", query: q}, &out)
	return out, err
}

func (c *Client) GetTask(ctx context.Context, id int64) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, request{method: http.MethodGet, path: idPath("/tasks", id)}, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, p models.TaskPayload) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, request{method: http.MethodPost, path: "/tasks", body: p}, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id int64, p models.TaskPayload) (models.Task, error) {
	var out models.Task
	err := c.do(ctx, request{method: http.MethodPut, path: idPath("/tasks", id), body: p}, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/tasks", id)}, nil)
}

func (c *Client) ListCommunications(ctx context.Context) ([]models.Communication, error) {
	var out []models.Communication
	err := c.do(ctx, request{method: http.MethodGet, path: "/communications"}, &out)
	return out, err
}

func (c *Client) GetCommunication(ctx context.Context, id int64) (models.Communication, error) {
	var out models.Communication
	err := c.do(ctx, request{method: http.MethodGet, path: idPath("/communications", id)}, &out)
	return out, err
}

func (c *Client) CreateCommunication(ctx context.Context, p models.CommunicationPayload) (models.Communication, error) {
	var out models.Communication
	err := c.do(ctx, request{method: http.MethodPost, path: "/communications", body: p}, &out)
	return out, err
}

func (c *Client) UpdateCommunication(ctx context.Context, id int64, p models.CommunicationPayload) (models.Communication, error) {
	var out models.Communication
	err := c.do(ctx, request{method: http.MethodPut, path: idPath("/communications", id), body: p}, &out)
	return out, err
}

func (c *Client) DeleteCommunication(ctx context.Context, id int64) error {
	return c.do(ctx, request{method: http.MethodDelete, path: idPath("/communications", id)}, nil)
}

// SummaryQuery selects the report window. An empty Period means today.
type SummaryQuery struct {
	Period    string
	StartDate string
	EndDate   string
}

func (c *Client) Summary(ctx context.Context, q SummaryQuery) (models.Summary, error) {
	values := url.Values{}
	if q.Period != "" {
		values.Set("period", q.Period)
	}
	if q.StartDate != "" {
		values.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		values.Set("endDate", q.EndDate)
	}
	var out models.Summary
	err := c.do(ctx, request{method: http.MethodGet, path: "/summary", query: values}, &out)
	return out, err
}
