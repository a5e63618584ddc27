package handlers

import (
	"net/http"

	"service-crm/internal/events"
	"service-crm/internal/models"
	"service-crm/internal/store"
	"service-crm/internal/utils"
)

const leadNotFound = "Lead not found"

// leadInput converts a payload. An omitted value is stored as 0.
func leadInput(p models.LeadPayload) store.LeadInput {
	in := store.LeadInput{
		Name:      deref(p.Name),
		Notes:     p.Notes,
		Stage:     deref(p.Stage),
		ContactID: p.ContactID.Ptr(),
	}
	if p.Value != nil {
		in.Value = *p.Value
	}
	return in
}

func (c *CRMHandlers) ListLeads(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	leads, err := c.Store.ListLeads(r.Context(), userID)
	if err != nil {
		c.respondStoreError(w, err, leadNotFound)
		return
	}
	utils.RespondJSON(w, http.StatusOK, leads)
}

func (c *CRMHandlers) GetLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "lead")
	if !ok {
		return
	}
	lead, err := c.Store.GetLead(r.Context(), userID, id)
	if err != nil {
		c.respondStoreError(w, err, leadNotFound)
		return
	}
	utils.RespondJSON(w, http.StatusOK, lead)
}

func (c *CRMHandlers) CreateLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	var payload models.LeadPayload
	if !c.decode(w, r, &payload) {
		return
	}
	lead, err := c.Store.CreateLead(r.Context(), userID, leadInput(payload))
	if err != nil {
		c.respondStoreError(w, err, leadNotFound)
		return
	}
	c.publish(r.Context(), events.LeadCreated, userID, lead.ID, lead)
	utils.RespondJSON(w, http.StatusCreated, lead)
}

func (c *CRMHandlers) UpdateLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "lead")
	if !ok {
		return
	}
	var payload models.LeadPayload
	if !c.decode(w, r, &payload) {
		return
	}
	lead, err := c.Store.UpdateLead(r.Context(), userID, id, leadInput(payload))
	if err != nil {
		c.respondStoreError(w, err, leadNotFound)
		return
	}
	c.publish(r.Context(), events.LeadUpdated, userID, lead.ID, lead)
	utils.RespondJSON(w, http.StatusOK, lead)
}

// UpdateLeadStage moves a lead along the pipeline (PATCH /leads/{id}/stage).
func (c *CRMHandlers) UpdateLeadStage(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "lead")
	if !ok {
		return
	}
	var payload models.StagePayload
	if !c.decode(w, r, &payload) {
		return
	}
	lead, err := c.Store.UpdateLeadStage(r.Context(), userID, id, payload.Stage)
	if err != nil {
		c.respondStoreError(w, err, leadNotFound)
		return
	}
	c.publish(r.Context(), events.LeadStageChanged, userID, lead.ID, models.StagePayload{Stage: lead.Stage})
	utils.RespondJSON(w, http.StatusOK, lead)
}

func (c *CRMHandlers) DeleteLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "lead")
	if !ok {
		return
	}
	if err := c.Store.DeleteLead(r.Context(), userID, id); err != nil {
		c.respondStoreError(w, err, leadNotFound)
		return
	}
	c.publish(r.Context(), events.LeadDeleted, userID, id, nil)
	utils.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Lead deleted"})
}
