package handlers

import (
	"net/http"

	"service-crm/internal/events"
	"service-crm/internal/models"
	"service-crm/internal/store"
	"service-crm/internal/utils"
)

const contactNotFound = "Contact not found"

func contactInput(p models.ContactPayload) store.ContactInput {
	return store.ContactInput{
		FirstName: deref(p.FirstName),
		LastName:  p.LastName,
		Company:   p.Company,
		Ruc:       p.Ruc,
		Email:     p.Email,
		Phone:     p.Phone,
		Tags:      p.Tags,
	}
}

// ListContacts lists the user's contacts, optionally filtered by ?search=.
func (c *CRMHandlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	contacts, err := c.Store.ListContacts(r.Context(), userID, r.URL.Query().Get("search"))
	if err != nil {
		c.respondStoreError(w, err, contactNotFound)
		return
	}
	utils.RespondJSON(w, http.StatusOK, contacts)
}

func (c *CRMHandlers) GetContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "contact")
	if !ok {
		return
	}
	contact, err := c.Store.GetContact(r.Context(), userID, id)
	if err != nil {
		c.respondStoreError(w, err, contactNotFound)
		return
	}
	utils.RespondJSON(w, http.StatusOK, contact)
}

func (c *CRMHandlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	var payload models.ContactPayload
	if !c.decode(w, r, &payload) {
		return
	}
	contact, err := c.Store.CreateContact(r.Context(), userID, contactInput(payload))
	if err != nil {
		c.respondStoreError(w, err, contactNotFound)
		return
	}
	c.publish(r.Context(), events.ContactCreated, userID, contact.ID, contact)
	utils.RespondJSON(w, http.StatusCreated, contact)
}

func (c *CRMHandlers) UpdateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "contact")
	if !ok {
		return
	}
	var payload models.ContactPayload
	if !c.decode(w, r, &payload) {
		return
	}
	contact, err := c.Store.UpdateContact(r.Context(), userID, id, contactInput(payload))
	if err != nil {
		c.respondStoreError(w, err, contactNotFound)
		return
	}
	c.publish(r.Context(), events.ContactUpdated, userID, contact.ID, contact)
	utils.RespondJSON(w, http.StatusOK, contact)
}

func (c *CRMHandlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "contact")
	if !ok {
		return
	}
	if err := c.Store.DeleteContact(r.Context(), userID, id); err != nil {
		c.respondStoreError(w, err, contactNotFound)
		return
	}
	c.publish(r.Context(), events.ContactDeleted, userID, id, nil)
	utils.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Contact deleted"})
}
