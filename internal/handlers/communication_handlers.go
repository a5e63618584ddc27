package handlers

import (
	"net/http"

	"service-crm/internal/events"
	"service-crm/internal/models"
	"service-crm/internal/store"
	"service-crm/internal/utils"
)

const communicationNotFound = "Communication not found"

func (c *CRMHandlers) communicationInput(w http.ResponseWriter, p models.CommunicationPayload) (store.CommunicationInput, bool) {
	at, err := parseTimeField(p.CommunicationDate, c.location(), "communicationDate")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return store.CommunicationInput{}, false
	}
	return store.CommunicationInput{
		Channel:           deref(p.Channel),
		Subject:           p.Subject,
		Summary:           p.Summary,
		CommunicationDate: at,
		ContactID:         p.ContactID.Ptr(),
	}, true
}

func (c *CRMHandlers) ListCommunications(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	comms, err := c.Store.ListCommunications(r.Context(), userID)
	if err != nil {
		c.respondStoreError(w, err, communicationNotFound)
		return
	}
	utils.RespondJSON(w, http.StatusOK, comms)
}

func (c *CRMHandlers) GetCommunication(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "communication")
	if !ok {
		return
	}
	comm, err := c.Store.GetCommunication(r.Context(), userID, id)
	if err != nil {
		c.respondStoreError(w, err, communicationNotFound)
		return
	}
	utils.RespondJSON(w, http.StatusOK, comm)
}

func (c *CRMHandlers) CreateCommunication(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	var payload models.CommunicationPayload
	if !c.decode(w, r, &payload) {
		return
	}
	in, ok := c.communicationInput(w, payload)
	if !ok {
		return
	}
	comm, err := c.Store.CreateCommunication(r.Context(), userID, in)
	if err != nil {
		c.respondStoreError(w, err, communicationNotFound)
		return
	}
	c.publish(r.Context(), events.CommunicationCreated, userID, comm.ID, comm)
	utils.RespondJSON(w, http.StatusCreated, comm)
}

func (c *CRMHandlers) UpdateCommunication(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "communication")
	if !ok {
		return
	}
	var payload models.CommunicationPayload
	if !c.decode(w, r, &payload) {
		return
	}
	in, ok := c.communicationInput(w, payload)
	if !ok {
		return
	}
	comm, err := c.Store.UpdateCommunication(r.Context(), userID, id, in)
	if err != nil {
		c.respondStoreError(w, err, communicationNotFound)
		return
	}
	c.publish(r.Context(), events.CommunicationUpdated, userID, comm.ID, comm)
	utils.RespondJSON(w, http.StatusOK, comm)
}

func (c *CRMHandlers) DeleteCommunication(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "communication")
	if !ok {
		return
	}
	if err := c.Store.DeleteCommunication(r.Context(), userID, id); err != nil {
		c.respondStoreError(w, err, communicationNotFound)
		return
	}
	c.publish(r.Context(), events.CommunicationDeleted, userID, id, nil)
	utils.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Communication deleted"})
}
