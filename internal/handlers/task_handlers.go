package handlers

import (
	"net/http"

	"service-crm/internal/events"
	"service-crm/internal/models"
	"service-crm/internal/store"
	"service-crm/internal/utils"
)

const taskNotFound = "Task not found"

func (c *CRMHandlers) taskInput(w http.ResponseWriter, p models.TaskPayload) (store.TaskInput, bool) {
	due, err := parseTimeField(p.DueDate, c.location(), "dueDate")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return store.TaskInput{}, false
	}
	return store.TaskInput{
		Title:       deref(p.Title),
		Description: p.Description,
		Status:      deref(p.Status),
		DueDate:     due,
		ContactID:   p.ContactID.Ptr(),
		LeadID:      p.LeadID.Ptr(),
	}, true
}

// ListTasks lists the user's tasks, optionally filtered by ?status=.
func (c *CRMHandlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	tasks, err := c.Store.ListTasks(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		c.respondStoreError(w, err, taskNotFound)
		return
	}
	utils.RespondJSON(w, http.StatusOK, tasks)
}

func (c *CRMHandlers) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "task")
	if !ok {
		return
	}
	task, err := c.Store.GetTask(r.Context(), userID, id)
	if err != nil {
		c.respondStoreError(w, err, taskNotFound)
		return
	}
	utils.RespondJSON(w, http.StatusOK, task)
}

func (c *CRMHandlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	var payload models.TaskPayload
	if !c.decode(w, r, &payload) {
		return
	}
	in, ok := c.taskInput(w, payload)
	if !ok {
		return
	}
	task, err := c.Store.CreateTask(r.Context(), userID, in)
	if err != nil {
		c.respondStoreError(w, err, taskNotFound)
		return
	}
	c.publish(r.Context(), events.TaskCreated, userID, task.ID, task)
	utils.RespondJSON(w, http.StatusCreated, task)
}

func (c *CRMHandlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "task")
	if !ok {
		return
	}
	var payload models.TaskPayload
	if !c.decode(w, r, &payload) {
		return
	}
	in, ok := c.taskInput(w, payload)
	if !ok {
		return
	}
	task, err := c.Store.UpdateTask(r.Context(), userID, id, in)
	if err != nil {
		c.respondStoreError(w, err, taskNotFound)
		return
	}
	c.publish(r.Context(), events.TaskUpdated, userID, task.ID, task)
	utils.RespondJSON(w, http.StatusOK, task)
}

func (c *CRMHandlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := c.requireUser(w, r)
	if !ok {
		return
	}
	id, ok := c.pathID(w, r, "task")
	if !ok {
		return
	}
	if err := c.Store.DeleteTask(r.Context(), userID, id); err != nil {
		c.respondStoreError(w, err, taskNotFound)
		return
	}
	c.publish(r.Context(), events.TaskDeleted, userID, id, nil)
	utils.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Task deleted"})
}
