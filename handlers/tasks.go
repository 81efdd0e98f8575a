package handlers

import (
	"net/http"

	"visa_crm_go/db"
	"visa_crm_go/middleware"
	"visa_crm_go/models"
	"visa_crm_go/services"

	"github.com/labstack/echo/v4"
)

// ListTasksHandler returns the workspace task list. ?mine=true narrows it to the caller.
func ListTasksHandler(c echo.Context) error {
	filter := services.TaskFilter{
		Status:     c.QueryParam("status"),
		AssigneeID: c.QueryParam("assignee_id"),
		PartyType:  c.QueryParam("party_type"),
		PartyID:    c.QueryParam("party_id"),
	}
	if c.QueryParam("mine") == "true" {
		filter.AssigneeID = middleware.GetCurrentUser(c).ID
	}
	tasks, err := services.ListTasks(db.DB, middleware.GetWorkspaceID(c), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tasks)
}

// CreateTaskHandler adds a task, optionally attached to a client or a lead
func CreateTaskHandler(c echo.Context) error {
	var in services.TaskInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}

	task, err := services.CreateTask(db.DB, middleware.GetWorkspaceID(c), middleware.GetCurrentUser(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionCreate, "Task", task.ID, task.Title, "Task created", nil, task)
	return respondWithToast(c, http.StatusCreated, task, "toast.task.created", "")
}

// UpdateTaskHandler edits a task
func UpdateTaskHandler(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	task, err := services.GetTask(db.DB, workspaceID, c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	before := *task

	var in services.TaskInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c)
	}
	if err := services.UpdateTask(db.DB, task, in); err != nil {
		return respondServiceError(c, err)
	}

	task, err = services.GetTask(db.DB, workspaceID, task.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionUpdate, "Task", task.ID, task.Title, "Task updated", before, task)
	return respondWithToast(c, http.StatusOK, task, "toast.task.updated", "")
}

// UpdateTaskStatusHandler moves a task between To Do, In Progress and Completed
func UpdateTaskStatusHandler(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	task, err := services.GetTask(db.DB, workspaceID, c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if err := services.UpdateTaskStatus(db.DB, task, req.Status); err != nil {
		return respondServiceError(c, err)
	}

	task, err = services.GetTask(db.DB, workspaceID, task.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return respondWithToast(c, http.StatusOK, task, "toast.task.updated", "")
}

// DeleteTaskHandler soft-deletes a task
func DeleteTaskHandler(c echo.Context) error {
	task, err := services.GetTask(db.DB, middleware.GetWorkspaceID(c), c.Param("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := services.DeleteTask(db.DB, task); err != nil {
		return respondServiceError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), models.AuditActionDelete, "Task", task.ID, task.Title, "Task deleted", task, nil)
	return middleware.RespondToast(c, http.StatusOK, middleware.ToastDefault, "toast.task.deleted", "")
}
