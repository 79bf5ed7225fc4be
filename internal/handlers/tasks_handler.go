package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pitaka/internal/services"
)

// TasksHandler exposes the internal task endpoints the scheduler calls.
// These routes sit behind the tasks API-key middleware, not user auth.
type TasksHandler struct {
	recurringService services.RecurringServicer
	statementService services.StatementServicer
}

// NewTasksHandler creates a new TasksHandler.
func NewTasksHandler(recurringService services.RecurringServicer, statementService services.StatementServicer) *TasksHandler {
	return &TasksHandler{recurringService: recurringService, statementService: statementService}
}

// RunRecurringSweep materializes due recurring rules
// @Summary     Run the recurring sweep
// @Description Materialize at most one transaction per due rule and advance cursors
// @Tags        internal
// @Produce     json
// @Security    TasksKeyAuth
// @Success     200 {object} map[string]int "Number of rules processed"
// @Router      /internal/tasks/recurring-sweep [post]
func (h *TasksHandler) RunRecurringSweep(c *gin.Context) {
	processed, err := h.recurringService.Sweep(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"processed": processed})
}

// RunStatementAlerts sends due-date reminders for unpaid statements
// @Summary     Run statement due-date alerts
// @Description Notify owners of unpaid statements due in 7 or 1 days
// @Tags        internal
// @Produce     json
// @Security    TasksKeyAuth
// @Success     200 {object} map[string]int "Number of reminders created"
// @Router      /internal/tasks/statement-alerts [post]
func (h *TasksHandler) RunStatementAlerts(c *gin.Context) {
	created, err := h.statementService.CheckDueStatements(time.Now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}
