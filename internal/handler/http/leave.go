package http

import (
	"net/http"
	"strings"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/leave"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/clock"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Decide(w http.ResponseWriter, r *http.Request)
	GetMyBalance(w http.ResponseWriter, r *http.Request)
	GetEmployeeBalance(w http.ResponseWriter, r *http.Request)
	PendingCount(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	workflow leave.WorkflowService
	clock    clock.Clock
}

func NewLeaveHandler(workflow leave.WorkflowService, clk clock.Clock) LeaveHandler {
	return &LeaveHandlerImpl{
		workflow: workflow,
		clock:    clk,
	}
}

// Submit implements LeaveHandler.
func (l *LeaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	emp, err := currentEmployee(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req leave.SubmitLeaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = emp.ID

	created, err := l.workflow.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", leave.NewLeaveRequestResponse(created))
}

// List implements LeaveHandler. Managers see every request unless they filter by employee_id.
func (l *LeaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	emp, err := currentEmployee(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	principal, err := currentPrincipal(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	filter := leave.ListFilter{EmployeeID: emp.ID}
	if principal.IsManager() {
		filter.EmployeeID = r.URL.Query().Get("employee_id")
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := leave.Status(strings.ToUpper(status))
		filter.Status = &s
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if limit != nil {
		filter.Limit = *limit
	}

	requests, err := l.workflow.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := leave.ListLeaveRequestResponse{
		Requests: make([]leave.LeaveRequestResponse, 0, len(requests)),
		Total:    len(requests),
	}
	for _, req := range requests {
		resp.Requests = append(resp.Requests, leave.NewLeaveRequestResponse(req))
	}
	response.SuccessWithMeta(w, resp, &response.Meta{
		Limit:      filter.Limit,
		TotalItems: int64(len(requests)),
	})
}

// Decide implements LeaveHandler.
func (l *LeaveHandlerImpl) Decide(w http.ResponseWriter, r *http.Request) {
	principal, err := currentPrincipal(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req leave.DecideLeaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	decision, err := req.ToDecision()
	if err != nil {
		response.HandleError(w, err)
		return
	}

	decided, err := l.workflow.Decide(r.Context(), chi.URLParam(r, "id"), principal.UserID, decision)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request "+strings.ToLower(string(decided.Status)), leave.NewLeaveRequestResponse(decided))
}

// GetMyBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyBalance(w http.ResponseWriter, r *http.Request) {
	emp, err := currentEmployee(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	l.writeBalance(w, r, emp.ID)
}

// GetEmployeeBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) GetEmployeeBalance(w http.ResponseWriter, r *http.Request) {
	l.writeBalance(w, r, chi.URLParam(r, "id"))
}

func (l *LeaveHandlerImpl) writeBalance(w http.ResponseWriter, r *http.Request, employeeID string) {
	year := l.clock.Now().Year()
	requested, err := queryInt(r, "year")
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if requested != nil {
		year = *requested
	}

	snapshot, err := l.workflow.GetLeaveBalance(r.Context(), employeeID, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, snapshot)
}

// PendingCount implements LeaveHandler.
func (l *LeaveHandlerImpl) PendingCount(w http.ResponseWriter, r *http.Request) {
	emp, err := currentEmployee(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	principal, err := currentPrincipal(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	count, err := l.workflow.PendingCount(r.Context(), leave.Viewer{EmployeeID: emp.ID, IsManager: principal.IsManager()})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, leave.PendingCountResponse{Count: count})
}
