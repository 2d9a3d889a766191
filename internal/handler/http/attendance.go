package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-ledger/internal/handler/http/response"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	emp, err := currentEmployee(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.CheckIn(r.Context(), emp.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", attendance.NewAttendanceResponse(record))
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	emp, err := currentEmployee(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	record, err := h.attendanceService.CheckOut(r.Context(), emp.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", attendance.NewAttendanceResponse(record))
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	emp, err := currentEmployee(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	status, err := h.attendanceService.Today(r.Context(), emp.ID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, attendance.NewTodayResponse(status))
}

// History implements AttendanceHandler.
func (h *attendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	emp, err := currentEmployee(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var filter attendance.HistoryFilter
	if filter.Month, err = queryInt(r, "month"); err != nil {
		response.HandleError(w, err)
		return
	}
	if filter.Year, err = queryInt(r, "year"); err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.History(r.Context(), emp.ID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := attendance.ListAttendanceResponse{
		Attendances: make([]attendance.AttendanceResponse, 0, len(records)),
		Total:       len(records),
	}
	for _, rec := range records {
		resp.Attendances = append(resp.Attendances, attendance.NewAttendanceResponse(rec))
	}
	response.Success(w, resp)
}
