package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/dorm-adp-api/internal/models"
	"github.com/noah-isme/dorm-adp-api/internal/service"
	"github.com/noah-isme/dorm-adp-api/pkg/listing"
	"github.com/noah-isme/dorm-adp-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *listing.Meta, error)
	Get(ctx context.Context, id string) (*models.StudentDetail, error)
	Create(ctx context.Context, req service.StudentRequest) (*models.StudentDetail, error)
	Update(ctx context.Context, id string, req service.StudentRequest) (*models.StudentDetail, error)
	Delete(ctx context.Context, id string) error
	AssignRoom(ctx context.Context, id string, req service.AssignRoomRequest) (*models.StudentDetail, error)
	Checkout(ctx context.Context, id string) (*models.StudentDetail, error)
}

// StudentHandler exposes student endpoints.
type StudentHandler struct {
	students studentService
	list     ListSupport
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, list ListSupport) *StudentHandler {
	return &StudentHandler{students: students, list: list}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param roomId query string false "Room ID"
// @Param buildingId query string false "Building ID"
// @Param status query string false "ACTIVE, INACTIVE or GRADUATED"
// @Param gender query string false "MALE or FEMALE"
// @Param search query string false "Search by name or student code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	n := h.list.normalizer(c)
	filter := models.StudentFilter{
		RoomID:     n.UUID("roomId"),
		BuildingID: n.UUID("buildingId"),
		Status:     n.Enum("status", models.StudentStatuses, ""),
		Gender:     n.Enum("gender", models.Genders, ""),
		Search:     n.String("search"),
		Page:       n.Page(),
	}
	students, meta, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.list.respond(c, "students", n, students, len(students), meta)
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Create godoc
// @Summary Create student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.StudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.StudentRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Delete godoc
// @Summary Delete student
// @Tags Students
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "student deleted")
}

// AssignRoom godoc
// @Summary Assign student to a room
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.AssignRoomRequest true "Target room"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/assign-room [post]
func (h *StudentHandler) AssignRoom(c *gin.Context) {
	var req service.AssignRoomRequest
	if !bindJSON(c, &req) {
		return
	}
	student, err := h.students.AssignRoom(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}

// Checkout godoc
// @Summary Release the student's bed
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/checkout [post]
func (h *StudentHandler) Checkout(c *gin.Context) {
	student, err := h.students.Checkout(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student)
}
