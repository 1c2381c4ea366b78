package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AkshithaKulal/placementpro/internal/models"
	"github.com/AkshithaKulal/placementpro/internal/service"
	"github.com/AkshithaKulal/placementpro/pkg/response"
)

type slotRepoStub struct {
	slots   map[string]models.InterviewSlot
	counts  map[string]int
	windows []models.AssignmentWindow
	deleted []string
}

func (s *slotRepoStub) FindSlotByID(ctx context.Context, id string) (*models.InterviewSlot, error) {
	if slot, ok := s.slots[id]; ok {
		return &slot, nil
	}
	return nil, sql.ErrNoRows
}

func (s *slotRepoStub) ListSlotsByDrive(ctx context.Context, driveID string) ([]models.InterviewSlot, error) {
	var out []models.InterviewSlot
	for _, slot := range s.slots {
		if slot.DriveID == driveID {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s *slotRepoStub) CreateSlot(ctx context.Context, slot *models.InterviewSlot) error {
	if slot.ID == "" {
		slot.ID = "slot-created"
	}
	if s.slots == nil {
		s.slots = make(map[string]models.InterviewSlot)
	}
	s.slots[slot.ID] = *slot
	return nil
}

func (s *slotRepoStub) CountAssignments(ctx context.Context, slotID string) (int, error) {
	return s.counts[slotID], nil
}

func (s *slotRepoStub) ListAssignmentsBySlot(ctx context.Context, slotID string) ([]models.AssignmentDetail, error) {
	return nil, nil
}

func (s *slotRepoStub) ListAssignmentWindowsByStudent(ctx context.Context, studentID string) ([]models.AssignmentWindow, error) {
	return s.windows, nil
}

func (s *slotRepoStub) CreateAssignment(ctx context.Context, assignment *models.InterviewAssignment) error {
	if assignment.ID == "" {
		assignment.ID = "assignment-created"
	}
	return nil
}

func (s *slotRepoStub) DeleteAssignment(ctx context.Context, assignmentID string) error {
	s.deleted = append(s.deleted, assignmentID)
	return nil
}

type driveReaderStub struct {
	drives map[string]*models.PlacementDrive
}

func (s *driveReaderStub) FindByID(ctx context.Context, id string) (*models.PlacementDrive, error) {
	if d, ok := s.drives[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func newScheduleHandlerFixture(slots *slotRepoStub) *ScheduleHandler {
	drives := &driveReaderStub{drives: map[string]*models.PlacementDrive{
		"d1": {ID: "d1", Status: models.DriveStatusActive},
	}}
	svc := service.NewScheduleService(slots, drives, nil, nil)
	return NewScheduleHandler(svc)
}

func TestScheduleHandlerCreateSlot(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandlerFixture(&slotRepoStub{})

	payload := map[string]interface{}{
		"start_time":   "2026-03-10T09:00:00Z",
		"end_time":     "2026-03-10T09:30:00Z",
		"max_students": 2,
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/drives/d1/slots", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "d1"}}

	handler.CreateSlot(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
}

func TestScheduleHandlerCreateSlotInvalidWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleHandlerFixture(&slotRepoStub{})

	payload := map[string]interface{}{
		"start_time": "2026-03-10T10:00:00Z",
		"end_time":   "2026-03-10T09:00:00Z",
	}
	body, _ := json.Marshal(payload)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/drives/d1/slots", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "d1"}}

	handler.CreateSlot(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerAssignFullSlotReturnsConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	slots := &slotRepoStub{
		slots:  map[string]models.InterviewSlot{"slot1": {ID: "slot1", DriveID: "d1", MaxStudents: 1}},
		counts: map[string]int{"slot1": 1},
	}
	handler := newScheduleHandlerFixture(slots)

	body, _ := json.Marshal(map[string]string{"slot_id": "slot1", "student_id": "s1"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Assign(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "SLOT_FULL", envelope.Error.Code)
	assert.Equal(t, "slot is full", envelope.Error.Message)
}

func TestScheduleHandlerAssignOverlapReturnsConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	slots := &slotRepoStub{
		slots: map[string]models.InterviewSlot{
			"slot1": {ID: "slot1", DriveID: "d1", StartTime: start, EndTime: start.Add(30 * time.Minute), MaxStudents: 3},
		},
		windows: []models.AssignmentWindow{
			{AssignmentID: "a1", SlotID: "slot0", DriveID: "d1", StartTime: start, EndTime: start.Add(time.Hour)},
		},
	}
	handler := newScheduleHandlerFixture(slots)

	body, _ := json.Marshal(map[string]string{"slot_id": "slot1", "student_id": "s1"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/assignments", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Assign(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "SCHEDULE_CONFLICT", envelope.Error.Code)
}

func TestScheduleHandlerUnassignReturnsNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	slots := &slotRepoStub{}
	handler := newScheduleHandlerFixture(slots)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/assignments/a1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	handler.Unassign(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"a1"}, slots.deleted)
}
