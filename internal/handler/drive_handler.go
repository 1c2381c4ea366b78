package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AkshithaKulal/placementpro/internal/models"
	"github.com/AkshithaKulal/placementpro/internal/service"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
	"github.com/AkshithaKulal/placementpro/pkg/response"
)

// DriveHandler exposes placement drive endpoints, including eligibility views.
type DriveHandler struct {
	drives      *service.DriveService
	eligibility *service.EligibilityService
	exports     *service.ExportService
}

// NewDriveHandler constructs DriveHandler. The export service may be nil when
// the exports feature is disabled.
func NewDriveHandler(drives *service.DriveService, eligibility *service.EligibilityService, exports *service.ExportService) *DriveHandler {
	return &DriveHandler{drives: drives, eligibility: eligibility, exports: exports}
}

// List godoc
// @Summary List placement drives
// @Tags Drives
// @Produce json
// @Param status query string false "Filter by lifecycle status"
// @Param company query string false "Filter by company"
// @Param search query string false "Search title or company"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /drives [get]
func (h *DriveHandler) List(c *gin.Context) {
	var filter models.DriveFilter
	filter.Status = models.DriveStatus(c.Query("status"))
	filter.Company = strings.TrimSpace(c.Query("company"))
	filter.Search = strings.TrimSpace(c.Query("search"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	drives, pagination, err := h.drives.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drives, pagination)
}

// Get godoc
// @Summary Get drive detail
// @Tags Drives
// @Produce json
// @Param id path string true "Drive ID"
// @Success 200 {object} response.Envelope
// @Router /drives/{id} [get]
func (h *DriveHandler) Get(c *gin.Context) {
	drive, err := h.drives.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drive, nil)
}

// Create godoc
// @Summary Create a placement drive
// @Tags Drives
// @Accept json
// @Produce json
// @Param payload body service.CreateDriveRequest true "Drive payload"
// @Success 201 {object} response.Envelope
// @Router /drives [post]
func (h *DriveHandler) Create(c *gin.Context) {
	var req service.CreateDriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	drive, err := h.drives.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, drive)
}

// Update godoc
// @Summary Update drive criteria
// @Tags Drives
// @Accept json
// @Produce json
// @Param id path string true "Drive ID"
// @Param payload body service.UpdateDriveRequest true "Drive payload"
// @Success 200 {object} response.Envelope
// @Router /drives/{id} [put]
func (h *DriveHandler) Update(c *gin.Context) {
	var req service.UpdateDriveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	drive, err := h.drives.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drive, nil)
}

// UpdateStatus godoc
// @Summary Transition drive lifecycle status
// @Tags Drives
// @Accept json
// @Produce json
// @Param id path string true "Drive ID"
// @Param payload body service.UpdateDriveStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /drives/{id}/status [patch]
func (h *DriveHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateDriveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	drive, err := h.drives.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drive, nil)
}

// EligibleStudents godoc
// @Summary List students eligible for a drive
// @Tags Drives
// @Produce json
// @Param id path string true "Drive ID"
// @Success 200 {object} response.Envelope
// @Router /drives/{id}/eligible-students [get]
func (h *DriveHandler) EligibleStudents(c *gin.Context) {
	students, err := h.eligibility.EligibleStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"eligible_count": len(students),
		"students":       students,
	}, nil)
}

// EligibleCount godoc
// @Summary Eligible student count for a drive
// @Tags Drives
// @Produce json
// @Param id path string true "Drive ID"
// @Success 200 {object} response.Envelope
// @Router /drives/{id}/eligible-count [get]
func (h *DriveHandler) EligibleCount(c *gin.Context) {
	count, err := h.eligibility.EligibleCount(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"eligible_count": count}, nil)
}

// ExportEligibleStudents godoc
// @Summary Download the eligible-student list
// @Tags Drives
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Drive ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /drives/{id}/eligible-students/export [get]
func (h *DriveHandler) ExportEligibleStudents(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "exports are disabled"))
		return
	}
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
	result, err := h.exports.EligibleStudentsExport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
