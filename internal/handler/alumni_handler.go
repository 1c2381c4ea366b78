package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AkshithaKulal/placementpro/internal/service"
	appErrors "github.com/AkshithaKulal/placementpro/pkg/errors"
	"github.com/AkshithaKulal/placementpro/pkg/response"
)

// AlumniHandler exposes the alumni self-service surface: profile, job
// referrals, mentorship offers, and a dashboard stats summary.
type AlumniHandler struct {
	alumni *service.AlumniService
}

// NewAlumniHandler constructs AlumniHandler.
func NewAlumniHandler(alumni *service.AlumniService) *AlumniHandler {
	return &AlumniHandler{alumni: alumni}
}

// Profile godoc
// @Summary Get the caller's alumni profile
// @Tags Alumni
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /alumni/profile [get]
func (h *AlumniHandler) Profile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	profile, err := h.alumni.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// ListReferrals godoc
// @Summary List the caller's job referrals
// @Tags Alumni
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /alumni/referrals [get]
func (h *AlumniHandler) ListReferrals(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	referrals, err := h.alumni.ListReferrals(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, referrals, nil)
}

// CreateReferral godoc
// @Summary Share a job referral
// @Tags Alumni
// @Accept json
// @Produce json
// @Param payload body service.CreateReferralRequest true "Referral payload"
// @Success 201 {object} response.Envelope
// @Router /alumni/referrals [post]
func (h *AlumniHandler) CreateReferral(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	referral, err := h.alumni.CreateReferral(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, referral)
}

// GetReferral godoc
// @Summary Get one of the caller's job referrals
// @Tags Alumni
// @Produce json
// @Param id path string true "Referral ID"
// @Success 200 {object} response.Envelope
// @Router /alumni/referrals/{id} [get]
func (h *AlumniHandler) GetReferral(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	referral, err := h.alumni.GetReferral(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, referral, nil)
}

// UpdateReferral godoc
// @Summary Update one of the caller's job referrals
// @Tags Alumni
// @Accept json
// @Produce json
// @Param id path string true "Referral ID"
// @Param payload body service.UpdateReferralRequest true "Partial referral payload"
// @Success 200 {object} response.Envelope
// @Router /alumni/referrals/{id} [patch]
func (h *AlumniHandler) UpdateReferral(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	referral, err := h.alumni.UpdateReferral(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, referral, nil)
}

// ListMentorshipSlots godoc
// @Summary List the caller's mentorship offers
// @Tags Alumni
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /alumni/mentorship [get]
func (h *AlumniHandler) ListMentorshipSlots(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	slots, err := h.alumni.ListMentorshipSlots(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// CreateMentorshipSlot godoc
// @Summary Offer a mentorship time window
// @Tags Alumni
// @Accept json
// @Produce json
// @Param payload body service.CreateMentorshipSlotRequest true "Mentorship slot payload"
// @Success 201 {object} response.Envelope
// @Router /alumni/mentorship [post]
func (h *AlumniHandler) CreateMentorshipSlot(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateMentorshipSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.alumni.CreateMentorshipSlot(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Stats godoc
// @Summary Get the caller's alumni dashboard stats
// @Tags Alumni
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /alumni/stats [get]
func (h *AlumniHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	stats, err := h.alumni.Stats(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
