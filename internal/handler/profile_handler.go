package handler

import (
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/service"
	"github.com/Goh0809/Eventora-Backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetMe handles GET /profiles/me
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, profile)
}

// UpdateMe handles PUT /profiles/me
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), userID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, profile)
}

// UploadAvatar handles POST /profiles/upload-avatar
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	file, err := formFile(c, "file")
	if err != nil {
		bindError(c, err)
		return
	}
	if file == nil {
		response.BadRequest(c, "file is required")
		return
	}

	result, err := h.profileService.UploadAvatar(c.Request.Context(), userID, file)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// GetPublic handles GET /profiles/:user_id
func (h *ProfileHandler) GetPublic(c *gin.Context) {
	profile, err := h.profileService.Public(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, profile)
}
