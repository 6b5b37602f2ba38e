package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidstream-accounts/internal/application"
	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	"github.com/oksasatya/vidstream-accounts/pkg/response"
)

// ProfileHandler serves the authenticated profile endpoints.
type ProfileHandler struct {
	Svc            *application.ProfileService
	Logger         *logrus.Logger
	MaxUploadBytes int64
}

func NewProfileHandler(svc *application.ProfileService, logger *logrus.Logger, maxUpload int64) *ProfileHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &ProfileHandler{Svc: svc, Logger: logger, MaxUploadBytes: maxUpload}
}

type updateAccountRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email" binding:"omitempty,email"`
}

func (h *ProfileHandler) CurrentUser(c *gin.Context) error {
	a, err := identity(c)
	if err != nil {
		return err
	}
	pub, err := h.Svc.CurrentUser(a)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, pub, "Current user fetched successfully", nil)
	return nil
}

func (h *ProfileHandler) UpdateAccount(c *gin.Context) error {
	a, err := identity(c)
	if err != nil {
		return err
	}
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return bindError(err)
	}
	pub, err := h.Svc.UpdateAccountDetails(c.Request.Context(), a.ID, application.AccountDetailsInput{
		Fullname: req.Fullname,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, pub, "Account details updated successfully", nil)
	return nil
}

func (h *ProfileHandler) UpdateAvatar(c *gin.Context) error {
	return h.replaceImage(c, "avatar", h.Svc.UpdateAvatar, "Avatar image updated successfully")
}

func (h *ProfileHandler) UpdateCoverImage(c *gin.Context) error {
	return h.replaceImage(c, "coverImage", h.Svc.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdate func(ctx context.Context, accountID string, f *application.FileInput) (*entity.PublicAccount, error)

func (h *ProfileHandler) replaceImage(c *gin.Context, field string, update imageUpdate, msg string) error {
	a, err := identity(c)
	if err != nil {
		return err
	}
	limitBody(c, h.MaxUploadBytes, 1)
	if err := parseMultipart(c, h.MaxUploadBytes); err != nil {
		return err
	}
	f, closeFile, err := formFile(c, field, h.MaxUploadBytes)
	if err != nil {
		return err
	}
	defer closeFile()

	pub, err := update(c.Request.Context(), a.ID, f)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, pub, msg, nil)
	return nil
}

func (h *ProfileHandler) Search(c *gin.Context) error {
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	res, err := h.Svc.SearchAccounts(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		return err
	}
	response.Success(c, http.StatusOK, res, "Accounts fetched successfully", gin.H{"count": len(res)})
	return nil
}
