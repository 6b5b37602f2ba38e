package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/vidstream-accounts/internal/application"
	"github.com/oksasatya/vidstream-accounts/internal/domain/entity"
	"github.com/oksasatya/vidstream-accounts/internal/interface/middleware"
	"github.com/oksasatya/vidstream-accounts/pkg/apperror"
	"github.com/oksasatya/vidstream-accounts/pkg/helpers"
	"github.com/oksasatya/vidstream-accounts/pkg/response"
	"github.com/oksasatya/vidstream-accounts/pkg/validation"
)

// AccountHandler serves registration and the session lifecycle.
type AccountHandler struct {
	Svc            *application.AccountService
	Cookies        *helpers.CookieManager
	Logger         *logrus.Logger
	MaxUploadBytes int64
}

func NewAccountHandler(svc *application.AccountService, cookies *helpers.CookieManager, logger *logrus.Logger, maxUpload int64) *AccountHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &AccountHandler{Svc: svc, Cookies: cookies, Logger: logger, MaxUploadBytes: maxUpload}
}

type registerForm struct {
	Fullname string `form:"fullname"`
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,max=72"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required,notblank"`
	NewPassword string `json:"newPassword" binding:"required,pwd"`
}

type loginResponse struct {
	User         entity.PublicAccount `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func bindError(err error) error {
	return apperror.Validation("invalid payload").WithDetails(validation.ToDetails(err))
}

func identity(c *gin.Context) (*entity.PublicAccount, error) {
	a := middleware.CurrentAccount(c)
	if a == nil {
		return nil, apperror.Auth("Unauthorized request")
	}
	return a, nil
}

func (h *AccountHandler) Register(c *gin.Context) error {
	limitBody(c, h.MaxUploadBytes, 2)
	if err := parseMultipart(c, h.MaxUploadBytes); err != nil {
		return err
	}
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		return bindError(err)
	}
	avatar, closeAvatar, err := formFile(c, "avatar", h.MaxUploadBytes)
	if err != nil {
		return err
	}
	defer closeAvatar()
	cover, closeCover, err := formFile(c, "coverImage", h.MaxUploadBytes)
	if err != nil {
		return err
	}
	defer closeCover()

	account, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Fullname:   form.Fullname,
		Username:   form.Username,
		Email:      form.Email,
		Password:   form.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		return err
	}
	response.Success(c, http.StatusCreated, account, "User registered successfully", nil)
	return nil
}

func (h *AccountHandler) Login(c *gin.Context) error {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return bindError(err)
	}
	sess, err := h.Svc.Login(c.Request.Context(), application.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	t := sess.Tokens
	h.Cookies.SetPair(c, t.AccessToken, t.AccessTokenExpiry, t.RefreshToken, t.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, loginResponse{
		User:         sess.Account,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
	}, "User logged in successfully", expiryMeta(t))
	return nil
}

func (h *AccountHandler) Logout(c *gin.Context) error {
	a, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Logout(c.Request.Context(), a.ID); err != nil {
		return err
	}
	h.Cookies.Clear(c)
	response.Success(c, http.StatusOK, gin.H{}, "User logged out successfully", nil)
	return nil
}

// Refresh takes the refresh token from the refreshToken cookie, falling back
// to the JSON body.
func (h *AccountHandler) Refresh(c *gin.Context) error {
	token, _ := c.Cookie(helpers.RefreshTokenCookie)
	if strings.TrimSpace(token) == "" && c.Request.ContentLength != 0 {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return bindError(err)
		}
		token = req.RefreshToken
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), token)
	if err != nil {
		return err
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "Access token refreshed", expiryMeta(pair))
	return nil
}

func (h *AccountHandler) ChangePassword(c *gin.Context) error {
	a, err := identity(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return bindError(err)
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), a.ID, application.ChangePasswordInput{
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		return err
	}
	response.Success(c, http.StatusOK, gin.H{}, "Password changed successfully", nil)
	return nil
}

func expiryMeta(t application.TokenPair) gin.H {
	return gin.H{"access_expires_at": t.AccessTokenExpiry, "refresh_expires_at": t.RefreshTokenExpiry}
}
