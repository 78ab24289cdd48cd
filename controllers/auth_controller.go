package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-service/middlewares"
	"marketplace-service/models"
	"marketplace-service/services"
)

type AuthController struct {
	auth         *services.AuthService
	cookieSecure bool
	tokenTTL     time.Duration
}

func NewAuthController(auth *services.AuthService, cookieSecure bool, tokenTTL time.Duration) *AuthController {
	return &AuthController{auth: auth, cookieSecure: cookieSecure, tokenTTL: tokenTTL}
}

func (ac *AuthController) setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.AuthCookie, token, maxAge, "/", "", ac.cookieSecure, true)
}

func (ac *AuthController) Register(c *gin.Context) {
	defer record(c, "register")

	var req struct {
		Username        string `json:"username" binding:"required"`
		Email           string `json:"email" binding:"required"`
		Password        string `json:"password" binding:"required"`
		PasswordConfirm string `json:"password_confirm" binding:"required"`
		UserType        string `json:"user_type" binding:"required"`
		FirstName       string `json:"first_name"`
		LastName        string `json:"last_name"`
		PhoneNumber     string `json:"phone_number"`
		Address         string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := ac.auth.Register(c.Request.Context(), services.Registration{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		Role:            req.UserType,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	ac.setAuthCookie(c, token, int(ac.tokenTTL.Seconds()))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Welcome " + user.Username + "! Your account has been created successfully.",
		"user":    user,
		"token":   token,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	defer record(c, "login")

	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := ac.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	ac.setAuthCookie(c, token, int(ac.tokenTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// Logout drops the auth cookie. Tokens are stateless and expire on their own.
func (ac *AuthController) Logout(c *gin.Context) {
	ac.setAuthCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "You have been logged out successfully."})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	user, err := ac.auth.Profile(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	defer record(c, "update_profile")

	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req struct {
		FirstName   string `json:"first_name"`
		LastName    string `json:"last_name"`
		Email       string `json:"email" binding:"required"`
		PhoneNumber string `json:"phone_number"`
		Address     string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := ac.auth.UpdateProfile(c.Request.Context(), actor.UserID, models.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (ac *AuthController) RequestPasswordReset(c *gin.Context) {
	defer record(c, "password_reset_request")

	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := ac.auth.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Password reset instructions have been sent to your email.",
		"expires_at": token.ExpiresAt,
	})
}

func (ac *AuthController) ConfirmPasswordReset(c *gin.Context) {
	defer record(c, "password_reset_confirm")

	var req struct {
		Token           string `json:"token" binding:"required"`
		Password        string `json:"password" binding:"required"`
		PasswordConfirm string `json:"password_confirm" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ac.auth.ConsumeReset(c.Request.Context(), req.Token, req.Password, req.PasswordConfirm); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your password has been reset. You can now log in."})
}
