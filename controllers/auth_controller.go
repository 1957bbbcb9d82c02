package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/middlewares"
	"backend/models"
	"backend/services"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

type credentialsInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateMeInput struct {
	DailyGoals *models.DailyGoals `json:"dailyGoals" binding:"required"`
}

func userPayload(u *models.User) gin.H {
	return gin.H{"id": u.ID, "email": u.Email, "dailyGoals": u.DailyGoals}
}

// Register handles POST /api/auth/register.
func (ct *AuthController) Register(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	result, err := ct.auth.Register(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": result.Token, "user": userPayload(result.User)})
}

// Login handles POST /api/auth/login.
func (ct *AuthController) Login(c *gin.Context) {
	var input credentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	result, err := ct.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": result.Token, "user": userPayload(result.User)})
}

// Me handles GET /api/auth/me.
func (ct *AuthController) Me(c *gin.Context) {
	userID := c.GetString(middlewares.ContextUserID)

	user, err := ct.auth.GetSelf(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userPayload(user))
}

// UpdateMe handles PUT /api/auth/me. Only dailyGoals is mutable here.
func (ct *AuthController) UpdateMe(c *gin.Context) {
	userID := c.GetString(middlewares.ContextUserID)

	var input updateMeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dailyGoals is required"})
		return
	}

	user, err := ct.auth.UpdateGoals(c.Request.Context(), userID, *input.DailyGoals)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userPayload(user))
}
