package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/middlewares"
	"backend/services"
)

type MealController struct {
	meals *services.MealService
}

func NewMealController(meals *services.MealService) *MealController {
	return &MealController{meals: meals}
}

// List handles GET /api/meals.
func (ct *MealController) List(c *gin.Context) {
	userID := c.GetString(middlewares.ContextUserID)

	meals, err := ct.meals.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meals)
}

// Create handles POST /api/meals.
func (ct *MealController) Create(c *gin.Context) {
	userID := c.GetString(middlewares.ContextUserID)

	var input services.CreateMealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := ct.meals.Create(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// Get handles GET /api/meals/:id.
func (ct *MealController) Get(c *gin.Context) {
	userID := c.GetString(middlewares.ContextUserID)

	meal, err := ct.meals.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// Update handles PUT /api/meals/:id.
func (ct *MealController) Update(c *gin.Context) {
	userID := c.GetString(middlewares.ContextUserID)

	var input services.UpdateMealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := ct.meals.Update(c.Request.Context(), userID, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// Delete handles DELETE /api/meals/:id.
func (ct *MealController) Delete(c *gin.Context) {
	userID := c.GetString(middlewares.ContextUserID)

	if err := ct.meals.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
