package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"backend/services"
)

type NutritionController struct {
	fdc *services.FDCService
}

func NewNutritionController(fdc *services.FDCService) *NutritionController {
	return &NutritionController{fdc: fdc}
}

// Lookup handles GET /api/nutrition?query=|fdcId=&servingSize=&unit=.
// Free-text search resolves to the top-ranked match only; there is no
// disambiguation. An unparsable servingSize is ignored, matching the
// scale-fallback behavior of the lookup itself.
func (ct *NutritionController) Lookup(c *gin.Context) {
	query := c.Query("query")
	fdcIDParam := c.Query("fdcId")
	if query == "" && fdcIDParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either query or fdcId query parameter is required"})
		return
	}

	var servingSize *float64
	if raw := c.Query("servingSize"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			servingSize = &v
		}
	}
	unit := c.DefaultQuery("unit", "g")

	var (
		record *services.FoodRecord
		err    error
	)
	if query != "" {
		record, err = ct.fdc.SearchFood(c.Request.Context(), query, servingSize, unit)
	} else {
		var fdcID int64
		fdcID, err = strconv.ParseInt(fdcIDParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fdcId must be an integer"})
			return
		}
		record, err = ct.fdc.FetchByFdcID(c.Request.Context(), fdcID, servingSize, unit)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}
