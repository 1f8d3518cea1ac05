package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Livo-Africa/radikal-nigeria-sub000/config"
	"github.com/Livo-Africa/radikal-nigeria-sub000/models"
	"github.com/Livo-Africa/radikal-nigeria-sub000/services"
)

// ListOutfits handles POST /api/outfits - the virtual wardrobe listing,
// filtered by category and free-text search.
func ListOutfits(c *gin.Context) {
	db := config.GetDB()

	query := db.Where("active = ?", true).Order("name ASC")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if gender := c.Query("gender"); gender != "" {
		query = query.Where("gender IN ?", []string{gender, "unisex"})
	}

	var outfits []models.Outfit
	if err := query.Find(&outfits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load outfits",
			},
		})
		return
	}

	// Presign image URLs when storage is available; a missing URL just
	// renders as a placeholder client-side.
	if imageService := services.GetImageService(); imageService != nil {
		for i := range outfits {
			if url, err := imageService.GetImageURL(outfits[i].ImageKey); err == nil {
				outfits[i].ImageURL = url
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"outfits": outfits,
		},
	})
}
