package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Livo-Africa/radikal-nigeria-sub000/catalog"
)

// ListCategories handles GET /api/catalog/categories
func ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    catalog.Categories(),
	})
}

// ListPackages handles GET /api/catalog/packages - optionally filtered by
// category, and optionally resolving the best fit for an outfit count
// (the wardrobe deep-link contract).
func ListPackages(c *gin.Context) {
	categoryID := c.Query("category")

	if countParam := c.Query("outfitCount"); countParam != "" && categoryID != "" {
		count, err := strconv.Atoi(countParam)
		if err != nil || count < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "outfitCount must be a non-negative integer",
				},
			})
			return
		}
		pkg, ok := catalog.BestFitPackage(categoryID, count)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNKNOWN_CATEGORY",
					"message": "No packages for this category",
				},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"bestFit": pkg},
		})
		return
	}

	if categoryID != "" {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    catalog.PackagesForCategory(categoryID),
		})
		return
	}

	var all []catalog.Package
	for _, cat := range catalog.Categories() {
		all = append(all, catalog.PackagesForCategory(cat.ID)...)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    all,
	})
}

// ListAddOns handles GET /api/catalog/addons
func ListAddOns(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    catalog.AddOns(),
	})
}
