package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Livo-Africa/radikal-nigeria-sub000/config"
	"github.com/Livo-Africa/radikal-nigeria-sub000/models"
	"github.com/Livo-Africa/radikal-nigeria-sub000/services"
	"github.com/Livo-Africa/radikal-nigeria-sub000/utils"
)

// UploadOrderFile handles POST /api/orders/upload-file - attaches one
// photo to a pending order. The client sends these one at a time and
// checkpoints after each, so the handler is idempotent per (order, key):
// a re-upload overwrites the stored object and re-records the same key.
func UploadOrderFile(c *gin.Context) {
	orderID := c.PostForm("orderId")
	fileKey := c.PostForm("fileKey")
	if orderID == "" || fileKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "orderId and fileKey are required",
			},
		})
		return
	}

	// Only the derived key grammar reaches storage paths.
	if !utils.ValidFileKey(fileKey) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_KEY",
				"message": "Unrecognized file key",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "file is required",
			},
		})
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Where("order_id = ?", orderID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
		return
	}

	s3Key, err := services.GetImageService().UploadOrderImage(orderID, fileKey, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": "Failed to store file",
			},
		})
		return
	}

	if err := order.AddUploadedFileKey(s3Key); err == nil {
		if err := db.Save(&order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to record uploaded file",
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orderId": orderID,
			"fileKey": fileKey,
			"s3Key":   s3Key,
		},
	})
}
