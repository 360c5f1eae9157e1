package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse sends a standard success JSON response
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// CreatedResponse sends a success JSON response with 201 Created
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// DetailedErrorResponse sends an error JSON response carrying the error kind and offending field
func DetailedErrorResponse(c *gin.Context, statusCode int, message, kind, field string) {
	body := gin.H{
		"success": false,
		"error":   message,
		"kind":    kind,
	}
	if field != "" {
		body["field"] = field
	}
	c.JSON(statusCode, body)
}
