package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse adalah envelope untuk semua response API
type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError -> error 5xx juga dicatat di ErrorLogger beserta route-nya
func RespondError(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		ErrorLogger.Printf("%s %s -> %d: %v", c.Request.Method, c.Request.URL.Path, code, err)
	}
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
	})
}
