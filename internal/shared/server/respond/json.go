package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListBody is the envelope of every collection endpoint.
type ListBody[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Created writes a 201 response for a newly stored entity.
func Created(c *gin.Context, payload any) {
	JSON(c, http.StatusCreated, payload)
}

// Items writes a 200 list envelope. A nil slice renders as [].
func Items[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	OK(c, ListBody[T]{Items: items, Count: len(items)})
}
