package handlers

import (
	"errors"
	"net/http"

	"kv-cache-api/internal/keyspace"
	"kv-cache-api/internal/models"
	"kv-cache-api/internal/store"

	"github.com/gin-gonic/gin"
)

// CreateKeyspaceRequest represents the request payload for creating a keyspace
type CreateKeyspaceRequest struct {
	Name            string `json:"name" binding:"required"`
	ExpireMs        int64  `json:"expireMs"`
	SweepIntervalMs int64  `json:"sweepIntervalMs"`
	Limit           int    `json:"limit"`
}

// ConfigureKeyspaceRequest represents a runtime policy change; nil fields
// are left unchanged
type ConfigureKeyspaceRequest struct {
	ExpireMs        *int64 `json:"expireMs"`
	SweepIntervalMs *int64 `json:"sweepIntervalMs"`
}

// CreateKeyspace handles POST /api/keyspaces
func CreateKeyspace(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateKeyspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	def, err := keyspace.GetManager().Create(models.Keyspace{
		Name:            req.Name,
		ExpireMs:        req.ExpireMs,
		SweepIntervalMs: req.SweepIntervalMs,
		Limit:           req.Limit,
		UserID:          userID,
	})
	if err != nil {
		switch {
		case errors.Is(err, keyspace.ErrExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Keyspace already exists"})
		case errors.Is(err, keyspace.ErrInvalidName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Keyspace name is required"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, def)
}

// ListKeyspaces handles GET /api/keyspaces
func ListKeyspaces(c *gin.Context) {
	defs, err := keyspace.GetManager().List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch keyspaces"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keyspaces": defs,
		"count":     len(defs),
	})
}

// DeleteKeyspace handles DELETE /api/keyspaces/:name
func DeleteKeyspace(c *gin.Context) {
	name := c.Param("name")
	if err := keyspace.GetManager().Delete(name); err != nil {
		if errors.Is(err, keyspace.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Keyspace not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete keyspace"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Keyspace deleted successfully",
		"name":    name,
	})
}

// ConfigureKeyspace handles PATCH /api/keyspaces/:name
// Changes the expiration policy of a live keyspace
func ConfigureKeyspace(c *gin.Context) {
	name := c.Param("name")

	var req ConfigureKeyspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	def, err := keyspace.GetManager().Configure(name, req.ExpireMs, req.SweepIntervalMs)
	if err != nil {
		switch {
		case errors.Is(err, keyspace.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Keyspace not found"})
		case errors.Is(err, store.ErrNegativeExpire), errors.Is(err, store.ErrNegativeSweepInterval):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update keyspace"})
		}
		return
	}

	c.JSON(http.StatusOK, def)
}

// KeyspaceStats handles GET /api/keyspaces/:name/stats
func KeyspaceStats(c *gin.Context) {
	name := c.Param("name")
	st, ok := keyspace.GetManager().Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyspace not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":     name,
		"stats":    st.Stats(),
		"sweeping": st.Sweeping(),
	})
}

// FlushKeyspace handles POST /api/keyspaces/:name/flush
// Empties the keyspace and stops its sweeper
func FlushKeyspace(c *gin.Context) {
	name := c.Param("name")
	st, ok := keyspace.GetManager().Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyspace not found"})
		return
	}

	st.Clear()
	c.JSON(http.StatusOK, gin.H{
		"message": "Keyspace flushed successfully",
		"name":    name,
	})
}
