package handlers

import (
	"encoding/json"
	"net/http"

	"kv-cache-api/internal/keyspace"
	"kv-cache-api/internal/realtime"

	"github.com/gin-gonic/gin"
)

// keyEntry is one (key, value) pair of a keyspace listing
type keyEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func keyspaceStore(c *gin.Context) (*keyspace.Store, string, bool) {
	name := c.Param("name")
	st, ok := keyspace.GetManager().Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Keyspace not found"})
		return nil, name, false
	}
	return st, name, true
}

func broadcastKeyEvent(eventType, ks, key string) {
	evt := map[string]any{
		"type":     eventType,
		"keyspace": ks,
		"key":      key,
		"version":  1,
	}
	if bytes, err := json.Marshal(evt); err == nil {
		realtime.GetHub().Broadcast(ks, bytes)
	}
}

// PutKey handles PUT /api/keyspaces/:name/keys/:key
// Stores the request body (any JSON document) under the key. Storing resets
// the key's idle clock.
func PutKey(c *gin.Context) {
	st, ks, ok := keyspaceStore(c)
	if !ok {
		return
	}
	key := c.Param("key")

	body, err := c.GetRawData()
	if err != nil || !json.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must be a valid JSON document"})
		return
	}

	st.Set(key, json.RawMessage(body))
	broadcastKeyEvent("key_set", ks, key)

	c.JSON(http.StatusOK, gin.H{
		"keyspace": ks,
		"key":      key,
		"size":     st.Len(),
	})
}

// GetKey handles GET /api/keyspaces/:name/keys/:key
// A hit refreshes the key's idle clock. With ?peek=true only membership is
// checked and the idle clock is left untouched.
func GetKey(c *gin.Context) {
	st, ks, ok := keyspaceStore(c)
	if !ok {
		return
	}
	key := c.Param("key")

	if c.Query("peek") == "true" {
		c.JSON(http.StatusOK, gin.H{
			"keyspace": ks,
			"key":      key,
			"exists":   st.Has(key),
		})
		return
	}

	value, ok := st.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"keyspace": ks,
		"key":      key,
		"value":    value,
	})
}

// DeleteKey handles DELETE /api/keyspaces/:name/keys/:key
func DeleteKey(c *gin.Context) {
	st, ks, ok := keyspaceStore(c)
	if !ok {
		return
	}
	key := c.Param("key")

	if !st.Delete(key) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	broadcastKeyEvent("key_deleted", ks, key)

	c.JSON(http.StatusOK, gin.H{
		"message": "Key deleted successfully",
		"key":     key,
	})
}

// ListKeys handles GET /api/keyspaces/:name/keys
// Returns the entries in insertion order. Listing is a traversal, not a
// read: it does not refresh idle clocks.
func ListKeys(c *gin.Context) {
	st, ks, ok := keyspaceStore(c)
	if !ok {
		return
	}

	entries := make([]keyEntry, 0, st.Len())
	for k, v := range st.Entries() {
		entries = append(entries, keyEntry{Key: k, Value: v})
	}

	c.JSON(http.StatusOK, gin.H{
		"keyspace": ks,
		"entries":  entries,
		"count":    len(entries),
	})
}
