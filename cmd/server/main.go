package main

import (
	"encoding/json"
	"log"
	"os"

	"kv-cache-api/internal/database"
	"kv-cache-api/internal/keyspace"
	"kv-cache-api/internal/realtime"
	"kv-cache-api/internal/routes"
)

func main() {
	// Init database
	database.InitDB()

	// Load persisted keyspaces; sweeper evictions are pushed to websocket
	// subscribers of the affected keyspace
	_, err := keyspace.Init(database.GetDB(), func(ks, key string, _ json.RawMessage) {
		evt := map[string]any{
			"type":     "key_evicted",
			"keyspace": ks,
			"key":      key,
			"version":  1,
		}
		if bytes, err := json.Marshal(evt); err == nil {
			realtime.GetHub().Broadcast(ks, bytes)
		}
	})
	if err != nil {
		log.Fatal("Failed to load keyspaces: ", err)
	}

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes()

	// Start server
	port := os.Getenv("KV_PORT")
	if port == "" {
		port = ":8008"
	}
	log.Printf("Server starting on port %s", port)
	log.Println("API endpoints:")
	log.Println("  POST   /api/register")
	log.Println("  POST   /api/login")
	log.Println("  POST   /api/keyspaces")
	log.Println("  GET    /api/keyspaces")
	log.Println("  PATCH  /api/keyspaces/:name")
	log.Println("  DELETE /api/keyspaces/:name")
	log.Println("  GET    /api/keyspaces/:name/stats")
	log.Println("  POST   /api/keyspaces/:name/flush")
	log.Println("  GET    /api/keyspaces/:name/keys")
	log.Println("  PUT    /api/keyspaces/:name/keys/:key")
	log.Println("  GET    /api/keyspaces/:name/keys/:key")
	log.Println("  DELETE /api/keyspaces/:name/keys/:key")
	log.Println("  GET    /api/ws")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
