package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, serviceKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, serviceKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, serviceKey string) {
	// Interactive sync and push intake
	r.POST("/sync", handler.PullSync)
	r.POST("/push/:id", handler.PushIntake)

	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Internal endpoints (conditionally enabled with authentication)
	if serviceKey != "" {
		internal := r.Group("/internal")
		internal.Use(authMiddleware(serviceKey))
		{
			internal.POST("/sync", handler.BatchSync)
			internal.POST("/sources/:id/sync", handler.EnqueueSourceSync)
		}
		log.Printf("Internal endpoints enabled with authentication")
	} else {
		log.Printf("Internal endpoints disabled (SERVICE_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"sync":   "/sync (POST)",
			"push":   "/push/<source_id> (POST)",
			"health": "/health",
			"stats":  "/stats",
		}

		if serviceKey != "" {
			endpoints["batch_sync"] = "/internal/sync (POST, requires X-Service-Key header)"
			endpoints["enqueue_sync"] = "/internal/sources/<id>/sync (POST, requires X-Service-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "ContentSync",
			"description": "Content source ingestion with feed pull, push intake, and archive reconciliation",
			"endpoints":   endpoints,
			"internal_api": map[string]interface{}{
				"enabled": serviceKey != "",
				"header":  "X-Service-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware guards the internal endpoints with a shared key
func authMiddleware(serviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-Service-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Service key required",
				"message": "Provide service key in X-Service-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid service key",
				"message": "The provided service key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
