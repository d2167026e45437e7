package api

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// requestID stamps every request with a correlation id, generalizing the
// teacher's statusWriter pattern (middleware.go) from pure status/byte
// capture to a propagated identifier logged on both ends of the request.
func requestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("X-Request-ID", id)
	c.Locals("request_id", id)
	return c.Next()
}

// loggingMiddleware logs end-to-end request duration and response size for
// basic observability, the way the teacher's loggingMiddleware
// (middleware.go) wraps every handler.
func loggingMiddleware(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	duration := time.Since(start).Milliseconds()

	log.Printf(
		"request_id=%s method=%s path=%s status=%d bytes=%d dur=%dms",
		c.Locals("request_id"), c.Method(), c.Path(), c.Response().StatusCode(), len(c.Response().Body()), duration,
	)
	return err
}
