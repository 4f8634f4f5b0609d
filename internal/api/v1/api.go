// Package apiv1 provides primitives to interact with the openapi HTTP API.
//
// Kept in sync with public/docs/v1/openapi.yml by hand.
package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// Eligibility defines model for Eligibility.
type Eligibility struct {
	IsEligible           bool   `json:"isEligible"`
	Message              string `json:"message"`
	RemainingGenerations int    `json:"remainingGenerations"`
}

// Error defines model for Error.
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// GenerateChaptersRequest defines model for GenerateChaptersRequest.
type GenerateChaptersRequest struct {
	Link string `json:"link"`
}

// Pong defines model for Pong.
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /ping)
	GetPing(c *fiber.Ctx) error
	// (GET /eligibility)
	GetEligibility(c *fiber.Ctx) error
	// (POST /chapters)
	PostChapters(c *fiber.Ctx) error
	// (GET /chapters/{uuid})
	GetChapterSet(c *fiber.Ctx, uuid string) error
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// MiddlewareFunc is a middleware function type.
type MiddlewareFunc fiber.Handler

// GetPing operation middleware
func (siw *ServerInterfaceWrapper) GetPing(c *fiber.Ctx) error {
	return siw.Handler.GetPing(c)
}

// GetEligibility operation middleware
func (siw *ServerInterfaceWrapper) GetEligibility(c *fiber.Ctx) error {
	return siw.Handler.GetEligibility(c)
}

// PostChapters operation middleware
func (siw *ServerInterfaceWrapper) PostChapters(c *fiber.Ctx) error {
	return siw.Handler.PostChapters(c)
}

// GetChapterSet operation middleware
func (siw *ServerInterfaceWrapper) GetChapterSet(c *fiber.Ctx) error {
	uuid := c.Params("uuid")
	if uuid == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid format for parameter uuid")
	}
	return siw.Handler.GetChapterSet(c, uuid)
}

// FiberServerOptions provides options for the Fiber server.
type FiberServerOptions struct {
	BaseURL     string
	Middlewares []MiddlewareFunc
}

// RegisterHandlers creates http.Handler with routing matching OpenAPI spec.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, FiberServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router fiber.Router, si ServerInterface, options FiberServerOptions) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	for _, m := range options.Middlewares {
		router.Use(fiber.Handler(m))
	}

	router.Get(options.BaseURL+"/ping", wrapper.GetPing)

	router.Get(options.BaseURL+"/eligibility", wrapper.GetEligibility)

	router.Post(options.BaseURL+"/chapters", wrapper.PostChapters)

	router.Get(options.BaseURL+"/chapters/:uuid", wrapper.GetChapterSet)
}
