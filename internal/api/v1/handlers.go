package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/ManuelReschke/ChapterFox/app/controllers"
	"github.com/ManuelReschke/ChapterFox/internal/pkg/quota"
)

// APIServer implements the ServerInterface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetEligibility reports whether the session user may generate now.
// A denial because of the quota is still a 200.
func (s *APIServer) GetEligibility(c *fiber.Ctx) error {
	e := controllers.GetDependencies().Eligibility.Check(c.UserContext(), controllers.Identity(c))

	status := fiber.StatusOK
	if !e.IsEligible {
		switch e.Message {
		case quota.MsgAuthenticationRequired:
			status = fiber.StatusUnauthorized
		case quota.MsgUserNotFound:
			status = fiber.StatusNotFound
		case quota.MsgCheckFailed:
			status = fiber.StatusInternalServerError
		}
	}

	return c.Status(status).JSON(Eligibility{
		IsEligible:           e.IsEligible,
		Message:              e.Message,
		RemainingGenerations: e.RemainingGenerations,
	})
}

// PostChapters runs the generation pipeline for a JSON body.
func (s *APIServer) PostChapters(c *fiber.Ctx) error {
	var req GenerateChaptersRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Error{Error: "bad_request", Message: "body must be JSON with a link"})
	}

	res := controllers.GetDependencies().Pipeline.Run(c.UserContext(), controllers.Identity(c), req.Link)
	return c.Status(controllers.StatusFor(res)).JSON(res)
}

// GetChapterSet returns one of the caller's chapter sets.
// Controller reads uuid from route params; wrapper already checked it.
func (s *APIServer) GetChapterSet(c *fiber.Ctx, uuid string) error {
	return controllers.HandleChapterSet(c)
}
