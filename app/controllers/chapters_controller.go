package controllers

import (
	"errors"

	"github.com/ManuelReschke/ChapterFox/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HandleGenerateChapters runs the generation pipeline for the form field "link".
func HandleGenerateChapters(c *fiber.Ctx) error {
	res := deps.Pipeline.Run(c.UserContext(), Identity(c), c.FormValue("link"))
	return c.Status(StatusFor(res)).JSON(res)
}

// HandleChapterSet shows one chapter set to its owner.
func HandleChapterSet(c *fiber.Ctx) error {
	set, err := deps.ChapterSets.GetByUUID(c.UserContext(), c.Params("uuid"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Chapter set not found"})
	}
	if err != nil {
		deps.Logger.Error().Err(err).Str("uuid", c.Params("uuid")).Msg("Failed to load chapter set")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	// other users' sets are reported as missing
	if set.UserID != usercontext.GetUserID(c) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Chapter set not found"})
	}

	return c.JSON(fiber.Map{
		"id":        set.UUID,
		"title":     set.Title,
		"videoId":   set.VideoID,
		"content":   set.Content,
		"userId":    set.UserID,
		"createdAt": set.CreatedAt,
	})
}
