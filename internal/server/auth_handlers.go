package server

import (
	"fakex/internal/middleware"
	"fakex/internal/models"
	"fakex/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Ping handles GET /ping
// @Summary Liveness ping
// @Tags health
// @Produce plain
// @Success 200 {string} string "pong"
// @Router /ping [get]
func (s *Server) Ping(c *fiber.Ctx) error {
	return c.SendString("pong")
}

// VerifyUser handles POST /verify-user
// @Summary Provision or fetch the caller
// @Description Returns the user for the token subject, creating it from the name, email and picture claims on first call.
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /verify-user [post]
func (s *Server) VerifyUser(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization header required"))
	}

	user, err := s.identity.VerifyUser(c.UserContext(), service.VerifyUserInput{
		Subject: claims.Subject,
		Name:    claims.Name,
		Email:   claims.Email,
		Picture: claims.Picture,
	})
	if err != nil {
		return s.respondWithServiceError(c, err)
	}

	return c.JSON(user)
}
