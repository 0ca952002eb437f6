package server

import (
	"fakex/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUser handles GET /user
// @Summary Get the current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	user, err := s.userService.GetCurrentUser(c.UserContext(), viewerFrom(c))
	if err != nil {
		return s.respondWithServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserPosts handles GET /user/posts
// @Summary List the current user's posts
// @Tags users
// @Produce json
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListUserPosts(c.UserContext(), viewerFrom(c))
	if err != nil {
		return s.respondWithServiceError(c, err)
	}
	return c.JSON(posts)
}

// UpdateUser handles PUT /user
// @Summary Update the current user's name or picture
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{name=string,picture=string} true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /user [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), viewerFrom(c), service.UpdateProfileInput{
		Name:    req.Name,
		Picture: req.Picture,
	})
	if err != nil {
		return s.respondWithServiceError(c, err)
	}
	return c.JSON(user)
}
