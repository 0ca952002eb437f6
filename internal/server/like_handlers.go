package server

import (
	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /posts/:postId/likes
// @Summary Like a post
// @Tags likes
// @Produce json
// @Param postId path int true "Post ID"
// @Success 201 {object} models.Like
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{postId}/likes [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	like, err := s.likeService.LikePost(c.UserContext(), viewerFrom(c), postID)
	if err != nil {
		return s.respondWithServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(like)
}

// UnlikePost handles DELETE /posts/:postId/likes
// @Summary Remove the caller's like
// @Tags likes
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/{postId}/likes [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.likeService.UnlikePost(c.UserContext(), viewerFrom(c), postID); err != nil {
		return s.respondWithServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Like removed"})
}
