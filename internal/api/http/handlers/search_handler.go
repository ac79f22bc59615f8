package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/friendship-service/internal/api/dto"
	"github.com/spec-kit/friendship-service/internal/service"
	apperrors "github.com/spec-kit/friendship-service/pkg/util/errorutil"
)

// SearchHandler serves account search.
type SearchHandler struct {
	queries *service.QueryService
}

// NewSearchHandler constructs handler.
func NewSearchHandler(queries *service.QueryService) *SearchHandler {
	return &SearchHandler{queries: queries}
}

// SearchUsers handles GET /api/search-users?query=&page=.
func (h *SearchHandler) SearchUsers(c *fiber.Ctx) error {
	if _, err := currentAccount(c); err != nil {
		return err
	}

	page := 1
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.NewInvalidPage(0)
		}
		page = parsed
	}

	result, err := h.queries.SearchUsers(c.UserContext(), c.Query("query"), page)
	if err != nil {
		return err
	}

	resp := dto.SearchResponse{
		Count:   result.Count,
		Results: dto.NewAccountListResponse(result.Results),
	}
	if result.HasNext {
		next := result.Page + 1
		resp.Next = &next
	}
	if result.HasPrevious {
		prev := result.Page - 1
		resp.Previous = &prev
	}
	return c.JSON(fiber.Map{"data": resp})
}
