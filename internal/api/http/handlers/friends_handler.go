package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/friendship-service/internal/api/dto"
	"github.com/spec-kit/friendship-service/internal/auth"
	"github.com/spec-kit/friendship-service/internal/domain"
	"github.com/spec-kit/friendship-service/internal/service"
	apperrors "github.com/spec-kit/friendship-service/pkg/util/errorutil"
)

// FriendsHandler serves friend-request actions and the derived views.
type FriendsHandler struct {
	friendship *service.FriendshipService
	queries    *service.QueryService
}

// NewFriendsHandler constructs handler.
func NewFriendsHandler(friendship *service.FriendshipService, queries *service.QueryService) *FriendsHandler {
	return &FriendsHandler{friendship: friendship, queries: queries}
}

// FriendRequest handles POST /api/friend-request.
func (h *FriendsHandler) FriendRequest(c *fiber.Ctx) error {
	caller, err := currentAccount(c)
	if err != nil {
		return err
	}

	var req dto.FriendRequestAction
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	result, err := h.friendship.HandleAction(c.UserContext(), caller.ID, req.Action, req.RecipientID)
	if err != nil {
		return err
	}

	status := http.StatusOK
	message := service.MsgRequestAccepted
	switch result.Status {
	case domain.FriendRequestStatusPending:
		status = http.StatusCreated
		message = service.MsgRequestSent
	case domain.FriendRequestStatusRejected:
		message = service.MsgRequestRejected
	}

	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"data":    dto.NewFriendRequestResponse(result),
	})
}

// Friends handles GET /api/friends.
func (h *FriendsHandler) Friends(c *fiber.Ctx) error {
	caller, err := currentAccount(c)
	if err != nil {
		return err
	}

	friends, err := h.queries.ListFriends(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountListResponse(friends)})
}

// PendingRequests handles GET /api/pending-requests.
func (h *FriendsHandler) PendingRequests(c *fiber.Ctx) error {
	caller, err := currentAccount(c)
	if err != nil {
		return err
	}

	senders, err := h.queries.ListPending(c.UserContext(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountListResponse(senders)})
}

func currentAccount(c *fiber.Ctx) (*domain.Account, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Account, nil
}
