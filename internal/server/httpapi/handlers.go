package httpapi

import (
	"context"

	"github.com/dmitrijs2005/proposals/internal/server/models"
	"github.com/dmitrijs2005/proposals/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// UserAPI is the account side of the service layer.
type UserAPI interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
}

// ProposalAPI is the proposal side of the service layer.
type ProposalAPI interface {
	Create(ctx context.Context, ownerEmail string) (*models.Proposal, bool, error)
	Mine(ctx context.Context, ownerEmail string) (*models.Proposal, error)
	Respond(ctx context.Context, token, answer string) (*services.Ack, error)
	Status(ctx context.Context, proposalID, requesterEmail string) (*services.StatusView, error)
	Notifications(ctx context.Context, userEmail string) ([]models.Notification, error)
}

type handlers struct {
	users     UserAPI
	proposals ProposalAPI
	storage   string
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func (h *handlers) register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := h.users.Register(requestContext(c), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(registerResponse{
		UserID:  u.ID,
		Email:   u.Email,
		Message: "User registered successfully",
	})
}

func (h *handlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	res, err := h.users.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(loginResponse{
		Email:   res.User.Email,
		Token:   res.Token,
		UserID:  res.User.ID,
		Message: "Login successful",
	})
}

func (h *handlers) forgotPassword(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusNotImplemented, "password reset is not available")
}

func (h *handlers) createProposal(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	p, created, err := h.proposals.Create(requestContext(c), id.Email)
	if err != nil {
		return err
	}

	resp := toProposalResponse(p)
	if !created {
		resp.Message = "Proposal already exists"
		return c.JSON(resp)
	}
	resp.Message = "Proposal created successfully"
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *handlers) mine(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	p, err := h.proposals.Mine(requestContext(c), id.Email)
	if err != nil {
		return err
	}
	return c.JSON(toProposalResponse(p))
}

func (h *handlers) respond(c *fiber.Ctx) error {
	var req respondRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	return h.answer(c, req.Response)
}

// fixedAnswer serves the accept and reject shortcuts.
func (h *handlers) fixedAnswer(answer models.Answer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.answer(c, string(answer))
	}
}

func (h *handlers) answer(c *fiber.Ctx, answer string) error {
	ack, err := h.proposals.Respond(requestContext(c), c.Params("token"), answer)
	if err != nil {
		return err
	}

	return c.JSON(respondResponse{
		Message:      ack.Message,
		Status:       "success",
		Response:     string(ack.Response),
		Notification: ack.Notification,
	})
}

func (h *handlers) status(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	view, err := h.proposals.Status(requestContext(c), c.Params("proposalId"), id.Email)
	if err != nil {
		return err
	}

	resp := statusResponse{
		ProposalID: view.ProposalID,
		Answered:   view.Answered,
		AnsweredAt: view.AnsweredAt,
	}
	if view.Answered {
		r := string(view.Response)
		n := view.Notification
		resp.Response = &r
		resp.Notification = &n
	}
	return c.JSON(resp)
}

func (h *handlers) notifications(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}

	list, err := h.proposals.Notifications(requestContext(c), id.Email)
	if err != nil {
		return err
	}

	resp := notificationsResponse{Notifications: make([]notificationResponse, 0, len(list))}
	for _, n := range list {
		resp.Notifications = append(resp.Notifications, notificationResponse{
			ID:         n.ID,
			ProposalID: n.ProposalID,
			Message:    n.Message,
			CreatedAt:  n.CreatedAt,
		})
	}
	return c.JSON(resp)
}

func (h *handlers) health(c *fiber.Ctx) error {
	return c.JSON(healthResponse{OK: true, Storage: h.storage})
}

func toProposalResponse(p *models.Proposal) proposalResponse {
	resp := proposalResponse{
		ProposalID:    p.ID,
		Token:         p.Token,
		ShareableLink: p.ShareableLink,
		CreatedAt:     p.CreatedAt,
		AnsweredAt:    p.RespondedAt,
	}
	if p.Answered() {
		r := string(p.Response)
		resp.Response = &r
	}
	return resp
}
