package rest

import (
	"errors"

	"github.com/Adwaitfound/tlp-provisioner/internal/application"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/commands"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

type Server struct {
	commands *application.Collection
}

func NewServer(commands *application.Collection) *Server {
	return &Server{commands: commands}
}

func RegisterHandlers(app *fiber.App, s *Server) {
	app.Post("/onboarding", s.CreateOnboarding)
	app.Get("/onboarding/:id", s.GetOnboarding)
	app.Post("/onboarding/:id/provision", s.ProvisionOnboarding)
	app.Post("/onboarding/:id/resend-email", s.ResendWelcomeEmail)
	app.Post("/setup", s.SetupInstance)
	app.Post("/projects/:id/comment-notify", s.NotifyProjectComment)
}

func (s *Server) CreateOnboarding(c *fiber.Ctx) error {
	var req dto.ProvisioningRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	requestID, err := s.commands.RequestOnboarding.Execute(c.Context(), req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.OnboardingCreatedResponse{RequestID: requestID})
}

func (s *Server) GetOnboarding(c *fiber.Ctx) error {
	record, err := s.commands.GetStatus.Query(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "onboarding request not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(record)
}

// ProvisionOnboarding runs the whole workflow synchronously. The response
// is always a structured result, 200 on success and 502 when provisioning
// ended in a failed status.
func (s *Server) ProvisionOnboarding(c *fiber.Ctx) error {
	record, err := s.commands.GetStatus.Query(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "onboarding request not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	result := s.commands.ProvisionAgency.Execute(c.Context(), dto.ProvisioningRequest{
		RequestID:  record.RequestID,
		AgencyName: record.AgencyName,
		OwnerEmail: record.OwnerEmail,
		OwnerName:  record.OwnerName,
	})
	if !result.Success {
		return c.Status(fiber.StatusBadGateway).JSON(result)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (s *Server) ResendWelcomeEmail(c *fiber.Ctx) error {
	err := s.commands.ResendWelcome.Execute(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "onboarding request not found"})
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) SetupInstance(c *fiber.Ctx) error {
	var req dto.SetupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	claimed, err := s.commands.ClaimInstance.Execute(c.Context(), req.Token, req.Password, req.FullName)
	if err != nil {
		var invalidToken errs.InvalidTokenError
		if errors.As(err, &invalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(claimed)
}

func (s *Server) NotifyProjectComment(c *fiber.Ctx) error {
	var req commands.CommentNotification
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	if req.ProjectName == "" {
		req.ProjectName = c.Params("id")
	}

	if err := s.commands.NotifyComment.Execute(c.Context(), req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.SendStatus(fiber.StatusAccepted)
}
