// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"permitdesk/internal/delivery/http/middleware"
	"permitdesk/internal/delivery/http/response"
	"permitdesk/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ApplicationHandler holds dependencies for the permit application endpoints.
type ApplicationHandler struct {
	uc     usecase.ApplicationUsecase
	logger *slog.Logger
}

// NewApplicationHandler is the constructor for ApplicationHandler, injected by Fx.
func NewApplicationHandler(uc usecase.ApplicationUsecase, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{uc: uc, logger: logger}
}

// submitApplicationRequest is the payload for lodging a new application.
type submitApplicationRequest struct {
	Kind    string `json:"kind" validate:"required,max=50"`
	Summary string `json:"summary" validate:"max=2000"`
}

// Submit lodges a new application for the authenticated user.
func (h *ApplicationHandler) Submit(c echo.Context) error {
	var req submitApplicationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid application input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	principal := middleware.GetPrincipal(c)

	app, err := h.uc.SubmitApplication(c.Request().Context(), usecase.SubmitApplicationInput{
		ApplicantID: principal.UserID,
		Kind:        req.Kind,
		Summary:     req.Summary,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, app, "Application submitted")
}

// List returns the authenticated user's applications, newest first.
func (h *ApplicationHandler) List(c echo.Context) error {
	principal := middleware.GetPrincipal(c)

	apps, err := h.uc.ListOwnApplications(c.Request().Context(), principal.UserID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, apps, "")
}

// Get returns a single application, enforcing owner-or-reviewer access.
func (h *ApplicationHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid application id")
	}

	principal := middleware.GetPrincipal(c)

	app, err := h.uc.GetApplication(c.Request().Context(), principal, id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, app, "")
}
