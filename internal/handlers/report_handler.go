package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/lediangroup/repair-board/internal/dto"
	"github.com/lediangroup/repair-board/internal/imageutil"
	"github.com/lediangroup/repair-board/internal/models"
	"github.com/lediangroup/repair-board/internal/projection"
	"github.com/lediangroup/repair-board/internal/services"
	"github.com/lediangroup/repair-board/internal/store"
)

type ReportHandler struct {
	store      services.ReportStore
	lifecycle  *services.LifecycleService
	submission *services.SubmissionService
	limiter    *services.SubmitLimiter
	view       *projection.Projection
}

func NewReportHandler(
	reportStore services.ReportStore,
	lifecycle *services.LifecycleService,
	submission *services.SubmissionService,
	limiter *services.SubmitLimiter,
	view *projection.Projection,
) *ReportHandler {
	return &ReportHandler{
		store:      reportStore,
		lifecycle:  lifecycle,
		submission: submission,
		limiter:    limiter,
		view:       view,
	}
}

// List serves the latest projection snapshot, filtered by the optional
// status and facility query parameters (both default to "All").
func (h *ReportHandler) List(c *fiber.Ctx) error {
	reports := h.view.Current()
	open, fixed := projection.Stats(reports)
	filtered := projection.Filter(reports, c.Query("status"), c.Query("facility"))

	return c.JSON(dto.ListReportsResponse{
		Reports:    filtered,
		Facilities: projection.Facilities(reports),
		Stats:      dto.StatsResponse{Open: open, Fixed: fixed},
	})
}

func (h *ReportHandler) Get(c *fiber.Ctx) error {
	report, err := h.store.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report",
		})
	}

	return c.JSON(dto.ReportResponse{
		Report:          *report,
		ImageDirectURL:  imageutil.DirectURL(report.ImageURL),
		ImagePreviewURL: imageutil.PreviewURL(report.ImageURL),
	})
}

// Submit runs the submission pipeline: advisory rate-limit gate, optional
// image upload with inline fallback, then report creation. Store failures
// are returned verbatim so the client can keep the form open and retry.
func (h *ReportHandler) Submit(c *fiber.Ctx) error {
	decision := h.limiter.Allow(c.Context(), c.IP())
	if !decision.Allowed {
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.RateLimitedResponse{
			Error:            true,
			Message:          "Please wait before submitting again",
			RemainingSeconds: decision.RemainingSeconds,
		})
	}

	in := services.SubmissionInput{
		Facility:    c.FormValue("facility"),
		Location:    c.FormValue("location"),
		Item:        c.FormValue("item"),
		Remarks:     c.FormValue("remarks"),
		Reporter:    c.FormValue("reporter"),
		InlineImage: c.FormValue("inlineImage"),
	}

	if fh, err := c.FormFile("image"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to read image file",
			})
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to read image file",
			})
		}
		in.ImageName = fh.Filename
		in.ImageData = data
		in.ImageType = fh.Header.Get("Content-Type")
	}

	result, err := h.submission.Submit(c.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	h.limiter.RecordSubmit(c.Context(), c.IP())
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *ReportHandler) ChangeStatus(c *fiber.Ctx) error {
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.lifecycle.ChangeStatus(c.Params("id"), models.ReportStatus(req.Status)); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Status updated"})
}

// AddComment appends a comment to the report's history. The history
// snapshot is read here, at action time; concurrent appenders race at
// the store as documented.
func (h *ReportHandler) AddComment(c *fiber.Ctx) error {
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.store.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch report",
		})
	}

	event, err := h.lifecycle.AddComment(report.ID.String(), report.History, req.User, req.Content)
	if err != nil {
		if errors.Is(err, services.ErrEmptyComment) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

func (h *ReportHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	upd := services.FieldUpdate{
		Facility: req.Facility,
		Location: req.Location,
		Item:     req.Item,
		Remarks:  req.Remarks,
	}
	if err := h.lifecycle.UpdateDetails(c.Params("id"), upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Report updated"})
}

func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	if err := h.lifecycle.Delete(c.Params("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "Report deleted"})
}
