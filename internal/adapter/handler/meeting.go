package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/errors"
	"github.com/meetwise-team/meetwise/internal/adapter/dto/common"
	meetingdto "github.com/meetwise-team/meetwise/internal/adapter/dto/meeting"
	"github.com/meetwise-team/meetwise/internal/domain/entities"
	meetinguse "github.com/meetwise-team/meetwise/internal/usecase/meeting"
	"github.com/meetwise-team/meetwise/internal/usecase/review"
)

// Meeting handles the meeting CRUD and processing endpoints
type Meeting struct {
	meetings *meetinguse.Service
	reviews  *review.Service
	logger   *zap.Logger
}

// NewMeeting creates a meeting handler
func NewMeeting(meetings *meetinguse.Service, reviews *review.Service, logger *zap.Logger) *Meeting {
	return &Meeting{meetings: meetings, reviews: reviews, logger: logger}
}

// Create submits a transcript for later processing
// POST /v1/meetings
func (h *Meeting) Create(c echo.Context) error {
	var req meetingdto.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("project_id must be a UUID"))
	}

	attendees := make([]entities.Attendee, len(req.Attendees))
	for i, attendee := range req.Attendees {
		attendees[i] = entities.Attendee{Name: attendee.Name, Email: attendee.Email}
	}

	var createdBy *uuid.UUID
	if actor := actorFrom(c); actor != uuid.Nil {
		createdBy = &actor
	}

	meeting, err := h.meetings.Create(c.Request().Context(), meetinguse.CreateInput{
		ProjectID:   projectID,
		Title:       req.Title,
		Category:    entities.MeetingCategory(req.Category),
		MeetingDate: req.MeetingDate,
		Attendees:   attendees,
		Transcript:  req.Transcript,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, meetingdto.FromEntity(meeting))
}

// Get returns one meeting
// GET /v1/meetings/:id
func (h *Meeting) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting id must be a UUID"))
	}

	meeting, err := h.meetings.Get(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meetingdto.FromEntity(meeting))
}

// ListByProject returns a project's meetings, newest first
// GET /v1/projects/:id/meetings
func (h *Meeting) ListByProject(c echo.Context) error {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("project id must be a UUID"))
	}

	var req meetingdto.ListMeetingsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid query parameters"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	meetings, err := h.meetings.ListByProject(c.Request().Context(), projectID, req.Limit, req.Offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, common.ListResponse{
		Data: meetingdto.FromEntities(meetings),
		Pagination: &common.PaginationResponse{
			Limit:  req.Limit,
			Offset: req.Offset,
			Count:  len(meetings),
		},
	})
}

// Delete soft-deletes a meeting
// DELETE /v1/meetings/:id
func (h *Meeting) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting id must be a UUID"))
	}

	if err := h.meetings.Delete(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, nil)
}

// Process runs the extraction pipeline for a meeting. The call is
// synchronous: it returns once the meeting reached Review or Failed.
// POST /v1/meetings/:id/process
func (h *Meeting) Process(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting id must be a UUID"))
	}

	if err := h.reviews.Process(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}

	meeting, err := h.meetings.Get(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, meetingdto.FromEntity(meeting))
}
