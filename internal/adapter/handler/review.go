package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetwise-team/meetwise/errors"
	"github.com/meetwise-team/meetwise/internal/adapter/dto/common"
	reviewdto "github.com/meetwise-team/meetwise/internal/adapter/dto/review"
	"github.com/meetwise-team/meetwise/internal/domain/entities"
	"github.com/meetwise-team/meetwise/internal/domain/repositories"
	"github.com/meetwise-team/meetwise/internal/usecase/review"
)

// Review handles the change set review and publish endpoints
type Review struct {
	reviews *review.Service
	records repositories.RecordRepository
	logger  *zap.Logger
}

// NewReview creates a review handler
func NewReview(reviews *review.Service, records repositories.RecordRepository, logger *zap.Logger) *Review {
	return &Review{reviews: reviews, records: records, logger: logger}
}

// GetChangeSet returns a meeting's pending change set
// GET /v1/meetings/:id/changeset
func (h *Review) GetChangeSet(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting id must be a UUID"))
	}

	cs, err := h.reviews.GetChangeSet(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, reviewdto.FromChangeSet(cs))
}

// AcquireLock takes the exclusive edit lock for the calling reviewer
// POST /v1/meetings/:id/changeset/lock
func (h *Review) AcquireLock(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting id must be a UUID"))
	}

	cs, err := h.reviews.AcquireLock(c.Request().Context(), meetingID, actorFrom(c))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, reviewdto.FromChangeSet(cs))
}

// ReleaseLock gives the edit lock up early
// DELETE /v1/meetings/:id/changeset/lock
func (h *Review) ReleaseLock(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting id must be a UUID"))
	}

	if err := h.reviews.ReleaseLock(c.Request().Context(), meetingID, actorFrom(c)); err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, nil)
}

// UpdateItems writes the reviewer's edited item list under the optimistic
// version guard
// PUT /v1/meetings/:id/changeset/items
func (h *Review) UpdateItems(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting id must be a UUID"))
	}

	var req reviewdto.UpdateItemsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	newVersion, err := h.reviews.UpdateItems(c.Request().Context(), meetingID, actorFrom(c), req.Items, req.LockVersion)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, map[string]int{"lock_version": newVersion})
}

// Publish merges the accepted items into canonical records. Per-item
// failures come back in the report; the meeting publishes only when every
// accepted item applied.
// POST /v1/meetings/:id/publish
func (h *Review) Publish(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("meeting id must be a UUID"))
	}

	var req reviewdto.PublishRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	report, err := h.reviews.Publish(c.Request().Context(), meetingID, actorFrom(c), req.LockVersion)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, report)
}

// ListRecords returns a project's canonical records
// GET /v1/projects/:id/records
func (h *Review) ListRecords(c echo.Context) error {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("project id must be a UUID"))
	}

	var req reviewdto.ListRecordsRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid query parameters"))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	var kind *entities.RecordKind
	if req.Kind != "" {
		k := entities.RecordKind(req.Kind)
		kind = &k
	}

	records, err := h.records.List(c.Request().Context(), projectID, kind, req.Limit, req.Offset)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list records", err))
	}

	return HandleSuccess(h.logger, c, common.ListResponse{
		Data: reviewdto.FromRecords(records),
		Pagination: &common.PaginationResponse{
			Limit:  req.Limit,
			Offset: req.Offset,
			Count:  len(records),
		},
	})
}
