package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/meetwise-team/meetwise/errors"
)

const (
	// ActorHeader identifies the acting reviewer. Authentication itself is an
	// upstream concern (gateway/session layer); the core only needs a stable
	// actor identity for locks and the audit trail.
	ActorHeader = "X-Actor-ID"

	actorContextKey = "actor_id"
)

// RequireActor rejects requests that carry no parseable actor identity
func RequireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(ActorHeader)
		if raw == "" {
			return HandleError(nil, c, errors.ErrUnauthenticated())
		}
		actor, err := uuid.Parse(raw)
		if err != nil {
			return HandleError(nil, c, errors.ErrInvalidArgument("X-Actor-ID must be a UUID"))
		}
		c.Set(actorContextKey, actor)
		return next(c)
	}
}

// actorFrom reads the actor set by RequireActor
func actorFrom(c echo.Context) uuid.UUID {
	if actor, ok := c.Get(actorContextKey).(uuid.UUID); ok {
		return actor
	}
	return uuid.Nil
}
