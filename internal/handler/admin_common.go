package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/queue"
	"github.com/iliyamo/film-catalog/internal/repository"
)

// dbTimeout bounds every repository call made from a request.
const dbTimeout = 5 * time.Second

// Publisher receives a change event after each successful admin write.
type Publisher interface {
	Publish(ctx context.Context, ev queue.CatalogChangedEvent) error
}

// ObjectStore holds uploaded photo bytes.  *storage.MinioStore satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	URL(key string) string
}

// nopPublisher is used when the broker is switched off.
type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.CatalogChangedEvent) error { return nil }

// NopPublisher returns a Publisher that drops every event.
func NopPublisher() Publisher { return nopPublisher{} }

// writeError maps repository errors onto HTTP responses.  Validation
// problems are 400, unique-key clashes 409, dangling references 422 and
// missing rows 404; anything else is a 500 with the cause logged.
func writeError(c echo.Context, err error) error {
	var (
		verr *model.ValidationError
		dup  *repository.DuplicateKeyError
		ref  *repository.ReferenceNotFoundError
	)
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Error(), "field": verr.Field})
	case errors.As(err, &dup):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists", "constraint": dup.Constraint})
	case errors.As(err, &ref):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "referenced row not found", "constraint": ref.Constraint})
	case repository.IsNotFound(err):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "database timeout"})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// queryID reads an optional positive integer filter; absent means 0.
func queryID(c echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// notify publishes a change event.  A broker failure is only logged: the
// write it describes has already been committed.
func notify(c echo.Context, pub Publisher, entity, action string, id uint64, label fmt.Stringer) {
	if pub == nil {
		return
	}
	ev := queue.CatalogChangedEvent{Entity: entity, Action: action, ID: id}
	if label != nil {
		ev.Label = label.String()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pub.Publish(ctx, ev); err != nil {
		c.Logger().Warnf("publish %s %s %d: %v", entity, action, id, err)
	}
}
