package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog/internal/domain"
	"github.com/Skotchmaster/catalog/internal/middleware"
	"github.com/Skotchmaster/catalog/internal/models"
	"github.com/Skotchmaster/catalog/internal/service"
	"github.com/Skotchmaster/catalog/internal/transport"
	"github.com/Skotchmaster/catalog/internal/util"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

type ItemHTTP struct {
	Svc *service.ItemService
}

type itemWithURI struct {
	models.Item
	URI string `json:"uri"`
}

type patchedItem struct {
	models.Item
	Message string `json:"message"`
}

func (h *ItemHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.create")

	var req transport.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("item_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.Create(ctx, middleware.Identity(c), service.ItemInput{
		Itemname:    req.Itemname,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidItemname):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid item name")
		case errors.Is(err, service.ErrInvalidCategory):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid category name")
		case errors.Is(err, service.ErrInvalidDescription):
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid description")
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	uri := itemURI(c, item.ID)
	c.Response().Header().Set(echo.HeaderLocation, uri)
	l.Info("item_create_success", "item_id", item.ID)
	return respondMessage(c, http.StatusCreated, "Created a new item", []itemWithURI{{Item: *item, URI: uri}})
}

func (h *ItemHTTP) GetItems(c echo.Context) error {
	ctx := c.Request().Context()

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.List(ctx, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": http.StatusOK,
		"data":   items,
		"meta":   pageMeta(page, offset, limit, total),
	})
}

func (h *ItemHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := h.Svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Requested item does not exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return respond(c, http.StatusOK, []*models.Item{item})
}

// PatchItem updates the single field named in the path. The body must carry
// that field and nothing else.
func (h *ItemHTTP) PatchItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.patch")

	id, err := itemID(c)
	if err != nil {
		return err
	}
	field := c.Param("field")
	if !domain.IsItemField(field) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid field name")
	}

	// Path params would land in the map too, so only the body is bound.
	body := map[string]any{}
	if err := (&echo.DefaultBinder{}).BindBody(c, &body); err != nil {
		l.Warn("item_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	value, ok := onlyField(body, field)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid input data. Only %s field should be provided", field))
	}

	item, err := h.Svc.PatchField(ctx, middleware.Identity(c), id, field, value)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, field+" field is invalid")
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Item does not exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	l.Info("item_patch_success", "item_id", id, "field", field)
	return respond(c, http.StatusOK, []patchedItem{{
		Item:    *item,
		Message: "successfully updated item " + field,
	}})
}

func (h *ItemHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "item.delete")

	id, err := itemID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, middleware.Identity(c), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Item does not exist")
		}
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	l.Info("item_delete_success", "item_id", id)
	return respond(c, http.StatusOK, []transport.DeletedResponse{{ID: id, Message: "Item has been deleted"}})
}

func (h *ItemHTTP) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing search query")
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.Search(ctx, q, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": http.StatusOK,
		"data":   items,
		"meta":   pageMeta(page, offset, limit, total),
	})
}

func itemID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Item ID should be an integer")
	}
	return uint(id), nil
}

func itemURI(c echo.Context, id uint) string {
	return fmt.Sprintf("%s://%s%s/items/%d", c.Scheme(), c.Request().Host, APIPrefix, id)
}

func onlyField(body map[string]any, field string) (string, bool) {
	if len(body) != 1 {
		return "", false
	}
	switch v := body[field].(type) {
	case string:
		return v, true
	case []string:
		if len(v) == 1 {
			return v[0], true
		}
	}
	return "", false
}

func pageMeta(page, offset, limit int, total int64) echo.Map {
	if page < 1 {
		page = 1
	}
	return echo.Map{
		"page":        page,
		"size":        limit,
		"total":       total,
		"total_pages": util.TotalPages(total, limit),
		"has_prev":    page > 1,
		"has_next":    total-int64(offset) > int64(limit),
	}
}
