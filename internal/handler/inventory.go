package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/middleware"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
	"github.com/iliyamo/hospitality-reservation/internal/service"
)

// InventoryHandler serves tables, rooms and menu items. Reads are public,
// writes need inventory rights.
type InventoryHandler struct {
	svc *service.InventoryService
}

// NewInventoryHandler constructs an InventoryHandler over svc.
func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// activeOnly hides inactive entries unless the caller asks for all of them.
func activeOnly(c echo.Context) bool {
	return c.QueryParam("includeInactive") != "true"
}

// CreateTable handles POST /api/tables.
func (h *InventoryHandler) CreateTable(c echo.Context) error {
	var in service.TableInput
	if err := bind(c, &in); err != nil {
		return err
	}
	t, err := h.svc.CreateTable(c.Request().Context(), middleware.Principal(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "table created", t)
}

// ListTables handles GET /api/tables. Inactive tables are hidden unless
// includeInactive=true.
func (h *InventoryHandler) ListTables(c echo.Context) error {
	minCap, err := intQuery(c, "capacity", 0)
	if err != nil {
		return err
	}
	out, err := h.svc.ListTables(c.Request().Context(), repository.TableFilter{
		Location:    strings.TrimSpace(c.QueryParam("location")),
		MinCapacity: minCap,
		ActiveOnly:  activeOnly(c),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "tables retrieved", out)
}

// GetTable handles GET /api/tables/:id.
func (h *InventoryHandler) GetTable(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	t, err := h.svc.GetTable(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "table retrieved", t)
}

// UpdateTable handles PUT /api/tables/:id.
func (h *InventoryHandler) UpdateTable(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.TableInput
	if err := bind(c, &in); err != nil {
		return err
	}
	t, err := h.svc.UpdateTable(c.Request().Context(), middleware.Principal(c), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "table updated", t)
}

// DeleteTable handles DELETE /api/tables/:id. It answers 409 while an
// active booking still holds the table.
func (h *InventoryHandler) DeleteTable(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteTable(c.Request().Context(), middleware.Principal(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "table deleted", nil)
}

// CreateRoom handles POST /api/hotel/rooms.
func (h *InventoryHandler) CreateRoom(c echo.Context) error {
	var in service.RoomInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, err := h.svc.CreateRoom(c.Request().Context(), middleware.Principal(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "room created", r)
}

// ListRooms handles GET /api/hotel/rooms.
func (h *InventoryHandler) ListRooms(c echo.Context) error {
	minCap, err := intQuery(c, "capacity", 0)
	if err != nil {
		return err
	}
	out, err := h.svc.ListRooms(c.Request().Context(), repository.RoomFilter{
		RoomType:     strings.TrimSpace(c.QueryParam("roomType")),
		MinCapacity:  minCap,
		BookableOnly: activeOnly(c),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "rooms retrieved", out)
}

// GetRoom handles GET /api/hotel/rooms/:id.
func (h *InventoryHandler) GetRoom(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	r, err := h.svc.GetRoom(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "room retrieved", r)
}

// UpdateRoom handles PUT /api/hotel/rooms/:id.
func (h *InventoryHandler) UpdateRoom(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.RoomInput
	if err := bind(c, &in); err != nil {
		return err
	}
	r, err := h.svc.UpdateRoom(c.Request().Context(), middleware.Principal(c), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "room updated", r)
}

// DeleteRoom handles DELETE /api/hotel/rooms/:id.
func (h *InventoryHandler) DeleteRoom(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRoom(c.Request().Context(), middleware.Principal(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "room deleted", nil)
}

// CreateMenuItem handles POST /api/menu.
func (h *InventoryHandler) CreateMenuItem(c echo.Context) error {
	var in service.MenuItemInput
	if err := bind(c, &in); err != nil {
		return err
	}
	m, err := h.svc.CreateMenuItem(c.Request().Context(), middleware.Principal(c), in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "menu item created", m)
}

// ListMenu handles GET /api/menu.
func (h *InventoryHandler) ListMenu(c echo.Context) error {
	out, err := h.svc.ListMenu(c.Request().Context(), repository.MenuFilter{
		Category:   strings.TrimSpace(c.QueryParam("category")),
		ActiveOnly: activeOnly(c),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "menu retrieved", out)
}

// GetMenuItem handles GET /api/menu/:id.
func (h *InventoryHandler) GetMenuItem(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.GetMenuItem(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "menu item retrieved", m)
}

// UpdateMenuItem handles PUT /api/menu/:id.
func (h *InventoryHandler) UpdateMenuItem(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in service.MenuItemInput
	if err := bind(c, &in); err != nil {
		return err
	}
	m, err := h.svc.UpdateMenuItem(c.Request().Context(), middleware.Principal(c), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "menu item updated", m)
}

// DeleteMenuItem handles DELETE /api/menu/:id.
func (h *InventoryHandler) DeleteMenuItem(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteMenuItem(c.Request().Context(), middleware.Principal(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "menu item deleted", nil)
}
