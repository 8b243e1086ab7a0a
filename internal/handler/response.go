package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hospitality-reservation/internal/apperr"
	"github.com/iliyamo/hospitality-reservation/internal/model"
	"github.com/iliyamo/hospitality-reservation/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 12
	maxLimit     = 100
)

// Pagination describes one page of a listing.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// envelope is the body of every JSON response.
type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func respond(c echo.Context, status int, msg string, data any) error {
	return c.JSON(status, envelope{Success: true, Message: msg, Data: data})
}

func respondPage(c echo.Context, msg string, data any, p repository.Page, total int) error {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return c.JSON(http.StatusOK, envelope{
		Success: true,
		Message: msg,
		Data:    data,
		Pagination: &Pagination{
			CurrentPage:  p.Page,
			TotalPages:   pages,
			TotalItems:   total,
			ItemsPerPage: p.Limit,
			HasNextPage:  p.Page < pages,
			HasPrevPage:  p.Page > 1,
		},
	})
}

// ErrorHandler renders every error returned by a handler or middleware as
// an envelope. Internal causes are logged and never sent to the client.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "err", err)
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response", "err", err)
		}
	}
}

func classify(err error) (int, envelope) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		return he.Code, envelope{Message: msg, Error: msg, Code: strings.ReplaceAll(strings.ToLower(http.StatusText(he.Code)), " ", "_")}
	}
	k := apperr.KindOf(err)
	msg := "internal server error"
	var ae *apperr.Error
	if errors.As(err, &ae) && k != apperr.KindInternal {
		msg = ae.Message
	}
	return k.Status(), envelope{Message: msg, Error: msg, Code: k.Code()}
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

func idParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return id, nil
}

func intQuery(c echo.Context, name string, def int) (int, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.Validation("%s must be a number", name)
	}
	return n, nil
}

// pageParams reads page and limit, defaulting to 1 and 12.
func pageParams(c echo.Context) (repository.Page, error) {
	page, err := intQuery(c, "page", defaultPage)
	if err != nil {
		return repository.Page{}, err
	}
	limit, err := intQuery(c, "limit", defaultLimit)
	if err != nil {
		return repository.Page{}, err
	}
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return repository.Page{Page: page, Limit: limit}, nil
}

// dateQuery parses an optional YYYY-MM-DD query parameter.
func dateQuery(c echo.Context, name string) (*time.Time, error) {
	s := strings.TrimSpace(c.QueryParam(name))
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, apperr.Validation("%s must be a date in YYYY-MM-DD format", name)
	}
	return &t, nil
}

func bookingFilter(c echo.Context) (repository.BookingFilter, error) {
	var f repository.BookingFilter
	var err error
	if f.Page, err = pageParams(c); err != nil {
		return f, err
	}
	if f.From, err = dateQuery(c, "startDate"); err != nil {
		return f, err
	}
	if f.To, err = dateQuery(c, "endDate"); err != nil {
		return f, err
	}
	f.Status = model.BookingStatus(strings.TrimSpace(c.QueryParam("status")))
	return f, nil
}

// attachment writes a downloadable file.
func attachment(c echo.Context, contentType, name string, body []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, contentType, body)
}
