package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog/pkg/logging"
)

// respond writes the success envelope. data must already be a slice.
func respond(c echo.Context, code int, data any) error {
	return c.JSON(code, echo.Map{
		"status": code,
		"data":   data,
	})
}

func respondMessage(c echo.Context, code int, msg string, data any) error {
	body := echo.Map{
		"status":  code,
		"message": msg,
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(code, body)
}

// ErrorHandler renders every error as {"status": code, "error": message}.
// Anything that is not an *echo.HTTPError is reported as a bare 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal error"

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		case nil:
			msg = http.StatusText(code)
		default:
			msg = fmt.Sprint(m)
		}
	}

	if code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", code, "error", err)
		msg = "internal error"
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(code)
	} else {
		werr = c.JSON(code, echo.Map{
			"status": code,
			"error":  msg,
		})
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
	}
}
