package fetch_api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"thirdcoast.systems/fetchbox/cmd/web/handlers/common"
	"thirdcoast.systems/fetchbox/internal/fetcherr"
	"thirdcoast.systems/fetchbox/internal/format"
)

// Flag accepts true/false, "on", "yes", "1" and friends from both form and
// JSON bodies.
type Flag bool

func (f *Flag) UnmarshalParam(src string) error {
	*f = Flag(common.FormBool(src))
	return nil
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*f = Flag(t)
	case string:
		*f = Flag(common.FormBool(t))
	case float64:
		*f = Flag(t != 0)
	default:
		*f = false
	}
	return nil
}

// SubmitRequest is the body of POST /download.
type SubmitRequest struct {
	MediaURL         string `json:"mediaUrl" form:"mediaUrl" validate:"required"`
	Format           string `json:"format" form:"format" validate:"omitempty,max=16"`
	Resolution       string `json:"resolution" form:"resolution" validate:"omitempty,max=16"`
	HighestFPS       string `json:"highest_fps" form:"highest_fps" validate:"omitempty,oneof=yes no"`
	IncludeSubtitles Flag   `json:"includeSubtitles" form:"includeSubtitles"`
}

// UnmarshalJSON lets resolution arrive as a number or a string.
func (r *SubmitRequest) UnmarshalJSON(b []byte) error {
	type plain SubmitRequest
	aux := struct {
		*plain
		Resolution json.RawMessage `json:"resolution"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	raw := strings.TrimSpace(string(aux.Resolution))
	switch {
	case raw == "" || raw == "null":
		r.Resolution = ""
	case strings.HasPrefix(raw, `"`):
		s, err := strconv.Unquote(raw)
		if err != nil {
			return err
		}
		r.Resolution = s
	default:
		r.Resolution = raw
	}
	return nil
}

// SubmitResponse is returned once the artifact is ready.
type SubmitResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// HandleSubmit runs the whole pipeline inside the request and replies with
// the one-time retrieval path.
func HandleSubmit(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req SubmitRequest
		if err := c.Bind(&req); err != nil {
			return common.JSONError(c, fetcherr.Wrap(fetcherr.ErrClientInput, "Invalid request body.", err))
		}
		if err := c.Validate(&req); err != nil {
			return common.JSONError(c, requestError(err))
		}

		opts, err := format.ParseOptions(req.Format, req.Resolution, req.HighestFPS, bool(req.IncludeSubtitles))
		if err != nil {
			return common.JSONError(c, err)
		}

		// A client that hangs up does not stop the download; the job expires instead.
		ctx := context.WithoutCancel(c.Request().Context())
		path, err := svc.Submit(ctx, req.MediaURL, opts)
		if err != nil {
			return common.JSONError(c, err)
		}
		return c.JSON(http.StatusOK, SubmitResponse{DownloadURL: path})
	}
}

// requestError turns validator output into the message shown to the user.
func requestError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fetcherr.Wrap(fetcherr.ErrClientInput, "Invalid request.", err)
	}
	fe := verrs[0]
	switch fe.Field() {
	case "MediaURL":
		return fetcherr.New(fetcherr.ErrClientInput, "Missing mediaUrl")
	case "HighestFPS":
		return fetcherr.New(fetcherr.ErrClientInput, `highest_fps must be "yes" or "no".`)
	default:
		return fetcherr.Wrap(fetcherr.ErrClientInput, "Invalid "+strings.ToLower(fe.Field())+".", err)
	}
}
