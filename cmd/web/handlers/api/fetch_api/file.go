package fetch_api

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"thirdcoast.systems/fetchbox/cmd/web/handlers/api/fileserver"
	"thirdcoast.systems/fetchbox/cmd/web/handlers/common"
)

// NotFoundMessage is the body of every failed retrieval.
const NotFoundMessage = "File not found or job has expired."

// HandleFile streams a ready artifact once. A complete response releases the
// job; an aborted or partial one hands it back until it expires.
func HandleFile(svc Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := common.RequireUUIDParam(c, "jobId")
		if err != nil {
			return c.String(http.StatusNotFound, NotFoundMessage)
		}

		job, err := svc.Open(id.String())
		if err != nil {
			return c.String(http.StatusNotFound, NotFoundMessage)
		}

		name := filepath.Base(job.Artifact)
		delivered, err := fileserver.ServeAttachment(c, job.Artifact, name, common.AttachmentDisposition(name))
		if err != nil {
			svc.Failed(job, err)
			if errors.Is(err, echo.ErrNotFound) {
				return c.String(http.StatusNotFound, NotFoundMessage)
			}
			return err
		}
		if !delivered {
			slog.Info("fetch: partial delivery", "job_id", job.ID, "status", c.Response().Status, "bytes", c.Response().Size)
			svc.Failed(job, errIncomplete)
			return nil
		}

		svc.Delivered(job)
		return nil
	}
}

var errIncomplete = errors.New("response incomplete")
