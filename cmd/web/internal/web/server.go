package web

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"thirdcoast.systems/fetchbox/cmd/web/handlers/api/fetch_api"
	"thirdcoast.systems/fetchbox/cmd/web/handlers/common"
	staticpkg "thirdcoast.systems/fetchbox/cmd/web/internal/web/utils/static"
	"thirdcoast.systems/fetchbox/internal/config"
	"thirdcoast.systems/fetchbox/static"
)

type Webserver struct {
	*echo.Echo
	conf        *config.Config
	service     fetch_api.Service
	staticCache *staticpkg.StaticCache
}

func NewWebserver(ctx context.Context, conf *config.Config, service fetch_api.Service) (*Webserver, error) {
	e := echo.New()

	assets := static.FS
	if conf.StaticDir != "" {
		slog.Info("Serving front end from disk", "dir", conf.StaticDir)
		assets = os.DirFS(conf.StaticDir)
	}

	// Initialize static cache
	staticCache, err := staticpkg.NewStaticCache(assets)
	if err != nil {
		return nil, err
	}

	webserver := &Webserver{
		Echo:        e,
		conf:        conf,
		service:     service,
		staticCache: staticCache,
	}

	if err = webserver.registerRoutes(); err != nil {
		return nil, err
	}

	if err = webserver.setupMiddleware(); err != nil {
		return nil, err
	}

	return webserver, nil
}

// isDownload matches artifact responses, which must reach the client
// byte for byte so delivery can be confirmed.
func isDownload(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/file/")
}

func (s *Webserver) setupMiddleware() error {
	s.HideBanner = true
	s.HidePort = true
	s.Validator = common.NewRequestValidator()

	// echo parses its own limit syntax; hand it a plain byte count.
	bodyLimit, err := s.conf.BodyLimitBytes()
	if err != nil {
		return fmt.Errorf("body limit %q: %w", s.conf.BodyLimit, err)
	}
	s.Use(middleware.BodyLimit(strconv.FormatUint(bodyLimit, 10) + "B"))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "0",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		ReferrerPolicy:     "same-origin",
	}))
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Skipper: isDownload,
		Level:   5,
	}))
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))

	return nil
}

func (s *Webserver) registerRoutes() error {
	s.POST("/download", fetch_api.HandleSubmit(s.service))
	s.GET("/file/:jobId", fetch_api.HandleFile(s.service))

	// Health check
	s.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})

	// Front end
	s.GET("/static/*", s.staticCache.ServeStaticFile("/static/"))
	for route, page := range map[string]string{
		"/":        "index.html",
		"/info":    "info.html",
		"/credits": "credits.html",
	} {
		if !s.staticCache.Has(page) {
			slog.Warn("front end page missing", "page", page)
			continue
		}
		s.GET(route, s.staticCache.ServePage(page))
	}

	return nil
}
