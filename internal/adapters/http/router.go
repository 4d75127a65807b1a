package http

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/okrel/parley/internal/adapters/signal"
	"github.com/okrel/parley/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// TrimSlashMiddleware canonicalizes URLs by 301-redirecting away a
// trailing slash, query string preserved.
func TrimSlashMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if len(p) > 1 && strings.HasSuffix(p, "/") {
			target := strings.TrimRight(p, "/")
			if raw := c.Request.URL.RawQuery; raw != "" {
				target += "?" + raw
			}
			c.Redirect(http.StatusMovedPermanently, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.SignalWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ParleySessions", store))
	r.Use(ClientTokenMiddleware())
	r.Use(TrimSlashMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/index.html")
	})

	// A join URL without a room name has nowhere to go.
	r.GET("/join", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/")
	})
	r.GET("/join/*room", func(c *gin.Context) {
		if c.Request.URL.RawQuery != "" {
			log.Info().Str("module", "adapters.http").Str("url", c.Request.URL.String()).
				Str("to", c.Request.URL.Path).Msg("redirect")
			c.Redirect(http.StatusFound, c.Request.URL.Path)
			return
		}
		c.File(filepath.Join(cfg.StaticPath, "client.html"))
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctl.HandleSignal(ctx, c)
	})

	api.GET("/stats", func(c *gin.Context) {
		rooms := ctl.Store.List()
		c.JSON(http.StatusOK, gin.H{
			"rooms": rooms,
			"count": len(rooms),
		})
	})

	// Everything else falls through to the static client assets.
	r.NoRoute(gin.WrapH(http.FileServer(gin.Dir(cfg.StaticPath, false))))

	return r
}
