package httpapi

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/domain"
	"storefront/internal/metrics"
	"storefront/internal/service"
)

const userKey = "user"

func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

// requestLogger пишет одну запись на запрос
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if u := currentUser(c); u != nil {
			attrs = append(attrs, "user_id", u.ID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		switch {
		case status >= 500:
			log.Error("request", attrs...)
		case status >= 400:
			log.Warn("request", attrs...)
		default:
			log.Info("request", attrs...)
		}
	}
}

func instrument(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.Latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func bearerToken(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, found := strings.CutPrefix(h, "Bearer "); found {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie
	}
	return ""
}

// authenticate достаёт токен из заголовка или cookie и загружает пользователя
func authenticate(users *service.UserService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c, cookieName)
		if token == "" {
			fail(c, domain.Unauthorized("missing token"))
			return
		}
		u, err := users.Authenticate(c, token)
		if err != nil {
			fail(c, err)
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

func requireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			fail(c, domain.Unauthorized("unauthorized"))
			return
		}
		if !slices.Contains(roles, u.Role) {
			fail(c, domain.Forbidden("forbidden"))
			return
		}
		c.Next()
	}
}

// canAccessCart пускает владельца корзины и администратора
func canAccessCart(carts *service.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.Param("cid")
		if _, err := uuid.Parse(cid); err != nil {
			badRequest(c, "invalid cart id")
			return
		}
		cart, err := carts.Get(c, cid)
		if err != nil {
			fail(c, err)
			return
		}
		u := currentUser(c)
		if u != nil && u.IsAdmin() {
			c.Next()
			return
		}
		if u == nil || cart.Owner != u.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, envelope{Status: "error", Error: "forbidden"})
			return
		}
		c.Next()
	}
}
