package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

// envelope общий формат ответа
type envelope struct {
	Status  string `json:"status"`
	Payload any    `json:"payload,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c *gin.Context, status int, payload any) {
	c.JSON(status, envelope{Status: "success", Payload: payload})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope{Status: "error", Error: msg})
}

// fail переводит ошибку домена в HTTP-ответ
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status := mapErrorToStatus(err)
	body := envelope{Status: "error", Error: err.Error()}
	switch {
	case domain.KindOf(err) == domain.KindInsufficientStock:
		items := domain.DeferredItems(err)
		if items == nil {
			items = []domain.ResolvedLineItem{}
		}
		body.Payload = items
	case status == http.StatusInternalServerError:
		// детали хранилища остаются в логе
		body.Error = "internal server error"
	}
	c.AbortWithStatusJSON(status, body)
}

// mapErrorToStatus смотрит на внешнюю ошибку домена: StorageError поверх NotFound остаётся 500
func mapErrorToStatus(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientStock:
		return http.StatusConflict
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
