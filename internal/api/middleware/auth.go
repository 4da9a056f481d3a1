package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aokiyama/SLB-ReservationService/internal/api/handlers"
	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"

	msgMissingUserID = "заголовок X-User-ID обязателен"
	msgInvalidUserID = "некорректный заголовок X-User-ID"
	msgInvalidRole   = "некорректный заголовок X-User-Role"
)

type actorContextKey struct{}

// Auth извлекает личность вызывающего из заголовков запроса.
// Криптографическая проверка токена — забота внешнего слоя (LIFF/gateway);
// сюда личность приходит уже проверенной, в виде пары ID + роль.
// Отсутствующая роль трактуется как customer.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get(headerUserID)
		if userIDStr == "" {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgInvalidUserID)
			return
		}

		role := domain.RoleCustomer
		if roleStr := r.Header.Get(headerUserRole); roleStr != "" {
			parsed, ok := domain.ParseRole(roleStr)
			if !ok {
				handlers.RespondUnauthorized(w, msgInvalidRole)
				return
			}
			role = parsed
		}

		actor := domain.Actor{ID: userID, Role: role}
		ctx := context.WithValue(r.Context(), actorContextKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext возвращает актора, положенного middleware Auth.
// Второе значение false на маршрутах без аутентификации.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}
