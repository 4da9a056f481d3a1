package apply_coupon

import "github.com/aokiyama/SLB-ReservationService/internal/domain"

// Request модель запроса на применение купона к брони
type Request struct {
	ReservationID int64
	Actor         domain.Actor
	Code          *string // nil = подобрать лучший подходящий купон
}

// Response модель ответа с результатом применения
type Response struct {
	Coupon         *domain.Coupon // nil, когда подходящего купона не нашлось
	FinalAmountJPY int64
}
