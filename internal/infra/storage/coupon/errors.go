package coupon

import "errors"

var (
	// ErrCouponNotFound возвращается, когда купон не найден
	ErrCouponNotFound = errors.New("coupon.repository: coupon not found")

	// ErrRedemptionExists возвращается при попытке второй раз погасить купон
	// для одной и той же брони (уникальный индекс по reservation_id)
	ErrRedemptionExists = errors.New("coupon.repository: reservation already has a redemption")

	// ErrRedemptionNotFound возвращается, когда запись о погашении не найдена
	ErrRedemptionNotFound = errors.New("coupon.repository: redemption not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("coupon.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("coupon.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("coupon.repository: failed to scan row")
)
