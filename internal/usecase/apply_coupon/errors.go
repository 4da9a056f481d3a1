package apply_coupon

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = errors.New("apply_coupon: reservation not found")

	// ErrIneligible возвращается, когда купон не может быть применен:
	// не найден, не активен, вне окна действия, не подходит по области
	// действия либо лимит использований исчерпан
	ErrIneligible = errors.New("apply_coupon: coupon is not eligible")

	// ErrAlreadyRedeemed возвращается, когда у брони уже есть погашение
	ErrAlreadyRedeemed = errors.New("apply_coupon: reservation already has a coupon applied")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("apply_coupon: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("apply_coupon: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("apply_coupon: internal error")
)
