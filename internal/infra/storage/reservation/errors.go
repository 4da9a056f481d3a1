package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrStaleStatus возвращается, когда оптимистичная проверка статуса не прошла:
	// статус брони изменился между чтением и обновлением
	ErrStaleStatus = errors.New("reservation.repository: reservation status changed concurrently")

	// ErrSlotTaken возвращается при нарушении уникального индекса
	// (staff_id, start_at, end_at) — страховка от двойного бронирования
	ErrSlotTaken = errors.New("reservation.repository: slot already taken")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)
