package create_reservation

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("create_reservation: salon not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("create_reservation: service not found")

	// ErrStaffNotFound возвращается, когда мастер не найден
	ErrStaffNotFound = errors.New("create_reservation: staff not found")

	// ErrServiceMismatch возвращается, когда услуга принадлежит другому салону
	ErrServiceMismatch = errors.New("create_reservation: service does not belong to this salon")

	// ErrStaffMismatch возвращается, когда мастер принадлежит другому салону
	ErrStaffMismatch = errors.New("create_reservation: staff does not belong to this salon")

	// ErrInactiveEntity возвращается при попытке брони у неактивного
	// салона, услуги или мастера
	ErrInactiveEntity = errors.New("create_reservation: salon, service or staff is inactive")

	// ErrPastTime возвращается, когда время начала брони уже прошло
	ErrPastTime = errors.New("create_reservation: start time is in the past")

	// ErrNotBookable возвращается, когда слот не попадает целиком
	// в открытый интервал дня (вне рабочих часов либо внутри блэкаута)
	ErrNotBookable = errors.New("create_reservation: slot is outside open intervals")

	// ErrSlotConflict возвращается, когда слот уже занят пересекающейся
	// бронью либо не нашлось свободного мастера
	ErrSlotConflict = errors.New("create_reservation: slot conflicts with an existing reservation")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
