package get_available_slots

import "errors"

var (
	// ErrSalonNotFound возвращается, когда салон не найден
	ErrSalonNotFound = errors.New("get_available_slots: salon not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("get_available_slots: service not found")

	// ErrStaffNotFound возвращается, когда мастер не найден
	ErrStaffNotFound = errors.New("get_available_slots: staff not found")

	// ErrServiceMismatch возвращается, когда услуга принадлежит другому салону
	ErrServiceMismatch = errors.New("get_available_slots: service does not belong to this salon")

	// ErrStaffMismatch возвращается, когда мастер принадлежит другому салону
	ErrStaffMismatch = errors.New("get_available_slots: staff does not belong to this salon")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)
