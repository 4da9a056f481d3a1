package models

import (
	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID              int64   `json:"id"`
	SalonID         int64   `json:"salonId"`
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	DurationMinutes int     `json:"durationMinutes"`
	PriceJPY        int64   `json:"priceJpy"`
	IsActive        bool    `json:"isActive"`
}

// WorkingHourResponse рабочие часы салона на один день недели
type WorkingHourResponse struct {
	Weekday  int    `json:"weekday"` // 0=воскресенье .. 6=суббота
	Start    string `json:"start"`   // "10:00"
	End      string `json:"end"`     // "19:00"
	IsClosed bool   `json:"isClosed"`
}

// StaffResponse ответ с данными мастера
type StaffResponse struct {
	ID          int64   `json:"id"`
	DisplayName *string `json:"displayName,omitempty"`
}

// SalonDetailResponse ответ с карточкой салона: услуги, мастера, часы работы
type SalonDetailResponse struct {
	ID           int64                 `json:"id"`
	Name         string                `json:"name"`
	Phone        *string               `json:"phone,omitempty"`
	Description  *string               `json:"description,omitempty"`
	IsActive     bool                  `json:"isActive"`
	Services     []ServiceResponse     `json:"services"`
	Staff        []StaffResponse       `json:"staff"`
	WorkingHours []WorkingHourResponse `json:"workingHours"`
}

// Методы конвертации

// FromDomainService конвертирует domain модель услуги в DTO
func FromDomainService(s *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:              s.ID,
		SalonID:         s.SalonID,
		Name:            s.Name,
		Description:     s.Description,
		DurationMinutes: s.DurationMin,
		PriceJPY:        s.PriceJPY,
		IsActive:        s.IsActive,
	}
}

// FromDomainWorkingHour конвертирует domain модель рабочих часов в DTO
func FromDomainWorkingHour(wh *domain.WorkingHour) WorkingHourResponse {
	return WorkingHourResponse{
		Weekday:  wh.Weekday,
		Start:    wh.Start.String(),
		End:      wh.End.String(),
		IsClosed: wh.IsClosed,
	}
}

// FromDomainStaff конвертирует domain модель мастера в DTO
func FromDomainStaff(s *domain.SalonStaff) StaffResponse {
	return StaffResponse{
		ID:          s.ID,
		DisplayName: s.DisplayName,
	}
}
