package models

import (
	"time"

	"github.com/aokiyama/SLB-ReservationService/internal/domain"
)

// Request модели

// TransitionRequest запрос на перевод брони в целевой статус
type TransitionRequest struct {
	TargetStatus string `json:"targetStatus"`
}

// ListReservationsRequest запрос на получение списка броней с фильтрацией
type ListReservationsRequest struct {
	UserID          *int64     `json:"userId,omitempty"`
	SalonID         *int64     `json:"salonId,omitempty"`
	StaffID         *int64     `json:"staffId,omitempty"`
	DateFrom        *time.Time `json:"dateFrom,omitempty"`
	DateTo          *time.Time `json:"dateTo,omitempty"`
	IncludeInactive bool       `json:"includeInactive,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListReservationsRequest) ToDomainFilter() domain.ReservationsFilter {
	return domain.ReservationsFilter{
		UserID:          r.UserID,
		SalonID:         r.SalonID,
		StaffID:         r.StaffID,
		DateFrom:        r.DateFrom,
		DateTo:          r.DateTo,
		IncludeInactive: r.IncludeInactive,
	}
}

// Response модели

// ReservationResponse ответ с данными брони
type ReservationResponse struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	SalonID       int64     `json:"salonId"`
	ServiceID     int64     `json:"serviceId"`
	StaffID       *int64    `json:"staffId,omitempty"`
	StartAt       time.Time `json:"startAt"`
	EndAt         time.Time `json:"endAt"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	AmountJPY     *int64    `json:"amountJpy,omitempty"`
	Note          *string   `json:"note,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком броней
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	return &ReservationResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		SalonID:       r.SalonID,
		ServiceID:     r.ServiceID,
		StaffID:       r.StaffID,
		StartAt:       r.StartAt,
		EndAt:         r.EndAt,
		Status:        string(r.Status),
		PaymentStatus: string(r.PaymentStatus),
		AmountJPY:     r.AmountJPY,
		Note:          r.Note,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, r := range reservations {
		if item := FromDomainReservation(r); item != nil {
			resp.Reservations = append(resp.Reservations, *item)
		}
	}

	return resp
}
