package http

import (
	"time"

	"github.com/restobook/resto-booking-backend/internal/booking"
)

// PersonTag is the compact person reference embedded in booking responses.
type PersonTag struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type BookingResponse struct {
	ID        int       `json:"id"`
	Person    PersonTag `json:"person"`
	BookedAt  time.Time `json:"booked_at"`
	CreatedAt time.Time `json:"created_at"`
	Pax       int       `json:"pax"`
	Remarks   string    `json:"remarks"`
	Tags      []string  `json:"tags"`
	Status    string    `json:"status"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID:        b.ID,
		BookedAt:  b.At,
		CreatedAt: b.CreatedAt,
		Pax:       b.Pax,
		Remarks:   b.Remarks,
		Tags:      b.Tags,
		Status:    string(b.Status),
	}
	if resp.Tags == nil {
		resp.Tags = make([]string, 0)
	}
	if b.Person != nil {
		resp.Person = PersonTag{Name: b.Person.Name, Phone: string(b.Person.Phone)}
	}
	return resp
}

// CommandResponse wraps the outcome of a booking command: the
// user-facing message plus the affected booking.
type CommandResponse struct {
	Message string           `json:"message"`
	Warning string           `json:"warning,omitempty"`
	Booking *BookingResponse `json:"booking,omitempty"`
}

// ListResponse wraps list and filter results with the command message.
type ListResponse struct {
	Message string            `json:"message"`
	Items   []BookingResponse `json:"items"`
	Total   int               `json:"total"`
}

func NewListResponse(message string, bookings []*booking.Booking) ListResponse {
	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	return ListResponse{Message: message, Items: items, Total: len(items)}
}

type CreateBookingRequest struct {
	Phone    string    `json:"phone" binding:"required"`
	BookedAt time.Time `json:"booked_at" binding:"required"`
	Pax      int       `json:"pax" binding:"required,min=1,max=9999"`
	Remarks  string    `json:"remarks"`
	Tags     []string  `json:"tags"`
}

type UpdateBookingRequest struct {
	BookedAt *time.Time `json:"booked_at"`
	Pax      *int       `json:"pax" binding:"omitempty,min=1,max=9999"`
	Remarks  *string    `json:"remarks"`
	Tags     *[]string  `json:"tags"`
}

// Patch converts the request body into the typed booking patch.
func (r UpdateBookingRequest) Patch() booking.Patch {
	return booking.Patch{
		At:      r.BookedAt,
		Pax:     r.Pax,
		Remarks: r.Remarks,
		Tags:    r.Tags,
	}
}

type MarkBookingRequest struct {
	Status string `json:"status" binding:"required"`
}
