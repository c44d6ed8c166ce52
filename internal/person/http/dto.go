package http

import (
	"time"

	"github.com/restobook/resto-booking-backend/internal/person"
)

type PersonResponse struct {
	Name       string     `json:"name"`
	Phone      string     `json:"phone"`
	Email      string     `json:"email"`
	Address    string     `json:"address"`
	Tags       []string   `json:"tags"`
	IsMember   bool       `json:"is_member"`
	DateJoined *time.Time `json:"date_joined,omitempty"`
	BookingIDs []int      `json:"booking_ids"`
}

func NewPersonResponse(p *person.Person) PersonResponse {
	resp := PersonResponse{
		Name:       p.Name,
		Phone:      string(p.Phone),
		Email:      p.Email,
		Address:    p.Address,
		Tags:       p.Tags,
		IsMember:   p.IsMember,
		DateJoined: p.DateJoined,
		BookingIDs: p.BookingIDs(),
	}
	if resp.Tags == nil {
		resp.Tags = make([]string, 0)
	}
	return resp
}

type CreatePersonRequest struct {
	Name     string   `json:"name" binding:"required"`
	Phone    string   `json:"phone" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Address  string   `json:"address" binding:"required"`
	Tags     []string `json:"tags"`
	IsMember bool     `json:"is_member"`
}

type MembershipRequest struct {
	IsMember *bool `json:"is_member" binding:"required"`
}
