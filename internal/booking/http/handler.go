package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/restobook/resto-booking-backend/internal/booking"
	"github.com/restobook/resto-booking-backend/internal/command"
	"github.com/restobook/resto-booking-backend/internal/person"
	"github.com/restobook/resto-booking-backend/internal/pkg/request"
	"github.com/restobook/resto-booking-backend/internal/pkg/response"
)

// Handler adapts the booking command protocol to HTTP. Every mutating
// endpoint goes through the command session so the displayed booking
// list stays in step with what a client last asked for.
type Handler struct {
	session *command.Session
}

func NewHandler(session *command.Session) *Handler {
	return &Handler{session: session}
}

// Create handles the book command.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	phone, err := person.ParsePhone(body.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.session.Run(command.Book{
		Phone:   phone,
		At:      body.BookedAt,
		Pax:     body.Pax,
		Remarks: body.Remarks,
		Tags:    body.Tags,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCommandResponse(res))
}

// Update handles the bedit command.
func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	res, err := h.session.Run(command.Edit{ID: uri.ID, Patch: body.Patch()})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, newCommandResponse(res))
}

// Delete handles the bdelete command.
func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	res, err := h.session.Run(command.Delete{ID: uri.ID})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, newCommandResponse(res))
}

// Mark handles the mark command.
func (h *Handler) Mark(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	var body MarkBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	status, err := booking.ParseStatus(body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.session.Run(command.Mark{ID: uri.ID, Status: status})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, newCommandResponse(res))
}

// Get returns a single booking.
func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	b, err := h.session.Ledger().Booking(uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// List handles the blist command: upcoming bookings by default, every
// booking with ?scope=all.
func (h *Handler) List(c *gin.Context) {
	res, err := h.session.Run(command.List{All: c.Query("scope") == "all"})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponse(res.Message, res.Bookings))
}

// Today handles the today command: the day's bookings with a per-status
// summary. An optional ?date=YYYY-MM-DD overrides the day of interest.
func (h *Handler) Today(c *gin.Context) {
	var cmd command.Today
	if v := c.Query("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
			return
		}
		cmd.Date = d
	}

	res, err := h.session.Run(cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponse(res.Message, res.Bookings))
}

// Filter handles the filter command. Query parameters: phone, date
// (YYYY-MM-DD) and status, each optional but at least one required.
func (h *Handler) Filter(c *gin.Context) {
	var cmd command.Filter

	if v := c.Query("phone"); v != "" {
		phone, err := person.ParsePhone(v)
		if err != nil {
			response.Error(c, err)
			return
		}
		cmd.Phone = &phone
	}
	if v := c.Query("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
			return
		}
		cmd.Date = &d
	}
	if v := c.Query("status"); v != "" {
		status, err := booking.ParseStatus(v)
		if err != nil {
			response.Error(c, err)
			return
		}
		cmd.Status = &status
	}

	res, err := h.session.Run(cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponse(res.Message, res.Bookings))
}

// ClearRetired handles the clearbookings command.
func (h *Handler) ClearRetired(c *gin.Context) {
	res, err := h.session.Run(command.Clear{})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, CommandResponse{Message: res.Message})
}

func newCommandResponse(res *command.Result) CommandResponse {
	out := CommandResponse{Message: res.Message, Warning: res.Warning}
	if res.Booking != nil {
		b := NewBookingResponse(res.Booking)
		out.Booking = &b
	}
	return out
}
