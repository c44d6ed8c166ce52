package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/restobook/resto-booking-backend/internal/ledger"
	"github.com/restobook/resto-booking-backend/internal/person"
	"github.com/restobook/resto-booking-backend/internal/pkg/response"
)

type Handler struct {
	ledger *ledger.Ledger
}

func NewHandler(led *ledger.Ledger) *Handler {
	return &Handler{ledger: led}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreatePersonRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	phone, err := person.ParsePhone(body.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	p, err := person.New(body.Name, phone, body.Email, body.Address, body.Tags, body.IsMember)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.ledger.AddPerson(p); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPersonResponse(p))
}

func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	persons := h.ledger.Persons()
	total := len(persons)

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]PersonResponse, 0, end-start)
	for _, p := range persons[start:end] {
		items = append(items, NewPersonResponse(p))
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, page, pageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	phone, err := person.ParsePhone(c.Param("phone"))
	if err != nil {
		response.Error(c, err)
		return
	}

	p, err := h.ledger.FindPerson(phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPersonResponse(p))
}

// Delete removes a person and, with them, every booking they made.
func (h *Handler) Delete(c *gin.Context) {
	phone, err := person.ParsePhone(c.Param("phone"))
	if err != nil {
		response.Error(c, err)
		return
	}

	if _, err := h.ledger.RemovePerson(phone); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) SetMembership(c *gin.Context) {
	phone, err := person.ParsePhone(c.Param("phone"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var body MembershipRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	p, _, err := h.ledger.SetMembership(phone, *body.IsMember)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPersonResponse(p))
}
