package request

// ByIDRequest is a common struct for endpoints addressing a booking by its integer ID.
type ByIDRequest struct {
	ID int `uri:"id" binding:"required,min=1"`
}
