package domain

type PaymentRequest struct {
	Amount    Amount `json:"amount" validate:"gt=0"`
	Method    string `json:"method" validate:"required,max=32"`
	Reference string `json:"reference,omitempty" validate:"max=128"`
	PaidAt    string `json:"paid_at,omitempty"`
	Notes     string `json:"notes,omitempty" validate:"max=500"`
}

type Payment struct {
	ID            ID            `json:"id"`
	BookingID     ID            `json:"booking_id"`
	Amount        Amount        `json:"amount"`
	Method        string        `json:"method"`
	Reference     string        `json:"reference,omitempty"`
	PaidAt        string        `json:"paid_at,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
	TotalPaid     Amount        `json:"total_paid,omitempty"`
}
