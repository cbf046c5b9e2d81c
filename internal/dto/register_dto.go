package dto

type CreateRegisterRequest struct {
	Number   string `json:"number"   validate:"required,min=1"`
	Location string `json:"location"`
}

type RegisterResponse struct {
	ID       string `json:"id"`
	Number   string `json:"number"`
	Location string `json:"location"`
	Active   bool   `json:"active"`
}

type CreatePaymentMethodRequest struct {
	Name              string `json:"name"               validate:"required,min=2"`
	RequiresReference bool   `json:"requires_reference"`
}

type PaymentMethodResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	RequiresReference bool   `json:"requires_reference"`
	Active            bool   `json:"active"`
}
