package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"travelgateway/internal/domain"
	"travelgateway/internal/domain/models"
	"travelgateway/internal/utils"
)

// Flow selects the seat limit of the form the booking came from.
type Flow string

const (
	FlowModal  Flow = "modal"
	FlowSimple Flow = "simple"
)

func (f Flow) MaxSeats() int {
	if f == FlowModal {
		return 8
	}
	return 10
}

// ParseFlow defaults to FlowSimple when s is empty.
func ParseFlow(s string) (Flow, error) {
	switch Flow(strings.ToLower(strings.TrimSpace(s))) {
	case "", FlowSimple:
		return FlowSimple, nil
	case FlowModal:
		return FlowModal, nil
	default:
		return "", domain.ValidationError{Field: "flow", Msg: fmt.Sprintf("unknown booking flow %q", s)}
	}
}

// NewFormValidator returns a validator with the "phone" rule registered and
// field errors named after json tags.
func NewFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return utils.ValidPhone(fl.Field().String())
	})
	return v
}

// BookingRequestBuilder turns raw form input into a creation request. It
// never performs I/O.
type BookingRequestBuilder struct {
	Pricing   utils.PricingPolicy
	Validator *validator.Validate
}

func NewBookingRequestBuilder(pricing utils.PricingPolicy, v *validator.Validate) BookingRequestBuilder {
	if v == nil {
		v = NewFormValidator()
	}
	return BookingRequestBuilder{Pricing: pricing, Validator: v}
}

func (b BookingRequestBuilder) Build(flow Flow, form models.BookingForm) (models.CreateBookingRequest, utils.Quote, error) {
	var out models.CreateBookingRequest

	if limit := flow.MaxSeats(); form.Seats < 1 || form.Seats > limit {
		return out, utils.Quote{}, domain.ValidationError{
			Field: "seats",
			Msg:   fmt.Sprintf("must be between 1 and %d", limit),
		}
	}
	if err := b.validator().Struct(form); err != nil {
		return out, utils.Quote{}, fieldError(err)
	}
	if form.Children > form.Seats {
		return out, utils.Quote{}, domain.ValidationError{Field: "children", Msg: "cannot exceed seats"}
	}

	travel, err := utils.ParseTravelDate(form.TravelDate)
	if err != nil {
		return out, utils.Quote{}, domain.ValidationError{Field: "travel_date", Msg: "invalid date", Err: err}
	}

	quote, err := b.Pricing.Quote(form.PricePerPerson, form.Seats, form.Children)
	if err != nil {
		return out, utils.Quote{}, domain.ValidationError{Field: "price_per_person", Msg: err.Error(), Err: err}
	}

	out = models.CreateBookingRequest{
		DestinationID: strings.TrimSpace(form.DestinationID),
		Seats:         form.Seats,
		TotalAmount:   quote.Total,
		ContactInfo: models.ContactInfo{
			Phone:            strings.TrimSpace(form.Phone),
			EmergencyContact: strings.TrimSpace(form.EmergencyContact),
		},
		SpecialRequests: strings.TrimSpace(form.SpecialRequests),
	}
	if travel != nil {
		iso := utils.FormatISO(*travel)
		out.TravelDate = &iso
	}
	return out, quote, nil
}

func (b BookingRequestBuilder) validator() *validator.Validate {
	if b.Validator != nil {
		return b.Validator
	}
	return NewFormValidator()
}

func fieldError(err error) error {
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) || len(fes) == 0 {
		return domain.ValidationError{Msg: "invalid booking form", Err: err}
	}
	fe := fes[0]
	msg := "is invalid"
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "phone":
		msg = "must contain 10 to 15 digits"
	case "gt":
		msg = "must be greater than " + fe.Param()
	case "gte":
		msg = "must be at least " + fe.Param()
	case "max":
		msg = "must be at most " + fe.Param() + " characters"
	}
	return domain.ValidationError{Field: fe.Field(), Msg: msg, Err: err}
}
