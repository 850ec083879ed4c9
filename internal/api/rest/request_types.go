package rest

import "github.com/google/uuid"

// CreateRequestRequest opens an auction for a manual pickup request.
type CreateRequestRequest struct {
	RequesterID uuid.UUID `json:"requester_id" validate:"required"`
	Category    string    `json:"waste_category" validate:"required"`
	QuantityKG  float64   `json:"quantity_kg" validate:"required,gt=0"`
}

// CreateBinAlertRequest opens an auction from a factory bin-sensor alert.
// The waste category comes from the factory record, not the payload.
type CreateBinAlertRequest struct {
	FactoryID  uuid.UUID `json:"factory_id" validate:"required"`
	QuantityKG float64   `json:"quantity_kg" validate:"required,gt=0"`
}

// SubmitBidRequest places or replaces a vendor's bid on a request.
type SubmitBidRequest struct {
	VendorID    uuid.UUID `json:"vendor_id" validate:"required"`
	AmountCents int64     `json:"amount_cents" validate:"required,gt=0"`
}
