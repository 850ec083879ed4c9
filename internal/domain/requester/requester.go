package requester

import "github.com/google/uuid"

// Profile is a household or business requester record, owned by the
// external account system. The auction core only reads the fields it
// denormalizes onto a pickup request.
type Profile struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Phone   string    `json:"phone"`
}

// Factory is an industrial site whose bin sensors raise pickup alerts.
type Factory struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Location      string    `json:"location"`
	WasteCategory string    `json:"waste_category"`
}
