package response

import (
	"github.com/google/uuid"

	"giftcode-market/internal/usecase/shared"
)

type StoreResponse struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"ownerId"`
	Name    string    `json:"name"`
	Status  string    `json:"status"`
}

func FromStoreSnapshot(snap *shared.StoreSnapshot) StoreResponse {
	return StoreResponse{
		ID:      snap.ID,
		OwnerID: snap.OwnerID,
		Name:    snap.Name,
		Status:  snap.Status,
	}
}

type ProductCreatedResponse struct {
	ID uuid.UUID `json:"id"`
}
