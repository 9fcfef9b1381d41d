package todo

import (
	"strings"
	"time"

	"github.com/jinzhu/copier"
)

// ItemDTO is the transport shape of a todo item.
type ItemDTO struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	IsComplete      bool      `json:"isComplete"`
	Created         time.Time `json:"created"`
	Updated         time.Time `json:"updated"`
	CreatedByUserID int64     `json:"createdByUserId"`
}

func ToDTO(item Item) ItemDTO {
	var dto ItemDTO
	_ = copier.Copy(&dto, &item)
	return dto
}

func ToDTOs(items []Item) []ItemDTO {
	dtos := make([]ItemDTO, len(items))
	for i, item := range items {
		dtos[i] = ToDTO(item)
	}
	return dtos
}

// FromCreate builds a new, not yet stored item owned by ownerID.
func FromCreate(in CreateInput, ownerID int64, now time.Time) Item {
	return Item{
		Title:           strings.TrimSpace(in.Title),
		Description:     in.Description,
		IsComplete:      in.IsComplete,
		Created:         now,
		Updated:         now,
		CreatedByUserID: ownerID,
	}
}
