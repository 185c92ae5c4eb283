package model

import (
	"time"

	"datasync/internal/mapper"
	"datasync/internal/repository"
	"datasync/internal/validation"
)

// ItemToEntity maps an Item to its stored form.
var ItemToEntity = mapper.Func[Item, ItemEntity](func(i Item) ItemEntity {
	return ItemEntity{ID: i.ID, Name: i.Name, UpdatedAt: i.UpdatedAt}
})

// EntityToItem maps a stored entity back to an Item.
var EntityToItem = mapper.Func[ItemEntity, Item](func(e ItemEntity) Item {
	return Item{ID: e.ID, Name: e.Name, UpdatedAt: e.UpdatedAt}
})

// ItemIdentity addresses entities by their ID field.
var ItemIdentity = repository.Identity[ItemEntity]{
	ID: func(e ItemEntity) string { return e.ID },
	WithID: func(e ItemEntity, id string) ItemEntity {
		e.ID = id
		return e
	},
}

// ItemValidation decides whether a cached entity can be served.
// An entity needs an id and a name; with a non-zero MaxAge it must also have
// been synced within that window.
type ItemValidation struct {
	MaxAge time.Duration
	Now    func() time.Time
}

var _ validation.ObjectValidation[ItemEntity] = ItemValidation{}

func (v ItemValidation) IsValid(e ItemEntity) bool {
	if e.ID == "" || e.Name == "" {
		return false
	}
	if v.MaxAge <= 0 {
		return true
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return !e.SyncedAt.IsZero() && now().Sub(e.SyncedAt) <= v.MaxAge
}

// StampSynced records that e was seen in the authoritative store at t.
func StampSynced(e ItemEntity, t time.Time) ItemEntity {
	e.SyncedAt = t
	return e
}
