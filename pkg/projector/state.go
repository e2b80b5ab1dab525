package projector

import "github.com/goliatone/go-seoform/pkg/entity"

// FormState exposes the entity being edited by the form.
type FormState interface {
	Entity() (entity.Entity, bool)
}

// State is a minimal FormState.
type State struct {
	Edited entity.Entity
}

// Entity implements FormState.
func (s State) Entity() (entity.Entity, bool) {
	return s.Edited, s.Edited != nil
}

func entityFrom(state FormState) entity.Entity {
	if state == nil {
		return nil
	}
	e, ok := state.Entity()
	if !ok {
		return nil
	}
	return e
}
