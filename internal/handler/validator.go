package handler

import "github.com/iliyamo/film-catalog/internal/model"

// Validator plugs the model's struct-tag validation into echo, so handlers
// can call c.Validate on request bodies.
type Validator struct{}

func (Validator) Validate(i interface{}) error { return model.Validate(i) }
