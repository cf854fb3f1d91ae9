// Package loader registers the features that expose HTTP routes.
//
// Each feature implements the Feature interface:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager loads every enabled feature in registration order. The serve command
// registers the mirror feature (pass trigger, last pass, plan) this way.
package loader
