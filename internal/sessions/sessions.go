package sessions

import (
	"context"

	"github.com/turanweb/turan/internal/wizard"
)

var dataContextKey = struct{ name string }{"data"}

// Data is the record kept for every issued session id.
type Data struct {
	ID        string `json:"sid"`
	Flow      string `json:"flow"`
	CreatedAt int64  `json:"createdAt"` // Unix seconds
}

func WithData(ctx context.Context, data *Data) context.Context {
	return context.WithValue(ctx, dataContextKey, data)
}

// GetData will return the session data in the Context.
// If the session data isn't found, nil is returned.
func GetData(ctx context.Context) *Data {
	val := ctx.Value(dataContextKey)
	if val == nil {
		return nil
	}

	data, ok := val.(*Data)
	if !ok {
		panic("sessions: session context value of wrong type")
	}
	return data
}

var wizardContextKey = struct{ name string }{"wizard"}

func WithWizard(ctx context.Context, s *wizard.Session) context.Context {
	return context.WithValue(ctx, wizardContextKey, s)
}

// GetWizard will return the visitor's wizard in the Context.
// If no wizard is attached, nil is returned.
func GetWizard(ctx context.Context) *wizard.Session {
	val := ctx.Value(wizardContextKey)
	if val == nil {
		return nil
	}

	s, ok := val.(*wizard.Session)
	if !ok {
		panic("sessions: wizard context value of wrong type")
	}
	return s
}
