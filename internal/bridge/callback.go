package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
)

// Callback names a global function defined by the desktop page.
type Callback string

const (
	CallbackRunningIndicators Callback = "updateRunningIndicators"
	CallbackPowerIcons        Callback = "receivePowerIcons"
	CallbackApplyBackground   Callback = "applyBackground"
	CallbackSavedBackground   Callback = "receiveSavedBackground"
	CallbackDockData          Callback = "receiveDockData"
	CallbackSearchResults     Callback = "receiveSearchResults"
)

// Surface evaluates script in the rendering surface.
type Surface interface {
	Eval(js string)
}

// Script builds a guarded call of cb with payload JSON-encoded. The page may
// not define every callback, so the call only happens if the global exists.
func Script(cb Callback, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s payload: %w", cb, err)
	}
	return fmt.Sprintf("if (typeof %s !== \"undefined\") { %s(%s); }", cb, cb, data), nil
}

// Emitter pushes callback invocations into a Surface.
type Emitter struct {
	surface Surface
	logger  *log.Logger
}

func NewEmitter(surface Surface, logger *log.Logger) *Emitter {
	return &Emitter{surface: surface, logger: logger}
}

func (e *Emitter) Emit(cb Callback, payload any) {
	js, err := Script(cb, payload)
	if err != nil {
		e.logger.Debug("callback dropped", "callback", cb, "err", err)
		return
	}
	e.surface.Eval(js)
}
