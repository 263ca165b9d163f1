package ui

import (
	"fmt"
)

// bindingName is the global the init script forwards page messages to.
const bindingName = "__webdeskBridge"

// bridgeShim gives the page a WebKit-style message handler, so desktop pages
// that call window.webkit.messageHandlers.bridge.postMessage work unchanged.
// Non-string messages are sent as JSON.
const bridgeShim = `(function () {
  var post = function (msg) {
    if (typeof msg !== "string") {
      msg = JSON.stringify(msg);
    }
    return window.` + bindingName + `(msg);
  };
  window.webkit = window.webkit || {};
  window.webkit.messageHandlers = window.webkit.messageHandlers || {};
  try {
    Object.defineProperty(window.webkit.messageHandlers, "bridge", {
      value: { postMessage: post },
      configurable: true
    });
  } catch (e) {
    window.webkit.messageHandlers.bridge = { postMessage: post };
  }
})();`

// BindBridge routes every page message to dispatch. Call before Load.
func (h *Host) BindBridge(dispatch func(raw []byte)) error {
	err := h.view.Bind(bindingName, func(msg string) {
		dispatch([]byte(msg))
	})
	if err != nil {
		return fmt.Errorf("failed to bind bridge: %w", err)
	}
	h.view.Init(bridgeShim)
	return nil
}
