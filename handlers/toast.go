package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog/log"

	"pricelist/templates"
)

const flashCookie = "flash_toast"

// SetToast sets the HX-Trigger response header so HTMX clients show a toast,
// merging into an existing HX-Trigger JSON object. It also sets a flash cookie
// so the message survives a regular redirect back to the home page.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	toast := map[string]string{
		"message": message,
		"type":    toastType,
	}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			log.Warn().Err(err).Msg("toast: existing HX-Trigger is not valid JSON, overwriting")
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = toast

	data, err := json.Marshal(trigger)
	if err != nil {
		log.Error().Err(err).Msg("toast: failed to marshal HX-Trigger JSON")
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))

	cookieVal, err := json.Marshal(toast)
	if err == nil {
		http.SetCookie(e.Response, &http.Cookie{
			Name:     flashCookie,
			Value:    url.QueryEscape(string(cookieVal)),
			Path:     "/",
			MaxAge:   10,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ErrorToast sets an error toast and responds with the message as plain text.
// HX-Reswap: none keeps HTMX from swapping the error text into the DOM.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}

// redirectHome sets a toast and redirects to the home page, which shows it.
func redirectHome(e *core.RequestEvent, toastType, message string) error {
	SetToast(e, toastType, message)
	return e.Redirect(http.StatusSeeOther, "/")
}

// popFlash reads and clears the flash cookie.
func popFlash(e *core.RequestEvent) *templates.Flash {
	cookie, err := e.Request.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:   flashCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	var toast map[string]string
	if err := json.Unmarshal([]byte(raw), &toast); err != nil {
		log.Debug().Err(err).Msg("toast: ignoring unreadable flash cookie")
		return nil
	}
	return &templates.Flash{Type: toast["type"], Message: toast["message"]}
}
