package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leonfocus/leonfocus/pkg/handlers/accounts"
	"github.com/leonfocus/leonfocus/pkg/handlers/messages"
	"github.com/leonfocus/leonfocus/pkg/handlers/packs"
	"github.com/leonfocus/leonfocus/pkg/handlers/timers"
)

// Api groups the per-area handlers behind one router.
type Api struct {
	Accounts *accounts.AccountsHandler
	Packs    *packs.PacksHandler
	Messages *messages.MessagesHandler
	Timers   *timers.TimersHandler
	ServeWS  http.HandlerFunc
}

// Router mounts every route on a fresh chi router.
func (a *Api) Router() chi.Router {
	r := chi.NewRouter()

	r.Route("/accounts/{userId}", func(r chi.Router) {
		r.Get("/", withUser(a.Accounts.GetAccount))
		r.Put("/timer-settings", withUser(a.Accounts.UpdateTimerSettings))
		r.Post("/packs", withUser(a.Packs.OpenPacks))

		r.Route("/timer", func(r chi.Router) {
			r.Get("/", withUser(a.Timers.GetTimer))
			r.Post("/start", withUser(a.Timers.StartTimer))
			r.Post("/pause", withUser(a.Timers.PauseTimer))
			r.Post("/reset", withUser(a.Timers.ResetTimer))
			r.Post("/ack", withUser(a.Timers.AcknowledgeTimer))
			r.Post("/phase", withUser(a.Timers.SetPhase))
		})
	})

	r.Get("/messages", a.Messages.ListMessages)
	r.Post("/messages", a.Messages.CreateMessage)

	if a.ServeWS != nil {
		r.Get("/ws", a.ServeWS)
	}

	return r
}

// withUser adapts a user-scoped handler to a chi route.
func withUser(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, chi.URLParam(r, "userId"))
	}
}
