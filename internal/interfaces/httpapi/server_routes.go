package httpapi

import "net/http"

const nightPath = "/leagues/{leagueId}/nights/{nightId}"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// registerNightRoutes covers the night lifecycle, the snapshot read and the realtime feed.
func registerNightRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /leagues/{leagueId}/nights", handler.CreateNight)
	mux.HandleFunc("GET "+nightPath, handler.GetNight)
	mux.HandleFunc("POST "+nightPath+"/start", handler.StartNight)
	mux.HandleFunc("POST "+nightPath+"/end", handler.EndNight)
	mux.HandleFunc("GET "+nightPath+"/realtime", handler.Realtime)
}

func registerSessionRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST "+nightPath+"/checkin", handler.CheckIn)
	mux.HandleFunc("DELETE "+nightPath+"/checkin", handler.UncheckIn)

	mux.HandleFunc("POST "+nightPath+"/partnership-request", handler.SendPartnershipRequest)
	mux.HandleFunc("POST "+nightPath+"/partnership-accept", handler.AcceptPartnershipRequest)
	mux.HandleFunc("POST "+nightPath+"/partnership-reject", handler.RejectPartnershipRequest)
	mux.HandleFunc("DELETE "+nightPath+"/partnership", handler.RemovePartnership)

	mux.HandleFunc("POST "+nightPath+"/matches", handler.CreateMatches)
	mux.HandleFunc("POST "+nightPath+"/matches/{matchId}/cancel", handler.CancelMatch)
	mux.HandleFunc("POST "+nightPath+"/matches/{matchId}/override-score", handler.OverrideScore)

	mux.HandleFunc("POST "+nightPath+"/submit-score", handler.SubmitScore)
	mux.HandleFunc("POST "+nightPath+"/confirm-score", handler.ConfirmScore)
	mux.HandleFunc("POST "+nightPath+"/dispute-score", handler.DisputeScore)
	mux.HandleFunc("POST "+nightPath+"/cancel-score", handler.CancelScore)
}
