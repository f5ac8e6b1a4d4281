package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/riftcoach/stats-api/internal/logic"
)

// riotID is the validated shape of the {riotId} path parameter.
type riotID struct {
	GameName string `validate:"required,min=3,max=16"`
	TagLine  string `validate:"required,min=2,max=5"`
}

// parseRiotID splits "name#tag". The '-' separator is accepted too since
// '#' needs percent-encoding in URLs and several clients send it raw.
func parseRiotID(raw string) (riotID, bool) {
	sep := strings.LastIndexByte(raw, '#')
	if sep < 0 {
		sep = strings.LastIndexByte(raw, '-')
	}
	if sep <= 0 || sep == len(raw)-1 {
		return riotID{}, false
	}
	return riotID{GameName: raw[:sep], TagLine: raw[sep+1:]}, true
}

// SummonerReport handles GET /api/v1/summoners/{riotId}/report.
func (h *Handler) SummonerReport(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "riotId")
	// chi hands the segment back still percent-encoded when the request
	// path escaped the '#'.
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}

	id, ok := parseRiotID(raw)
	if !ok {
		h.errorResponse(w, http.StatusBadRequest, "Riot ID must be in gameName#tagLine format")
		return
	}
	if err := h.validator.Struct(id); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid Riot ID: "+err.Error())
		return
	}

	report, err := h.report.BuildReport(r.Context(), id.GameName, id.TagLine)
	if err != nil {
		if errors.Is(err, logic.ErrPlayerNotFound) {
			h.errorResponse(w, http.StatusNotFound, "Player not found")
			return
		}
		h.logger.Errorw("report build failed", "game_name", id.GameName, "tag_line", id.TagLine, "error", err)
		h.errorResponse(w, http.StatusBadGateway, "Failed to build report")
		return
	}

	h.jsonResponse(w, http.StatusOK, report)
}
