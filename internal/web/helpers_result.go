package web

import (
	"fmt"
	"net/http"
	"strings"

	"f1league-app/internal/model"
)

// parseResultForm reads position_1..position_10 and one field per award key.
func parseResultForm(r *http.Request, eventID int) model.EventResult {
	result := model.EventResult{EventID: eventID, Ranked: make([]string, model.ResultSize)}
	for i := range model.ResultSize {
		result.Ranked[i] = strings.TrimSpace(r.FormValue(fmt.Sprintf("position_%d", i+1)))
	}
	for _, key := range model.AwardKeys {
		result.SetAward(key, strings.TrimSpace(r.FormValue(string(key))))
	}
	return result
}
