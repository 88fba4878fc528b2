package web

import "strings"

func flashMessage(notice string) string {
	switch strings.TrimSpace(notice) {
	case "result_saved":
		return "Result saved."
	case "result_cleared":
		return "Result cleared."
	case "group_assigned":
		return "Group updated."
	case "group_cleared":
		return "Group reset to the original team."
	case "player_added":
		return "Player added to the roster."
	case "player_removed":
		return "Player removed from the roster."
	case "player_reassigned":
		return "Player reassigned."
	case "league_reset":
		return "League reset. All results, overrides and players were removed."
	case "logged_in":
		return "Signed in as admin."
	case "logged_out":
		return "Signed out."
	}
	return ""
}

func flashError(code string) string {
	switch strings.TrimSpace(code) {
	case "login_required":
		return "Sign in as admin to make changes."
	case "roster_full":
		return "The roster is full."
	case "competitor_taken":
		return "That driver already belongs to another player."
	case "invalid":
		return "Some fields were not accepted."
	case "not_found":
		return "That entry no longer exists."
	}
	return ""
}
