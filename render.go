package tram

import (
	"errors"
	"fmt"
	"strings"

	"setram.dev/tram/model"
)

const (
	loadingText      = "Chargement..."
	noTramsText      = "Aucun tramway disponible"
	atStationText    = "En station"
	chooseStationMsg = "Sélectionner une station"
	chooseRouteMsg   = "Sélectionner le sens"
)

// FormatRemaining renders a countdown the way the schedule board
// shows it.
func FormatRemaining(r model.Remaining) string {
	if r.Minutes > 0 {
		return fmt.Sprintf("%d min", r.Minutes)
	}
	return atStationText
}

// FormatDelayArrival renders an arrival returned by a delay
// application. Remaining time is shown as the server computed it.
func FormatDelayArrival(a model.DelayArrival) string {
	return fmt.Sprintf("Tram %d: %s (Temps restant: %d min)", a.Ordinal, a.Time, a.Remaining)
}

// RenderView turns an engine view into display lines.
func RenderView(v View) []string {
	switch v.State {
	case NoSelection:
		return []string{chooseStationMsg}
	case StationChosen:
		return []string{chooseRouteMsg}
	}

	switch v.Fetch {
	case FetchIdle, FetchLoading:
		return []string{loadingText}
	case FetchError:
		return []string{v.Error}
	}

	if len(v.Remaining) == 0 {
		return []string{noTramsText}
	}

	lines := make([]string, 0, len(v.Remaining))
	for _, r := range v.Remaining {
		lines = append(lines, fmt.Sprintf("%s  %s", r.Time, FormatRemaining(r)))
	}
	return lines
}

// RenderDelayResult turns the outcome of a delay application into
// display lines: the server's message, then the affected arrivals.
func RenderDelayResult(r *model.DelayResult) []string {
	lines := []string{}
	if r.Message != "" {
		lines = append(lines, r.Message)
	}
	for _, a := range r.Arrivals {
		lines = append(lines, FormatDelayArrival(a))
	}
	return lines
}

// RenderTravelTime turns a computed trip into display lines.
func RenderTravelTime(t *model.TravelTime) []string {
	lines := []string{fmt.Sprintf("Temps de trajet : %d min", t.Minutes)}
	for _, d := range t.Details {
		lines = append(lines, fmt.Sprintf("%s  %s", d.Time, d.Station))
	}
	return lines
}

// Message translates an error from this package into text for the
// rider. Errors it doesn't know are returned as is.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownStation):
		return "Station inconnue."
	case errors.Is(err, ErrNoStation):
		return "Veuillez sélectionner une station."
	case errors.Is(err, ErrInvalidDirection):
		return "Sens inconnu."
	case errors.Is(err, ErrNoSelection):
		return "Veuillez sélectionner une station et un sens."
	case errors.Is(err, ErrInvalidDelay):
		return fmt.Sprintf("Le retard doit être compris entre %d et %d minutes.", MinDelay, MaxDelay)
	case errors.Is(err, ErrSubmitting):
		return "Une demande est déjà en cours."
	case errors.Is(err, ErrIncompleteRoute):
		return "Sélection incomplète : veuillez sélectionner les stations de départ et d'arrivée."
	case errors.Is(err, ErrSameStation):
		return "Sélection invalide : les stations de départ et d'arrivée doivent être différentes."
	case errors.Is(err, ErrTravelTime):
		return "Impossible de récupérer le temps de trajet. Vérifiez votre connexion et réessayez."
	case errors.Is(err, ErrIncompleteContact):
		return "Veuillez renseigner votre email et votre message."
	case errors.Is(err, ErrInvalidEmail):
		return "Adresse email invalide."
	case errors.Is(err, ErrClosed):
		return "Application arrêtée."
	}
	return strings.TrimSpace(err.Error())
}
