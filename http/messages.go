package http

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. Spanish is served unless the client prefers English.
const (
	msgReady            = "Prediction API ready."
	msgEmptyJSON        = "empty JSON"
	msgMissingFeatures  = "Send JSON with the key 'features' (a flat list or a list of lists)."
	msgInvalidShape     = "'features' must be a flat list or a list of lists."
	msgNotFound         = "not found"
	msgMethodNotAllowed = "method not allowed"
	msgInternal         = "internal server error"
)

var supportedLanguages = []language.Tag{language.Spanish, language.English}

var languageMatcher = language.NewMatcher(supportedLanguages)

func init() {
	translations := map[string][2]string{
		msgReady:            {"API de predicción lista.", msgReady},
		msgEmptyJSON:        {"JSON vacío", msgEmptyJSON},
		msgMissingFeatures:  {"Envía JSON con la clave 'features' (lista plana o lista de listas).", msgMissingFeatures},
		msgInvalidShape:     {"'features' debe ser una lista plana o una lista de listas.", msgInvalidShape},
		msgNotFound:         {"no encontrado", msgNotFound},
		msgMethodNotAllowed: {"método no permitido", msgMethodNotAllowed},
		msgInternal:         {"error interno del servidor", msgInternal},
	}
	for key, t := range translations {
		message.SetString(language.Spanish, key, t[0])
		message.SetString(language.English, key, t[1])
	}
}

// printerFor picks the response language from Accept-Language.
func printerFor(r *http.Request) *message.Printer {
	tags, _, _ := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	_, index, _ := languageMatcher.Match(tags...)
	return message.NewPrinter(supportedLanguages[index])
}

func localize(r *http.Request, key string) string {
	return printerFor(r).Sprintf(key)
}
