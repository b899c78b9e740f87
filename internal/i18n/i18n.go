// Package i18n holds the localized text used by cues and the terminal shell.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lowaak/interval-trainer/internal/plans"
)

// Message keys. Keys are printf formats in the base locale.
const (
	KeyRun             = "Run!"
	KeyWalk            = "Walk"
	KeyPrepareFor      = "Get ready for: %s"
	KeyPhaseChanged    = "Phase change"
	KeyNowPhase        = "Now: %s"
	KeyWorkoutComplete = "Workout complete"
	KeyWellDone        = "Well done, %s finished."
	KeyUpcoming        = "Next phases:"
	KeyPaused          = "Paused"
	KeyRunning         = "Running"
	KeyCompleted       = "Completed"
	KeyChoosePlan      = "Choose week:"
	KeyTitle           = "Running Workout Timer"
	KeyReady           = "Ready"
	KeyPhaseOf         = "Phase %d of %d"
	KeyTotal           = "Total: %s"
	KeyFinish          = "Finish!"
	KeySessionHelp     = "Space start/pause  |  R reset  |  1 plans  |  Esc quit"
	KeyPlansHelp       = "Enter select  |  2 session  |  Esc quit"
)

var supportedTags = []language.Tag{
	language.Italian,
	language.English,
}

var matcher = language.NewMatcher(supportedTags)

func init() {
	it := map[string]string{
		KeyRun:             "Corri!",
		KeyWalk:            "Cammina",
		KeyPrepareFor:      "Preparati per: %s",
		KeyPhaseChanged:    "Cambio fase",
		KeyNowPhase:        "Ora: %s",
		KeyWorkoutComplete: "Allenamento completato",
		KeyWellDone:        "Ottimo lavoro, %s terminata.",
		KeyUpcoming:        "Prossime fasi:",
		KeyPaused:          "In pausa",
		KeyRunning:         "In corso",
		KeyCompleted:       "Completato",
		KeyChoosePlan:      "Seleziona Settimana:",
		KeyTitle:           "Timer Allenamento Corsa",
		KeyReady:           "Pronto",
		KeyPhaseOf:         "Fase %d di %d",
		KeyTotal:           "Totale: %s",
		KeyFinish:          "Fine!",
		KeySessionHelp:     "Spazio avvia/pausa  |  R azzera  |  1 piani  |  Esc esci",
		KeyPlansHelp:       "Invio seleziona  |  2 sessione  |  Esc esci",
	}
	for key, text := range it {
		_ = message.SetString(language.Italian, key, text)
	}
	for _, key := range []string{KeyRun, KeyWalk, KeyPrepareFor, KeyPhaseChanged, KeyNowPhase,
		KeyWorkoutComplete, KeyWellDone, KeyUpcoming, KeyPaused, KeyRunning, KeyCompleted,
		KeyChoosePlan, KeyTitle, KeyReady, KeyPhaseOf, KeyTotal, KeyFinish, KeySessionHelp, KeyPlansHelp} {
		_ = message.SetString(language.English, key, key)
	}
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.Italian
}

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	tags := make([]language.Tag, len(supportedTags))
	copy(tags, supportedTags)
	return tags
}

// ResolveTag maps a locale string such as "en_GB.UTF-8" to the closest
// supported tag, falling back to Default.
func ResolveTag(locale string) language.Tag {
	locale = strings.TrimSpace(locale)
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(locale, "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return Default()
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Default()
	}
	_, index, confidence := matcher.Match(tag)
	if confidence == language.No {
		return Default()
	}
	return supportedTags[index]
}

// Printer returns a message printer for locale.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(ResolveTag(locale))
}

// KindLabel is the instruction shown for a phase kind.
func KindLabel(p *message.Printer, kind plans.Kind) string {
	if kind == plans.KindRun {
		return p.Sprintf(KeyRun)
	}
	return p.Sprintf(KeyWalk)
}
