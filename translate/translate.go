// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package translate formats user-facing messages for the locale of the host.
package translate

import (
	"log"
	"os"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

// LANG_ENV overrides the detected locale when set.
const LANG_ENV = "UKERN_LANG"

var printer *message.Printer

func init() {
	printer = message.NewPrinter(message.MatchLanguage(Locales()...))
}

// Locales returns the preferred locales, most preferred first.
func Locales() (locales []string) {
	if lang := os.Getenv(LANG_ENV); len(lang) != 0 {
		return []string{lang}
	}

	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("ukern: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	return
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	return printer.Sprintf(key, args...)
}
