package notify

import (
	"os"
	"strings"
)

type locale string

const (
	localeEnglish locale = "en"
)

type messages struct {
	dictationOn      string
	dictationOff     string
	permissionDenied string
	listeningFailed  string
}

func toastMessagesFromEnv() messages {
	return toastMessages(resolveLocale(os.Getenv("LANG")))
}

func resolveLocale(raw string) locale {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(raw, "en") {
		return localeEnglish
	}
	return localeEnglish
}

func toastMessages(tag locale) messages {
	switch tag {
	case localeEnglish:
		fallthrough
	default:
		return messages{
			dictationOn:      "Dictation on",
			dictationOff:     "Dictation off",
			permissionDenied: "Microphone access denied",
			listeningFailed:  "Listening stopped: speech engine failed",
		}
	}
}
