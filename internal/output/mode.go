package output

import (
	"fmt"

	"giv/internal/document"
)

// Mode is the strategy used to write generated content into a target
// document.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModePrepend   Mode = "prepend"
	ModeAppend    Mode = "append"
	ModeUpdate    Mode = "update"
	ModeOverwrite Mode = "overwrite"
	ModeNone      Mode = "none"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModePrepend, ModeAppend, ModeUpdate, ModeOverwrite, ModeNone:
		return Mode(s), nil
	case "":
		return ModeAuto, nil
	}
	return "", fmt.Errorf("unknown output mode: %s", s)
}

// autoModes is the static document-type -> mode table behind "auto".
// Changelog-like documents update their version section in place; one-shot
// documents are rewritten whole; conversational documents are only printed.
var autoModes = map[document.Type]Mode{
	document.TypeMessage:      ModeNone,
	document.TypeSummary:      ModeNone,
	document.TypeChangelog:    ModeUpdate,
	document.TypeReleaseNotes: ModeOverwrite,
	document.TypeAnnouncement: ModeOverwrite,
	document.TypeCustom:       ModeNone,
}

func resolveMode(mode Mode, docType document.Type) Mode {
	if mode != ModeAuto {
		return mode
	}
	if resolved, ok := autoModes[docType]; ok {
		return resolved
	}
	return ModeNone
}
