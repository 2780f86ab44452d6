package document

import "fmt"

// Type tags the kind of document being generated. Each type carries its own
// prompt template, generation temperature and no-changes policy.
type Type string

const (
	TypeMessage      Type = "message"
	TypeSummary      Type = "summary"
	TypeChangelog    Type = "changelog"
	TypeReleaseNotes Type = "release-notes"
	TypeAnnouncement Type = "announcement"
	TypeCustom       Type = "custom"
)

type typeSpec struct {
	template    string
	temperature float64
	noChanges   string
}

// Factual documents (changelogs, release notes) generate at a lower
// temperature than conversational ones, matching their tone.
var typeSpecs = map[Type]typeSpec{
	TypeMessage:      {template: "message_prompt.md", temperature: 0.9, noChanges: "No changes detected."},
	TypeSummary:      {template: "summary_prompt.md", temperature: 0.9, noChanges: "No changes detected."},
	TypeChangelog:    {template: "changelog_prompt.md", temperature: 0.7, noChanges: "No notable changes."},
	TypeReleaseNotes: {template: "release_notes_prompt.md", temperature: 0.7, noChanges: "No notable changes."},
	TypeAnnouncement: {template: "announcement_prompt.md", temperature: 0.9, noChanges: "No notable changes."},
	TypeCustom:       {temperature: 0.9, noChanges: "No changes detected."},
}

// ParseType validates a document type tag.
func ParseType(tag string) (Type, error) {
	t := Type(tag)
	if _, ok := typeSpecs[t]; !ok {
		return "", fmt.Errorf("unknown document type: %s", tag)
	}
	return t, nil
}

// Temperature is the generation temperature this document type defaults to.
func (t Type) Temperature() float64 {
	return typeSpecs[t].temperature
}

// Payload is the final generated text, tagged with the version label it
// represents and the document type that produced it.
type Payload struct {
	DocType Type
	Version string
	Body    string
}
