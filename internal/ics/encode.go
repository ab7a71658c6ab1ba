// Package ics serializes event records into an RFC 5545 iCalendar feed.
// Output is normalized to UTC for maximum client compatibility; no
// VTIMEZONE blocks are emitted.
package ics

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/parishplan/parishplan/internal/models"
)

const (
	dateTimeFormat = "20060102T150405Z"
	prodID         = "-//ParishPlan//ParishPlan Calendar//EN"

	// domainToken is the fixed host part of every UID.
	domainToken = "parishplan.app"

	// maxLineOctets is the RFC 5545 fold limit, measured in UTF-8 bytes
	// excluding the CRLF.
	maxLineOctets = 75

	// maxTextLength bounds a single text field, in runes, before escaping.
	// Conservative clients truncate very long properties.
	maxTextLength = 1000

	// defaultEventLength is synthesized when an event has no usable end.
	defaultEventLength = time.Hour
)

// Encoder produces calendar feeds. Output is deterministic for a given
// event list apart from DTSTAMP, which records generation time.
type Encoder struct {
	now func() time.Time
}

func NewEncoder() *Encoder {
	return &Encoder{now: time.Now}
}

// Encode renders the events as one VCALENDAR. Events are never dropped:
// a malformed event is clamped into a syntactically valid block, because a
// single bad record must not invalidate the whole feed. Cancelled events
// stay in the feed with STATUS:CANCELLED and a prefixed summary; clients
// rely on seeing the cancellation, not on its absence.
func (e *Encoder) Encode(events []*models.Event, calendarName string) []byte {
	w := &feedWriter{}
	stamp := formatDateTime(e.now())

	w.line("BEGIN:VCALENDAR")
	w.line("VERSION:2.0")
	w.line("PRODID:" + prodID)
	w.line("CALSCALE:GREGORIAN")
	w.line("METHOD:PUBLISH")
	if calendarName != "" {
		w.line("X-WR-CALNAME:" + escapeText(calendarName))
	}
	w.line("X-WR-TIMEZONE:UTC")

	for _, event := range events {
		e.writeEvent(w, event, stamp)
	}

	w.line("END:VCALENDAR")
	return w.bytes()
}

func (e *Encoder) writeEvent(w *feedWriter, event *models.Event, stamp string) {
	w.line("BEGIN:VEVENT")
	w.line("DTSTART:" + formatDateTime(event.StartTime))
	w.line("DTEND:" + formatDateTime(eventEnd(event)))
	w.line("DTSTAMP:" + stamp)
	w.line("UID:" + eventUID(event))
	if !event.CreatedAt.IsZero() {
		w.line("CREATED:" + formatDateTime(event.CreatedAt))
	}
	if !event.UpdatedAt.IsZero() {
		w.line("LAST-MODIFIED:" + formatDateTime(event.UpdatedAt))
	}
	w.line(fmt.Sprintf("SEQUENCE:%d", event.Sequence))

	if event.IsCancelled() {
		w.line("STATUS:CANCELLED")
		w.line("SUMMARY:" + escapeText("CANCELLED: "+summaryName(event)))
	} else {
		w.line("STATUS:CONFIRMED")
		w.line("SUMMARY:" + escapeText(summaryName(event)))
	}

	// Optional fields are omitted entirely rather than emitted empty.
	if desc := buildDescription(event); desc != "" {
		w.line("DESCRIPTION:" + desc)
	}
	if event.Location != "" {
		w.line("LOCATION:" + escapeText(event.Location))
	}

	w.line("END:VEVENT")
}

// eventUID is stable for an unmodified event across feed generations and
// changes when the event is edited, which tells calendar clients to
// re-fetch it rather than treat it as new.
func eventUID(event *models.Event) string {
	modified := event.UpdatedAt
	if modified.IsZero() {
		modified = event.CreatedAt
	}
	var millis int64
	if !modified.IsZero() {
		millis = modified.UnixMilli()
	}
	return fmt.Sprintf("%s_%d@%s", event.ID, millis, domainToken)
}

// eventEnd clamps a missing or inverted end to one hour after start.
func eventEnd(event *models.Event) time.Time {
	if event.EndTime == nil || !event.EndTime.After(event.StartTime) {
		return event.StartTime.Add(defaultEventLength)
	}
	return *event.EndTime
}

func summaryName(event *models.Event) string {
	if event.Name == "" {
		return "Untitled Event"
	}
	return event.Name
}

// buildDescription concatenates the event's free text, a Musicians block
// listing accepted assignments, and a Music block listing service titles.
// Blocks are separated by a blank line, flattened into one escaped field
// with literal \n escapes.
func buildDescription(event *models.Event) string {
	var blocks []string

	if event.Description != "" {
		blocks = append(blocks, escapeText(event.Description))
	}

	var musicians []string
	for _, a := range event.Assignments {
		if a.IsAccepted() {
			musicians = append(musicians, escapeText(a.Role+": "+a.DisplayName()))
		}
	}
	if len(musicians) > 0 {
		blocks = append(blocks, "Musicians:\\n"+strings.Join(musicians, "\\n"))
	}

	if len(event.MusicItems) > 0 {
		titles := make([]string, len(event.MusicItems))
		for i, item := range event.MusicItems {
			titles[i] = escapeText(item.Title)
		}
		blocks = append(blocks, "Music:\\n"+strings.Join(titles, "\\n"))
	}

	return strings.Join(blocks, "\\n\\n")
}

func formatDateTime(t time.Time) string {
	return t.UTC().Format(dateTimeFormat)
}

// escapeText makes a string safe as a single iCalendar text value: raw line
// breaks collapse to a space, the field is bounded, and backslash,
// semicolon and comma gain escapes.
func escapeText(text string) string {
	text = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(text)
	if utf8.RuneCountInString(text) > maxTextLength {
		text = string([]rune(text)[:maxTextLength])
	}
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, ";", `\;`)
	text = strings.ReplaceAll(text, ",", `\,`)
	return text
}

// feedWriter accumulates logical lines, folding each to the 75-octet limit
// with leading-space continuations and CRLF endings.
type feedWriter struct {
	b strings.Builder
}

func (w *feedWriter) line(s string) {
	first := true
	for len(s) > 0 || first {
		budget := maxLineOctets
		if !first {
			w.b.WriteByte(' ')
			budget--
		}
		cut := len(s)
		if cut > budget {
			cut = budget
			// Fold only at an exact UTF-8 boundary, never mid code point.
			for cut > 0 && !utf8.RuneStart(s[cut]) {
				cut--
			}
		}
		w.b.WriteString(s[:cut])
		w.b.WriteString("\r\n")
		s = s[cut:]
		first = false
	}
}

func (w *feedWriter) bytes() []byte {
	return []byte(w.b.String())
}
