package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"
)

// Display modes accepted by --format.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatFull               = "full"
)

// FormatData is what a custom --format template sees.
type FormatData struct {
	Name      string // "Asr"
	ShortName string // "A", or Name when no abbreviation exists
	Time      string // clock in the chosen layout, "--:--" when unavailable
	Date      string // YYYY-MM-DD of the prayer, empty when unavailable
	Tomorrow  bool   // the prayer falls on the day after now
	Remaining string // "2h 15m"
	Hours     int
	Minutes   int
}

var renderModes = map[string]func(FormatData) string{
	FormatTimeRemaining:      func(d FormatData) string { return d.Remaining },
	FormatNextPrayerTime:     func(d FormatData) string { return d.Time },
	FormatNameAndTime:        func(d FormatData) string { return d.Name + " " + d.Time },
	FormatNameAndRemaining:   func(d FormatData) string { return d.Name + " " + d.Remaining },
	FormatShortNameAndTime:   func(d FormatData) string { return d.ShortName + " " + d.Time },
	FormatShortNameAndRemain: func(d FormatData) string { return d.ShortName + " " + d.Remaining },
	FormatFull:               func(d FormatData) string { return fmt.Sprintf("%s %s (%s)", d.Name, d.Time, d.Remaining) },
}

// NewFormatData builds the template data for next as seen at now.
func NewFormatData(next NextInfo, now time.Time, layout string) FormatData {
	d := next.Remaining
	if d < 0 {
		d = 0
	}
	data := FormatData{
		Name:      next.Name,
		ShortName: next.Name,
		Time:      FormatClock(next.Time, layout),
		Remaining: FormatRemaining(d),
		Hours:     int(d.Hours()),
		Minutes:   int(d.Minutes()) % 60,
	}
	if short, ok := ShortNames[next.Name]; ok {
		data.ShortName = short
	}
	if !next.Time.IsZero() {
		data.Date = next.Time.Format("2006-01-02")
		data.Tomorrow = data.Date != now.In(next.Time.Location()).Format("2006-01-02")
	}
	return data
}

// Render formats next for a status bar. mode is one of the Format*
// constants or, when it contains "{{", a text/template over FormatData.
// Unknown modes fall back to name-and-time.
func Render(next NextInfo, now time.Time, mode, layout string) string {
	data := NewFormatData(next, now, layout)
	if strings.Contains(mode, "{{") {
		return renderTemplate(mode, data)
	}
	if fn, ok := renderModes[mode]; ok {
		return fn(data)
	}
	return renderModes[FormatNameAndTime](data)
}

// Template errors are returned as the output text.
func renderTemplate(text string, data FormatData) string {
	t, err := template.New("format").Option("missingkey=error").Parse(text)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}
	return buf.String()
}
