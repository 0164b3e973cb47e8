package alerts

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/bingebuddy/bingebuddy/internal/library/tv"
	"github.com/bingebuddy/bingebuddy/internal/notification/types"
)

// DateChange is a newly announced next air date for a tracked show.
// LastAnnounced is the date users were last alerted about, empty when the
// show has never been announced. Syncs between alerts do not change it.
type DateChange struct {
	ShowName      string
	LastAnnounced string
	Next          string
}

// UpcomingEpisode is an unwatched episode airing inside the horizon.
type UpcomingEpisode struct {
	ShowName      string
	SeasonNumber  int64
	EpisodeNumber int64
	EpisodeName   string
	AirDate       string
}

// Digest is everything one user is told in a single dispatch.
type Digest struct {
	Changes     []DateChange
	Upcoming    []UpcomingEpisode
	HorizonDays int
}

// Empty reports whether there is nothing to send.
func (d Digest) Empty() bool {
	return len(d.Changes) == 0 && len(d.Upcoming) == 0
}

func changeFor(show *tv.Show) DateChange {
	return DateChange{
		ShowName:      show.Name,
		LastAnnounced: tv.FormatDate(show.AlertedNextAirDate),
		Next:          tv.FormatDate(show.NextAirDate),
	}
}

func (u UpcomingEpisode) code() string {
	return fmt.Sprintf("S%dE%d", u.SeasonNumber, u.EpisodeNumber)
}

func (u UpcomingEpisode) title() string {
	if u.EpisodeName == "" {
		return "TBA"
	}
	return u.EpisodeName
}

func (c DateChange) note() string {
	if c.LastAnnounced == "" {
		return "first announcement"
	}
	return "last announced " + c.LastAnnounced
}

// Subject picks a subject line for the digest.
func (d Digest) Subject() string {
	switch {
	case len(d.Upcoming) > 0:
		return "Your BingeBuddy weekly lineup"
	case len(d.Changes) == 1:
		return "New next episode date for " + d.Changes[0].ShowName
	default:
		return fmt.Sprintf("New next episode dates for %d shows", len(d.Changes))
	}
}

// Text renders the plain text body.
func (d Digest) Text() string {
	var b strings.Builder
	if len(d.Changes) > 0 {
		b.WriteString("New next episode dates:\n")
		for _, c := range d.Changes {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", c.ShowName, c.Next, c.note())
		}
	}
	if len(d.Upcoming) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Upcoming episodes (next %d days):\n", d.HorizonDays)
		for _, u := range d.Upcoming {
			fmt.Fprintf(&b, "- %s %s %q · %s\n", u.ShowName, u.code(), u.title(), u.AirDate)
		}
	}
	return b.String()
}

var digestHTML = template.Must(template.New("digest").Parse(`<html><body>
{{- if .Changes}}
<h3>New next episode dates</h3>
<ul>
{{- range .Changes}}
<li><b>{{.ShowName}}</b>: {{.Next}} ({{.Note}})</li>
{{- end}}
</ul>
{{- end}}
{{- if .Upcoming}}
<h3>Upcoming episodes (next {{.HorizonDays}} days)</h3>
<ul>
{{- range .Upcoming}}
<li><b>{{.ShowName}}</b> {{.Code}} &ldquo;{{.Title}}&rdquo; &middot; {{.AirDate}}</li>
{{- end}}
</ul>
{{- end}}
</body></html>`))

type htmlChange struct {
	ShowName, Next, Note string
}

type htmlEpisode struct {
	ShowName, Code, Title, AirDate string
}

// HTML renders the HTML alternative body.
func (d Digest) HTML() (string, error) {
	data := struct {
		Changes     []htmlChange
		Upcoming    []htmlEpisode
		HorizonDays int
	}{HorizonDays: d.HorizonDays}
	for _, c := range d.Changes {
		data.Changes = append(data.Changes, htmlChange{ShowName: c.ShowName, Next: c.Next, Note: c.note()})
	}
	for _, u := range d.Upcoming {
		data.Upcoming = append(data.Upcoming, htmlEpisode{ShowName: u.ShowName, Code: u.code(), Title: u.title(), AirDate: u.AirDate})
	}

	var buf bytes.Buffer
	if err := digestHTML.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render digest: %w", err)
	}
	return buf.String(), nil
}

// SMS renders the short form used for carrier gateways.
func (d Digest) SMS() string {
	parts := make([]string, 0, len(d.Changes)+len(d.Upcoming))
	for _, c := range d.Changes {
		parts = append(parts, fmt.Sprintf("%s next ep %s", c.ShowName, c.Next))
	}
	for _, u := range d.Upcoming {
		parts = append(parts, fmt.Sprintf("%s %s %s", u.ShowName, u.code(), u.AirDate))
	}
	return strings.Join(parts, "; ")
}

// Message renders the digest for the dispatcher.
func (d Digest) Message() (types.Message, error) {
	html, err := d.HTML()
	if err != nil {
		return types.Message{}, err
	}
	return types.Message{
		Subject: d.Subject(),
		Text:    d.Text(),
		HTML:    html,
		SMS:     d.SMS(),
	}, nil
}
