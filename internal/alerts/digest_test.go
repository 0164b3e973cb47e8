package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest_Render(t *testing.T) {
	d := Digest{
		HorizonDays: 7,
		Changes:     []DateChange{{ShowName: "Show A", LastAnnounced: "2024-03-01", Next: "2024-03-08"}},
		Upcoming: []UpcomingEpisode{
			{ShowName: "Show <B>", SeasonNumber: 2, EpisodeNumber: 3, EpisodeName: "Pilot", AirDate: "2024-03-05"},
			{ShowName: "Show C", SeasonNumber: 1, EpisodeNumber: 1, AirDate: "2024-03-06"},
		},
	}

	msg, err := d.Message()
	require.NoError(t, err)

	assert.Equal(t, "Your BingeBuddy weekly lineup", msg.Subject)
	assert.Contains(t, msg.Text, "- Show A: 2024-03-08 (last announced 2024-03-01)")
	assert.Contains(t, msg.Text, "Upcoming episodes (next 7 days):\n")
	assert.Contains(t, msg.Text, `- Show <B> S2E3 "Pilot" · 2024-03-05`)
	assert.Contains(t, msg.Text, `- Show C S1E1 "TBA" · 2024-03-06`)
	assert.Contains(t, msg.HTML, "Show &lt;B&gt;")
	assert.NotContains(t, msg.HTML, "Show <B>")
	assert.Equal(t, "Show A next ep 2024-03-08; Show <B> S2E3 2024-03-05; Show C S1E1 2024-03-06", msg.SMS)
}

func TestDigest_Subject(t *testing.T) {
	one := Digest{Changes: []DateChange{{ShowName: "Show A", Next: "2024-03-08"}}}
	assert.Equal(t, "New next episode date for Show A", one.Subject())
	assert.Contains(t, one.Text(), "(first announcement)")

	two := Digest{Changes: []DateChange{{ShowName: "A"}, {ShowName: "B"}}}
	assert.Equal(t, "New next episode dates for 2 shows", two.Subject())

	assert.True(t, Digest{}.Empty())
}
