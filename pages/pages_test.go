package pages

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"
	"testing"
)

func TestNewIndexData(t *testing.T) {
	data := NewIndexData("")

	want := []Mood{
		{Cluster: "0", Label: "Chill"},
		{Cluster: "1", Label: "Happy"},
		{Cluster: "2", Label: "Energetic"},
		{Cluster: "3", Label: "Sad"},
	}
	if len(data.Moods) != len(want) {
		t.Fatalf("got %d moods, want %d", len(data.Moods), len(want))
	}
	for i := range want {
		if data.Moods[i] != want[i] {
			t.Errorf("mood %d = %+v, want %+v", i, data.Moods[i], want[i])
		}
	}
	if data.MinBPM != 0 || data.MaxBPM != 200 {
		t.Errorf("bpm defaults = %d..%d, want 0..200", data.MinBPM, data.MaxBPM)
	}
	if data.DisplayLimit != 20 {
		t.Errorf("DisplayLimit = %d, want 20", data.DisplayLimit)
	}
}

func TestIndexRenders(t *testing.T) {
	tmpl := template.Must(template.New("index").Parse(Index))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, NewIndexData("")); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<option value="2">Energetic</option>`,
		`href="/login"`,
		`/api/create-playlist`,
		`id="playlist-link"`,
		`>Open on Spotify</a>`,
		`toFixed(1)`,
		`bound("bpm-max", Infinity)`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
	if !regexp.MustCompile(`const displayLimit =\s*20\s*;`).MatchString(out) {
		t.Error("display limit not injected into the script")
	}
	if !regexp.MustCompile(`const moodLabels =\s*\{[^}]*"2":\s*"Energetic"`).MatchString(out) {
		t.Error("mood labels not injected into the script")
	}
	if strings.Contains(out, "window.open") {
		t.Error("playlist should be shown as a link, not a popup")
	}
	if strings.Contains(out, "|| Infinity") {
		t.Error("a BPM max of 0 must not mean unbounded")
	}
}

func TestNewIndexDataMoodLabels(t *testing.T) {
	labels := NewIndexData("").MoodLabels
	if labels["0"] != "Chill" || labels["3"] != "Sad" || len(labels) != 4 {
		t.Errorf("MoodLabels = %v", labels)
	}
}
