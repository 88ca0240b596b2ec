package pages

import (
	"strings"

	"moodlist/catalog"
	"moodlist/songs"
)

// DisplayLimit is how many songs the page shows from a result.
const DisplayLimit = 20

const (
	DefaultMinBPM = 0
	DefaultMaxBPM = 200
)

type Mood struct {
	Cluster string `json:"cluster"`
	Label   string `json:"label"`
}

// Genres offered in the genre select; these are the catalog's playlist genres.
var Genres = []string{"edm", "latin", "pop", "r&b", "rap", "rock"}

type IndexData struct {
	Title        string
	APIBase      string
	Moods        []Mood
	MoodLabels   map[string]string
	Genres       []string
	Threshold    float64
	MinBPM       int
	MaxBPM       int
	DisplayLimit int
}

// NewIndexData builds the page data. apiBase prefixes every API call and is
// empty when the page is served by the relay itself.
func NewIndexData(apiBase string) IndexData {
	clusters := catalog.MoodClusters()
	moods := make([]Mood, 0, len(clusters))
	labels := make(map[string]string, len(clusters))
	for _, c := range clusters {
		moods = append(moods, Mood{Cluster: c, Label: catalog.MoodLabel(c)})
		labels[c] = catalog.MoodLabel(c)
	}
	return IndexData{
		Title:        "MyPlaylistMaker",
		APIBase:      strings.TrimRight(apiBase, "/"),
		Moods:        moods,
		MoodLabels:   labels,
		Genres:       Genres,
		Threshold:    songs.DanceableThreshold,
		MinBPM:       DefaultMinBPM,
		MaxBPM:       DefaultMaxBPM,
		DisplayLimit: DisplayLimit,
	}
}

// Index is parsed with html/template; values are escaped per context.
var Index = `
<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
        }
        fieldset {
            border: 1px solid #ddd;
            margin-bottom: 12px;
        }
        li {
            list-style: none;
            padding: 4px 0;
            border-bottom: 1px solid #eee;
        }
        #status {
            color: #555;
        }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <p><a id="login" href="/login">Log in with Spotify</a></p>

    <fieldset>
        <legend>Mood</legend>
        <select id="mood">
            <option value="">Any</option>
            {{range .Moods}}<option value="{{.Cluster}}">{{.Label}}</option>
            {{end}}
        </select>
    </fieldset>
    <fieldset>
        <legend>Genre</legend>
        <select id="genre">
            <option value="">Any</option>
            {{range .Genres}}<option value="{{.}}">{{.}}</option>
            {{end}}
        </select>
        <select id="danceability">
            <option value="">Any</option>
            <option value="danceable">Danceable</option>
            <option value="not_danceable">Not danceable</option>
        </select>
    </fieldset>
    <fieldset>
        <legend>Tempo (BPM)</legend>
        <input id="bpm-min" type="number" min="0" value="{{.MinBPM}}">
        <input id="bpm-max" type="number" min="0" value="{{.MaxBPM}}">
    </fieldset>

    <button id="generate" disabled>Generate</button>
    <button id="create" disabled>Create playlist</button>
    <p id="status"></p>
    <p><a id="playlist-link" href="#" target="_blank" rel="noopener" hidden>Open on Spotify</a></p>
    <ul id="songs"></ul>

    <script>
        const apiBase = {{.APIBase}};
        const displayLimit = {{.DisplayLimit}};
        const danceableThreshold = {{.Threshold}};
        const moodLabels = {{.MoodLabels}};
        let catalog = [];
        let shown = [];

        function saveTokens() {
            const params = new URLSearchParams(window.location.search);
            const access = params.get("access_token");
            if (!access) {
                return;
            }
            localStorage.setItem("spotify_access_token", access);
            const refresh = params.get("refresh_token");
            if (refresh) {
                localStorage.setItem("spotify_refresh_token", refresh);
            }
            window.history.replaceState({}, "", window.location.pathname);
        }

        function setStatus(text) {
            document.getElementById("status").textContent = text;
        }

        async function loadCatalog() {
            setStatus("Loading songs...");
            try {
                const res = await fetch(apiBase + "/api/songs");
                if (!res.ok) {
                    throw new Error((await res.json()).error || res.statusText);
                }
                catalog = await res.json();
            } catch (err) {
                setStatus("Failed to load songs: " + err.message);
                return;
            }
            setStatus("");
            document.getElementById("generate").disabled = false;
        }

        function matches(song, c) {
            if (c.mood !== "" && song.cluster !== c.mood) {
                return false;
            }
            if (c.genre !== "" && (song.playlist_genre || "").toLowerCase() !== c.genre) {
                return false;
            }
            if (c.danceability !== "") {
                const score = parseFloat(song.danceability);
                if (isNaN(score)) {
                    return false;
                }
                const label = score >= danceableThreshold ? "danceable" : "not_danceable";
                if (label !== c.danceability) {
                    return false;
                }
            }
            const tempo = parseFloat(song.tempo);
            if (isNaN(tempo) || tempo < c.min || tempo > c.max) {
                return false;
            }
            return true;
        }

        function shuffle(list) {
            for (let i = list.length - 1; i > 0; i--) {
                const j = Math.floor(Math.random() * (i + 1));
                [list[i], list[j]] = [list[j], list[i]];
            }
            return list;
        }

        function bound(id, fallback) {
            const raw = document.getElementById(id).value.trim();
            if (raw === "") {
                return fallback;
            }
            const n = Number(raw);
            return isNaN(n) ? fallback : n;
        }

        function showPlaylist(url) {
            const link = document.getElementById("playlist-link");
            if (url) {
                link.href = url;
                link.hidden = false;
            } else {
                link.removeAttribute("href");
                link.hidden = true;
            }
        }

        function generate() {
            const c = {
                mood: document.getElementById("mood").value,
                genre: document.getElementById("genre").value,
                danceability: document.getElementById("danceability").value,
                min: bound("bpm-min", 0),
                max: bound("bpm-max", Infinity),
            };
            showPlaylist("");
            shown = shuffle(catalog.filter(song => matches(song, c))).slice(0, displayLimit);
            setStatus(shown.length === 0 ? "No songs found." : "");
            render();
        }

        function render() {
            const list = document.getElementById("songs");
            list.replaceChildren();
            for (const song of shown) {
                const item = document.createElement("li");
                const tempo = parseFloat(song.tempo);
                const details = [
                    isNaN(tempo) ? "? BPM" : tempo.toFixed(1) + " BPM",
                    moodLabels[song.cluster] || song.cluster || "",
                    song.playlist_genre || "",
                ].filter(Boolean).join(" | ");
                item.textContent = song.track_name + " - " + song.track_artist + " (" + details + ")";
                list.appendChild(item);
            }
            document.getElementById("create").disabled = shown.length === 0;
        }

        async function createPlaylist() {
            const token = localStorage.getItem("spotify_access_token");
            if (!token) {
                setStatus("Please log in with Spotify first.");
                return;
            }
            const uris = shown.filter(s => s.track_id).map(s => "spotify:track:" + s.track_id);
            if (uris.length === 0) {
                setStatus("No valid tracks to add.");
                return;
            }
            const res = await fetch(apiBase + "/api/create-playlist", {
                method: "POST",
                headers: {"Content-Type": "application/json"},
                body: JSON.stringify({access_token: token, track_uris: uris}),
            });
            const body = await res.json();
            if (!res.ok) {
                setStatus(body.error);
                return;
            }
            showPlaylist(body.playlist_url);
            setStatus("Playlist created.");
        }

        saveTokens();
        document.getElementById("generate").addEventListener("click", generate);
        document.getElementById("create").addEventListener("click", createPlaylist);
        loadCatalog();
    </script>
</body>
</html>`
