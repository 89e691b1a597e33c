package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"yttranscript/internal/core/domain"
)

const (
	androidClientVersion = "20.10.38"
	androidUserAgent     = "com.google.android.youtube/" + androidClientVersion + " (Linux; U; Android 11) gzip"
)

// playerRequest is the Innertube /player request body.
type playerRequest struct {
	Context        playerContext `json:"context"`
	VideoID        string        `json:"videoId"`
	ContentCheckOK bool          `json:"contentCheckOk"`
	RacyCheckOK    bool          `json:"racyCheckOk"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	HL                string `json:"hl"`
	GL                string `json:"gl,omitempty"`
}

// playerResponse keeps only the fields the caption lookup reads.
type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []CaptionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// CaptionTrack is one entry of the player's caption track list.
type CaptionTrack struct {
	BaseURL      string    `json:"baseUrl"`
	LanguageCode string    `json:"languageCode"`
	Kind         string    `json:"kind"` // "asr" = auto-generated
	Name         trackName `json:"name"`
}

type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

// DisplayName returns the human-readable language name of the track.
func (t CaptionTrack) DisplayName() string {
	if t.Name.SimpleText != "" {
		return t.Name.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Name.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

func (t CaptionTrack) generated() bool { return t.Kind == "asr" }

// json3Response is the timedtext body for fmt=json3.
type json3Response struct {
	Events []struct {
		TStartMs int64 `json:"tStartMs"`
		Segs     []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// CaptionSource implements ports.TranscriptSource over the Innertube player API.
type CaptionSource struct {
	fetcher Fetcher
	baseURL string
}

// NewCaptionSource creates a new CaptionSource. An empty baseURL means youtube.com.
func NewCaptionSource(fetcher Fetcher, baseURL string) *CaptionSource {
	if baseURL == "" {
		baseURL = "https://www.youtube.com"
	}
	return &CaptionSource{fetcher: fetcher, baseURL: strings.TrimRight(baseURL, "/")}
}

// Fetch returns the transcript in the first language of langs the video has,
// or any transcript when langs is empty.
func (c *CaptionSource) Fetch(ctx context.Context, id domain.VideoID, langs []string) (*domain.Transcript, error) {
	tracks, err := c.listTracks(ctx, id)
	if err != nil {
		return nil, err
	}

	track, ok := pickTrack(tracks, langs)
	if !ok {
		if len(langs) == 0 {
			return nil, fmt.Errorf("%w: video %s has no usable caption tracks", domain.ErrLanguageNotFound, id)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrLanguageNotFound, strings.Join(langs, ","))
	}

	snippets, err := c.fetchSnippets(ctx, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("caption track %s: %w", track.LanguageCode, err)
	}

	return &domain.Transcript{
		LanguageCode: track.LanguageCode,
		Language:     track.DisplayName(),
		Snippets:     snippets,
	}, nil
}

func (c *CaptionSource) listTracks(ctx context.Context, id domain.VideoID) ([]CaptionTrack, error) {
	body, err := json.Marshal(playerRequest{
		Context: playerContext{
			Client: playerClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidClientVersion,
				AndroidSdkVersion: 30,
				HL:                "en",
				GL:                "US",
			},
		},
		VideoID:        string(id),
		ContentCheckOK: true,
		RacyCheckOK:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal player request: %w", err)
	}

	h := http.Header{}
	h.Set("User-Agent", androidUserAgent)
	h.Set("X-Youtube-Client-Name", "3")
	h.Set("X-Youtube-Client-Version", androidClientVersion)

	data, err := c.fetcher.PostJSON(ctx, c.baseURL+"/youtubei/v1/player?prettyPrint=false", h, body)
	if err != nil {
		return nil, fmt.Errorf("player request: %w", err)
	}

	var resp playerResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player response: %w", err)
	}

	if resp.Captions == nil || len(resp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		reason := "captions disabled"
		if resp.PlayabilityStatus != nil && resp.PlayabilityStatus.Reason != "" {
			reason = resp.PlayabilityStatus.Reason
		}
		return nil, fmt.Errorf("%w: video %s (%s)", domain.ErrLanguageNotFound, id, reason)
	}
	return resp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, nil
}

// needsPoToken reports whether a track URL requires a browser-only PoToken.
// Such tracks answer server-side requests with an empty body.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickTrack prefers a manual track over an auto-generated one for the first
// language that has any. With no languages, the first manual track wins, then
// the first track of any kind. Tracks that need a PoToken are never picked.
func pickTrack(all []CaptionTrack, langs []string) (CaptionTrack, bool) {
	tracks := make([]CaptionTrack, 0, len(all))
	for _, t := range all {
		if !needsPoToken(t.BaseURL) {
			tracks = append(tracks, t)
		}
	}

	if len(langs) == 0 {
		for _, t := range tracks {
			if !t.generated() {
				return t, true
			}
		}
		if len(tracks) > 0 {
			return tracks[0], true
		}
		return CaptionTrack{}, false
	}

	for _, lang := range langs {
		var auto *CaptionTrack
		for i, t := range tracks {
			if t.LanguageCode != lang {
				continue
			}
			if !t.generated() {
				return t, true
			}
			if auto == nil {
				auto = &tracks[i]
			}
		}
		if auto != nil {
			return *auto, true
		}
	}
	return CaptionTrack{}, false
}

func (c *CaptionSource) fetchSnippets(ctx context.Context, baseURL string) ([]domain.Snippet, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse caption url: %w", err)
	}
	if !u.IsAbs() {
		u, err = url.Parse(c.baseURL + baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse caption url: %w", err)
		}
	}
	q := u.Query()
	q.Set("fmt", "json3")
	u.RawQuery = q.Encode()

	h := http.Header{}
	h.Set("User-Agent", androidUserAgent)
	data, err := c.fetcher.Get(ctx, u.String(), h)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("empty caption body")
	}
	return parseJSON3(data)
}

func parseJSON3(data []byte) ([]domain.Snippet, error) {
	var resp json3Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal caption body: %w", err)
	}

	snippets := make([]domain.Snippet, 0, len(resp.Events))
	for _, ev := range resp.Events {
		if len(ev.Segs) == 0 {
			continue
		}
		var sb strings.Builder
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := html.UnescapeString(sb.String())
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		snippets = append(snippets, domain.Snippet{
			Text:  text,
			Start: float64(ev.TStartMs) / 1000.0,
		})
	}
	return snippets, nil
}
