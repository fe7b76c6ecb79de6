// Wrapped payload decoding
//
// Generated Wrapped data is the Spotify Web API top-artists response relayed by the backend, optionally
// enriched per artist with top_song, top_song_id, description and song_preview. History entries use the
// backend's own shape with the same artist fields.
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/zmb3/spotify/v2"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/shared"
)

// PreviewBaseURL is prefixed to a top song id to build an audio preview URL.
const PreviewBaseURL = "https://p.scdn.co/mp3-preview/"

// GeneratedWrapped is a decoded wrapped-data response before it becomes a [models.Snapshot].
type GeneratedWrapped struct {
	Images  []string
	Artists []models.Artist
	Tracks  []models.Track
	Raw     json.RawMessage
}

// wrappedArtist is a Spotify artist with the backend's enrichment fields.
type wrappedArtist struct {
	spotify.FullArtist
	ImageURL    string          `json:"image_url"`
	TopSong     string          `json:"top_song"`
	TopSongID   string          `json:"top_song_id"`
	Description string          `json:"description"`
	SongPreview json.RawMessage `json:"song_preview"`
}

// UnmarshalJSON decodes the embedded artist and the enrichment fields separately.
func (a *wrappedArtist) UnmarshalJSON(data []byte) error {
	var base spotify.FullArtist
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}

	var extra struct {
		ImageURL    string          `json:"image_url"`
		TopSong     string          `json:"top_song"`
		TopSongID   string          `json:"top_song_id"`
		Description string          `json:"description"`
		SongPreview json.RawMessage `json:"song_preview"`
	}
	if err := json.Unmarshal(data, &extra); err != nil {
		return err
	}

	a.FullArtist = base
	a.ImageURL = extra.ImageURL
	a.TopSong = extra.TopSong
	a.TopSongID = extra.TopSongID
	a.Description = extra.Description
	a.SongPreview = extra.SongPreview
	return nil
}

func (a wrappedArtist) toModel() models.Artist {
	artist := models.Artist{
		Name:        a.Name,
		ImageURL:    a.ImageURL,
		TopSong:     a.TopSong,
		TopSongID:   a.TopSongID,
		Description: a.Description,
		Genres:      a.Genres,
	}
	if artist.ImageURL == "" {
		artist.ImageURL = firstImage(a.Images)
	}
	artist.PreviewURL = previewURL(a.TopSongID, a.SongPreview)
	return artist
}

// previewURL prefers the top song id, then song_preview as a URL string, array of URLs or array of track objects.
func previewURL(topSongID string, raw json.RawMessage) string {
	if topSongID != "" {
		return PreviewBaseURL + topSongID
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return ""
	}

	if err := json.Unmarshal(items[0], &s); err == nil {
		return s
	}

	var obj struct {
		URL        string `json:"url"`
		PreviewURL string `json:"preview_url"`
	}
	if err := json.Unmarshal(items[0], &obj); err == nil {
		if obj.PreviewURL != "" {
			return obj.PreviewURL
		}
		return obj.URL
	}
	return ""
}

func firstImage(images []spotify.Image) string {
	for _, img := range images {
		if img.URL != "" {
			return img.URL
		}
	}
	return ""
}

func convertTracks(tracks []spotify.FullTrack) []models.Track {
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		names := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			names = append(names, a.Name)
		}
		out = append(out, models.Track{
			ID:         string(t.ID),
			Name:       t.Name,
			Artists:    names,
			Album:      t.Album.Name,
			PreviewURL: t.PreviewURL,
		})
	}
	return out
}

func convertArtists(artists []wrappedArtist) []models.Artist {
	out := make([]models.Artist, 0, len(artists))
	for _, a := range artists {
		out = append(out, a.toModel())
	}
	return out
}

// DecodeGenerated decodes a wrapped-data response.
//
// Accepted shapes: a Spotify paging object whose items are artists, an object with artists and/or tracks
// (each either a list or a paging object), or a bare array of artists. An object with none of these (such
// as {"message": "..."}) yields an empty result.
func DecodeGenerated(data []byte) (*GeneratedWrapped, error) {
	data = bytes.TrimSpace(data)
	out := &GeneratedWrapped{Raw: json.RawMessage(append([]byte(nil), data...))}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty wrapped data", shared.ErrInvalidResponse)
	}

	if data[0] == '[' {
		var artists []wrappedArtist
		if err := json.Unmarshal(data, &artists); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
		}
		out.Artists = convertArtists(artists)
		return out, nil
	}

	var envelope struct {
		Images  []spotify.Image `json:"images"`
		Image   string          `json:"image"`
		Items   json.RawMessage `json:"items"`
		Artists json.RawMessage `json:"artists"`
		Tracks  json.RawMessage `json:"tracks"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidResponse, err)
	}

	if u := firstImage(envelope.Images); u != "" {
		out.Images = append(out.Images, u)
	} else if envelope.Image != "" {
		out.Images = append(out.Images, envelope.Image)
	}

	artistsRaw := envelope.Artists
	if len(artistsRaw) == 0 {
		artistsRaw = envelope.Items
	}

	artists, err := decodeArtistList(artistsRaw)
	if err != nil {
		return nil, err
	}
	out.Artists = artists

	tracks, err := decodeTrackList(envelope.Tracks)
	if err != nil {
		return nil, err
	}
	out.Tracks = tracks

	return out, nil
}

// decodeArtistList accepts a list of artists or a paging object of artists.
func decodeArtistList(raw json.RawMessage) ([]models.Artist, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '{' {
		var page struct {
			Items []wrappedArtist `json:"items"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("%w: artists: %v", shared.ErrInvalidResponse, err)
		}
		return convertArtists(page.Items), nil
	}

	var artists []wrappedArtist
	if err := json.Unmarshal(raw, &artists); err != nil {
		return nil, fmt.Errorf("%w: artists: %v", shared.ErrInvalidResponse, err)
	}
	return convertArtists(artists), nil
}

// decodeTrackList accepts a list of tracks or a [spotify.FullTrackPage].
func decodeTrackList(raw json.RawMessage) ([]models.Track, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '{' {
		var page spotify.FullTrackPage
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("%w: tracks: %v", shared.ErrInvalidResponse, err)
		}
		return convertTracks(page.Tracks), nil
	}

	var tracks []spotify.FullTrack
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, fmt.Errorf("%w: tracks: %v", shared.ErrInvalidResponse, err)
	}
	return convertTracks(tracks), nil
}

// flexibleID accepts both numeric and string identifiers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = flexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexibleID(n.String())
	return nil
}

type historyEntry struct {
	ID      flexibleID      `json:"id"`
	Title   string          `json:"title"`
	Image   string          `json:"image"`
	Public  bool            `json:"public"`
	Artists []wrappedArtist `json:"artists"`
	Tracks  json.RawMessage `json:"tracks"`
}

// DecodeHistory decodes a wrapped-history or public_histories response, preserving order.
func DecodeHistory(data []byte) ([]models.Snapshot, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: history must be a list: %v", shared.ErrInvalidResponse, err)
	}

	snapshots := make([]models.Snapshot, 0, len(entries))
	for i, raw := range entries {
		var e historyEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("%w: history entry %d: %v", shared.ErrInvalidResponse, i, err)
		}

		tracks, err := decodeTrackList(e.Tracks)
		if err != nil {
			return nil, err
		}

		snapshots = append(snapshots, models.Snapshot{
			ID:            string(e.ID),
			Title:         strings.TrimSpace(e.Title),
			CoverImageURL: e.Image,
			Artists:       convertArtists(e.Artists),
			Tracks:        tracks,
			Public:        e.Public,
			Raw:           raw,
		})
	}
	return snapshots, nil
}
