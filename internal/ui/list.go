package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/wrapped/internal/models"
)

var (
	_ list.Item = snapshotItem{}
	_ list.Item = artistItem{}
)

// snapshotItem wraps [models.Snapshot] to implement [list.Item].
type snapshotItem struct {
	snapshot models.Snapshot
}

func (i snapshotItem) FilterValue() string { return i.snapshot.Title }
func (i snapshotItem) Title() string       { return i.snapshot.Title }
func (i snapshotItem) Description() string {
	desc := fmt.Sprintf("%d artists", len(i.snapshot.Artists))
	if top, ok := i.snapshot.TopArtist(); ok {
		desc = fmt.Sprintf("%s • top: %s", desc, top.Name)
	}
	return desc
}

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	rank   int
	artist models.Artist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return fmt.Sprintf("%d. %s", i.rank, i.artist.Name) }
func (i artistItem) Description() string {
	parts := []string{}
	if i.artist.TopSong != "" {
		parts = append(parts, i.artist.TopSong)
	}
	if len(i.artist.Genres) > 0 {
		parts = append(parts, strings.Join(i.artist.Genres, ", "))
	}
	return strings.Join(parts, " • ")
}

func snapshotItems(snapshots []models.Snapshot) []list.Item {
	items := make([]list.Item, len(snapshots))
	for i, s := range snapshots {
		items[i] = snapshotItem{snapshot: s}
	}
	return items
}

func artistItems(artists []models.Artist) []list.Item {
	items := make([]list.Item, len(artists))
	for i, a := range artists {
		items[i] = artistItem{rank: i + 1, artist: a}
	}
	return items
}
