package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wrapped/internal/models"
	"github.com/desertthunder/wrapped/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgHomeLoaded MsgKind = iota
	MsgProgressUpdate
	MsgLoggedIn
	MsgRegistered
	MsgGenerated
	MsgDeleted
	MsgPublished
	MsgPublicLoaded
	MsgTick
)

type homeLoaded struct {
	result *tasks.HomeResult
	err    error
}

type snapshotResult struct {
	snapshot *models.Snapshot
	id       string
	err      error
}

type publicLoaded struct {
	snapshots []models.Snapshot
	err       error
}

// homeLoadedMsg is the constructor for [MsgHomeLoaded]
func homeLoadedMsg(result *tasks.HomeResult, err error) Msg {
	return Msg{kind: MsgHomeLoaded, data: homeLoaded{result, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(err error) Msg {
	return Msg{kind: MsgLoggedIn, data: err}
}

// registeredMsg is the constructor for [MsgRegistered]
func registeredMsg(err error) Msg {
	return Msg{kind: MsgRegistered, data: err}
}

// generatedMsg is the constructor for [MsgGenerated]
func generatedMsg(s *models.Snapshot, err error) Msg {
	return Msg{kind: MsgGenerated, data: snapshotResult{snapshot: s, err: err}}
}

// deletedMsg is the constructor for [MsgDeleted]
func deletedMsg(id string, err error) Msg {
	return Msg{kind: MsgDeleted, data: snapshotResult{id: id, err: err}}
}

// publishedMsg is the constructor for [MsgPublished]
func publishedMsg(id string, err error) Msg {
	return Msg{kind: MsgPublished, data: snapshotResult{id: id, err: err}}
}

// publicLoadedMsg is the constructor for [MsgPublicLoaded]
func publicLoadedMsg(snapshots []models.Snapshot, err error) Msg {
	return Msg{kind: MsgPublicLoaded, data: publicLoaded{snapshots, err}}
}

// tickMsg is the constructor for [MsgTick]. id ties the tick to the question it was scheduled for.
func tickMsg(id int) Msg {
	return Msg{kind: MsgTick, data: id}
}
