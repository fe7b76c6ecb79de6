// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI mirrors the client's routes:
//  1. [LoginView] : Log in or create an account (textinput fields)
//  2. [HomeView] : Profile, link status and a carousel of Wrapped snapshots; 1-5 generate a term
//  3. [DetailView] : Artist-by-artist walk through one snapshot with preview, publish and delete
//  4. [GameView] : Trivia about the first snapshot with a per-question timer
//  5. [PublicView] : Snapshots other users have published
//
// The view follows the session navigator: components navigate and [Model] re-reads the current route after
// each message. Home mounting streams [tasks.ProgressUpdate] values through a channel while a spinner runs.
//
// The palette follows the persisted theme preference and is switched with "t".
package ui
