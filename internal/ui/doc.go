// Package ui implements the interactive notes browser using bubbletea's Elm architecture.
//
// The browser moves through these views:
//  1. [LoadingView] : shown until the session probe ([session.Provider.Init]) returns
//  2. [SignedOutView] : anonymous users get a sign-in hint
//  3. [NotesView] : search box, note list and pager
//  4. [NoteView] : a single note
//
// Keystrokes in the search box are pushed into a [search.Debouncer]. Only settled queries reach the backend, and each
// one resets the page to 1. Pages are read through a [querycache.Cache], so revisiting a page is instant and the last
// resolved page stays on screen while the next one loads.
//
// The (view) [Model] receives its asynchronous results through the [Msg] union type.
package ui
