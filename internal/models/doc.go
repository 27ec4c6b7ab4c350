// Package models defines the data transfer objects exchanged with the notes backend.
//
// Every entity is owned by the backend. The front-end only holds transient copies fetched per request or cache entry:
//   - [Note] : a note with a [Tag] drawn from a closed set
//   - [NotesPage] : one page of notes with the total page count
//   - [User] and [UserInfo] : the signed-in profile and the session-check payload
//
// Request descriptors carry their own validation through the [Validator] interface:
//   - [ListParams] : page, perPage, search and tag for GET /notes
//   - [CreateNoteParams], [UpdateNoteParams], [UpdateProfileParams], [Credentials]
//
// [TagAll] is a filter sentinel meaning "no tag". It is never stored on a note and never sent to the backend.
package models
