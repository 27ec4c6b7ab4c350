// Package services is the HTTP access layer for the notes backend.
//
// # Client
//
// [Client] is the single configured HTTP client of a process. It is rooted at "<base_url>/api" and resolves credentials
// per request through a [CredentialResolver].
//
// # Credential Strategies
//
// Two strategies sit behind the one interface:
//   - [AmbientCredentials] : adds nothing. The [http.Client] carries a cookie jar, the way a credentialed browser would.
//   - [ForwardedCredentials] : reads the incoming request's cookies from the context ([WithRequestCookies]) and sends
//     "Authorization: Bearer <accessToken>", "X-Refresh-Token: <refreshToken>" and the raw Cookie header.
//
// [NewBrowserAPI] and [NewServerAPI] build an [API] around each strategy. Both expose the same operations.
//
// # Cookie Relay
//
// A [CookieSink] attached with [WithCookieSink] collects the Set-Cookie values the backend returns while one incoming
// request is served. The server copies them onto its own response.
//
// # Error Handling
//
// Every operation except [API.CheckServerSession] returns an [*AuthError] on failure:
//   - Code : the backend status, or 500 when no response arrived
//   - Message : the body's "message" field, else an operation-specific fallback
//
// Login maps 401 and Register maps 409 to dedicated messages. [AuthError] matches [shared.ErrAPIRequest] with errors.Is.
// [UserMessage] turns any error into display text, with a dedicated message for 429.
package services
