// Package server provides HTTP routing, middleware and the route guard for the notes front-end.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /notes/{id}").
//
// # Route Guard
//
// [RouteGuard] decides per request whether a visitor may see a page:
//   - private prefixes (/profile, /notes) send visitors holding no token cookie to the sign-in page
//   - public prefixes (/sign-in, /sign-up) send authenticated visitors home
//
// The session is probed against the backend only when a token cookie is present. [Decide] holds the rule table.
//
// The guard also attaches the incoming cookies and a [services.CookieSink] to each request's context, and relays the
// sink's cookies on the response. Handlers that call the backend therefore forward the visitor's credentials and pass
// rotated tokens back without extra code.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
