// Package identity is the authentication and authorization core for the PACE
// collaboration platform: it verifies a user identity from local credentials
// or a federated provider profile, mints a signed session token carrying the
// authorization claims, and rehydrates that token into a request-scoped
// session on every request.
//
// Session model:
//   - Sessions are stateless. The signed token is the only source of truth
//     between issuance and expiry; hydration verifies the signature and the
//     expiry window and projects the claims into a read-only SessionObject.
//     There is no server-side session store and no revocation list, so an
//     issued token stays valid until it expires.
//
// Access policy:
//   - Authorization is coarse, role based. IsAuthorized and NavigationFor are
//     pure functions over a single role enumeration shared by the user model
//     and the capability table. Both the navigation assembly and the route
//     middleware consult the same table, so restricted surfaces are enforced
//     server side instead of only being hidden in the UI.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     federation flow to describe login and sign-in events. Sinks run
//     best-effort (errors are logged) so you can forward events to a database
//     or a queue without blocking authentication.
package identity
