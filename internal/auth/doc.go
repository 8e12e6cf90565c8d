// Package auth manages the queue owner's OAuth credential lifecycle.
//
// Manager owns the single credential: it hands out the authorization URL with
// a CSRF state token, exchanges the callback code, and supplies valid access
// tokens to the services layer. Refreshes are serialized through a
// singleflight group so concurrent requests arriving with an expired token
// share one refresh call. A failed refresh clears the stored credential,
// returning the relay to the unauthenticated state until the owner logs in
// again.
package auth
