// Package mail provides an SMTP implementation of the notification mailer
// used by the recoverykey service. It renders the post-add and post-remove
// recovery key notices as plain-text messages and delivers them over SMTP
// via go-mail.
//
// # Architecture boundaries
//
// The package knows nothing about recovery key state. It receives an
// already-hydrated account record plus request metadata and turns them
// into messages. Delivery failures are returned to the caller; retry and
// failure accounting live in the service layer.
//
// # What this package must NOT do
//
//   - Read or write Redis.
//   - Decide WHETHER a notification is owed; only HOW it is delivered.
//   - Include recovery key ids, recovery data, or hints in message bodies.
package mail
