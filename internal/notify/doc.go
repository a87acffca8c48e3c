// Package notify sends the account lifecycle emails: a welcome message after
// signup and a cancellation message after an account is deleted.
//
// Emails are rendered synchronously and delivered asynchronously on the jobs
// worker pool through a Mailer, so HTTP handlers never wait on the provider.
package notify
