// Package account keeps the in-memory player registry.
//
// Usernames double as user ids across the service and transports. Passwords
// are stored as bcrypt hashes; the registry lives only as long as the process.
package account
