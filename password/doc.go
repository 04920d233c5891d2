// Package password hashes and verifies the credentials stored in user
// records using argon2id in PHC string format.
package password
