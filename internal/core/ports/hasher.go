package ports

// PasswordHasher is the credential-hashing collaborator: a slow, salted
// one-way function with constant-time verification.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
