package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted one-way hash of plaintext. The output is
// self-describing (algorithm, cost and salt travel inside the hash string),
// so verification needs no side-channel storage.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash. Comparison runs in
// constant time. Any failure (wrong password, corrupt or malformed hash)
// yields a uniform false so callers can not distinguish the cases.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
