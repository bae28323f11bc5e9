package auth

import "golang.org/x/crypto/bcrypt"

// passwordCost fixes the bcrypt work factor for stored credentials.
const passwordCost = 12

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword checks a plaintext password against its stored hash.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
