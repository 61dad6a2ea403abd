package usecase

import "golang.org/x/crypto/bcrypt"

// CredentialVerifier abstracts how stored credentials are produced and
// checked. PlaintextVerifier mirrors the legacy behaviour of comparing
// raw strings; BcryptVerifier is the hardened alternative behind the
// same interface. Digest is applied when a credential enters the store
// (user creation, password change request), so approval can copy the
// stored value verbatim.
type CredentialVerifier interface {
	Verify(stored, supplied string) bool
	Digest(plain string) (string, error)
}

type PlaintextVerifier struct{}

func (PlaintextVerifier) Verify(stored, supplied string) bool {
	return stored == supplied
}

func (PlaintextVerifier) Digest(plain string) (string, error) {
	return plain, nil
}

type BcryptVerifier struct{}

func (BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

func (BcryptVerifier) Digest(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
