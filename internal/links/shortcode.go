package links

import (
	"crypto/rand"
	"errors"
	"math/big"

	"gorm.io/gorm"

	"linkpress/internal/config"
	"linkpress/internal/pages"
)

const base62Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// maxGenerateAttempts bounds the collision retry loop. With 62^7 codes the
// loop practically never runs more than once.
const maxGenerateAttempts = 10

// ErrShortCodeExhausted is returned when code generation keeps colliding.
var ErrShortCodeExhausted = errors.New("could not generate a unique short code")

// randomCode builds a code of the given length from crypto/rand.
func randomCode(length int) (string, error) {
	max := big.NewInt(int64(len(base62Alphabet)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = base62Alphabet[n.Int64()]
	}
	return string(code), nil
}

// GenerateShortCode returns a fresh short code that collides with neither an
// existing link's code nor a page slug. Codes and slugs share the root URL
// namespace, so both tables are checked.
func GenerateShortCode(db *gorm.DB) (string, error) {
	length := config.GetConfig().ShortCodeLength

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code, err := randomCode(length)
		if err != nil {
			return "", err
		}

		var count int64
		if err := db.Model(&Link{}).Where("short_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count > 0 {
			continue
		}

		taken, err := pages.SlugExists(db, code)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		return code, nil
	}

	return "", ErrShortCodeExhausted
}
