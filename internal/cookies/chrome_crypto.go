package cookies

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"errors"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/pbkdf2"
)

// decryptFunc decrypts a Chromium encrypted_value.
type decryptFunc func(encrypted []byte, metaVersion int64) (string, bool)

const (
	chromeSalt   = "saltysalt"
	chromeKeyLen = 16
	// chromeHashedMetaVersion is the first schema whose plaintext starts
	// with a SHA-256 of the host.
	chromeHashedMetaVersion = 24
)

var chromeIV = []byte(strings.Repeat(" ", aes.BlockSize))

// keyringGet is swapped in tests.
var keyringGet = keyring.Get

func chromeKey(password string, iterations int) []byte {
	return pbkdf2.Key([]byte(password), []byte(chromeSalt), iterations, chromeKeyLen, sha1.New)
}

// newChromeDecryptor returns the decryptor for a Chromium browser whose
// Safe Storage secret lives under service/account. The secret is read
// from the OS keyring on first use only. Windows values are sealed with
// DPAPI and are not decrypted.
func newChromeDecryptor(service, account string) decryptFunc {
	var (
		once     sync.Once
		password string
	)
	secret := func() string {
		once.Do(func() {
			if service == "" {
				return
			}
			if pw, err := keyringGet(service, account); err == nil {
				password = strings.TrimSpace(pw)
			}
		})
		return password
	}

	return func(encrypted []byte, meta int64) (string, bool) {
		if len(encrypted) < 3 {
			return "", false
		}
		var keys [][]byte
		switch {
		case runtime.GOOS == "darwin" && string(encrypted[:3]) == "v10":
			keys = [][]byte{chromeKey(secret(), 1003)}
		case runtime.GOOS == "linux" && string(encrypted[:3]) == "v10":
			keys = [][]byte{chromeKey("peanuts", 1), chromeKey("", 1)}
		case runtime.GOOS == "linux" && string(encrypted[:3]) == "v11":
			keys = [][]byte{chromeKey(secret(), 1), chromeKey("", 1)}
		default:
			return "", false
		}
		for _, key := range keys {
			plain, err := decryptCBC(encrypted[3:], key)
			if err != nil {
				continue
			}
			if meta >= chromeHashedMetaVersion && len(plain) >= 32 {
				plain = plain[32:]
			}
			if utf8.Valid(plain) {
				return string(plain), true
			}
		}
		return "", false
	}
}

func decryptCBC(ciphertext, key []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("ciphertext is not a whole number of blocks")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, chromeIV).CryptBlocks(out, ciphertext)

	n := int(out[len(out)-1])
	if n == 0 || n > aes.BlockSize || n > len(out) {
		return nil, errors.New("bad padding")
	}
	for _, b := range out[len(out)-n:] {
		if int(b) != n {
			return nil, errors.New("bad padding")
		}
	}
	return out[:len(out)-n], nil
}
