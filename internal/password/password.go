// Package password recovers the database password that Jet 3 (.mdb) files
// store XOR-masked in their header.
//
// The offset and key belong to one format revision. They are applied to any
// file without checking its version; decodes that yield non-printable bytes
// are reported as ErrUnrecognized instead of returning garbage.
package password

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

const (
	// Offset of the masked password in the raw file.
	Offset = 0x42
	// Length of the masked password window.
	Length = 14
)

var key = [Length]byte{0x86, 0xfb, 0xec, 0x37, 0x5d, 0x44, 0x9c, 0xfa, 0xc6, 0x5e, 0x28, 0xe6, 0x13, 0xb6}

// ErrUnrecognized means the window did not decode to a printable password,
// most likely because the file is not a Jet 3 database.
var ErrUnrecognized = errors.New("password window does not decode to printable text")

// Key returns a copy of the XOR key.
func Key() [Length]byte {
	return key
}

// Recover reads the password window from the file at path and decodes it.
// An empty string means the file is not password protected.
func Recover(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening database file")
	}
	defer file.Close()

	var window [Length]byte
	if n, err := file.ReadAt(window[:], Offset); n < Length {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", errors.Wrapf(err, "reading password window at 0x%x", Offset)
	}
	return Decode(window)
}

// Decode unmasks a password window. Decoding stops at the first zero byte.
func Decode(window [Length]byte) (string, error) {
	plain := make([]byte, 0, Length)
	for i := range window {
		b := window[i] ^ key[i]
		if b == 0 {
			break
		}
		if b < 0x20 || b > 0x7e {
			return "", ErrUnrecognized
		}
		plain = append(plain, b)
	}
	return string(plain), nil
}

// Encode masks a password the way the file header stores it. Passwords
// longer than Length are truncated.
func Encode(password string) [Length]byte {
	var window [Length]byte
	for i := range window {
		var b byte
		if i < len(password) {
			b = password[i]
		}
		window[i] = b ^ key[i]
	}
	return window
}
