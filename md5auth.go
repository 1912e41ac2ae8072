package sane

import (
	"crypto/md5"
	"encoding/hex"
)

// md5Challenge computes the ISO-8859-1 MD5 hash of salt concatenated with
// password, hex-encoded with lowercase digits, as documented by the SANE
// specification's challenge-response authentication. This client never
// sends the result by default: some widely deployed saned builds parse the
// "$MD5$" separator incorrectly, so AUTHORIZE always carries the cleartext
// password (see Session's authorization sub-dialog). The helper is unexported
// and nothing in the package calls it; there is no option that switches
// AUTHORIZE to the challenge form. Characters outside ISO-8859-1 are hashed
// as '?'.
func md5Challenge(salt, password string) string {
	var b []byte
	for _, c := range salt + password {
		if c > 0xFF {
			c = '?'
		}
		b = append(b, byte(c))
	}
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
