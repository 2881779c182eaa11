package delta

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// sign computes the hex HMAC-SHA256 the exchange expects over the
// concatenation timestamp + method + path + body.
func sign(secret, timestamp, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + method + path + body))
	return hex.EncodeToString(mac.Sum(nil))
}
