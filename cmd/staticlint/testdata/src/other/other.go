package other

import "encoding/base64"

func encode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}
