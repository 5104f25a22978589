package gzip64

import "encoding/base64"

func encode(data []byte) []string {
	return []string{
		base64.StdEncoding.EncodeToString(data),
		base64.URLEncoding.EncodeToString(data),    // want "base64.URLEncoding is not allowed here, use base64.StdEncoding"
		base64.RawStdEncoding.EncodeToString(data), // want "base64.RawStdEncoding is not allowed here, use base64.StdEncoding"
	}
}
