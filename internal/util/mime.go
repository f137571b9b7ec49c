package util

import (
	"net/http"
	"strings"
)

var imageMIMEs = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// IsImageExt reports whether ext names a raster format OCR providers accept inline.
func IsImageExt(ext string) bool {
	_, ok := imageMIMEs[strings.ToLower(ext)]
	return ok
}

// MIMEForExt maps a file extension to its MIME type. Unknown extensions come
// back as application/octet-stream.
func MIMEForExt(ext string) string {
	ext = strings.ToLower(ext)
	if m, ok := imageMIMEs[ext]; ok {
		return m
	}
	if ext == ".pdf" {
		return "application/pdf"
	}
	return "application/octet-stream"
}

func MakeDataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}

// PickMIME takes an explicit MIME when given, otherwise detects it from the bytes.
func PickMIME(explicit string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" && exp != "application/octet-stream" {
		if semi := strings.IndexByte(exp, ';'); semi >= 0 {
			exp = strings.TrimSpace(exp[:semi])
		}
		if exp != "" {
			return exp
		}
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}
