package relay

import (
	"net/url"
	"strings"
)

// DefaultMimeType is used when an extension matched without a known MIME type.
const DefaultMimeType = "application/octet-stream"

var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp",
	".svg", ".ico", ".tiff", ".avif", ".heic", ".heif",
}

var videoExtensions = []string{
	".mp4", ".webm", ".ogg", ".mov", ".avi",
	".mkv", ".flv", ".wmv", ".m4v", ".3gp",
}

var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".tiff": "image/tiff",
	".avif": "image/avif",
	".heic": "image/heic",
	".heif": "image/heif",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".flv":  "video/x-flv",
	".wmv":  "video/x-ms-wmv",
	".m4v":  "video/x-m4v",
	".3gp":  "video/3gpp",
}

// Classification is the result of the media check on an upstream answer.
type Classification struct {
	// ContentType is the upstream content type.
	ContentType string
	// Path is the lowercased url path used for extension matching.
	Path string
	// Extension is the substring from the last dot of the path, empty without dot.
	Extension           string
	HasValidContentType bool
	HasValidExtension   bool
	Valid               bool
}

// Classify tells whether an upstream answer is an image or a video from its
// content type, falling back on the url path extension.
func Classify(targetURL, contentType string) *Classification {
	res := &Classification{
		ContentType:         contentType,
		HasValidContentType: isMediaContentType(contentType),
		Path:                lowercasedPath(targetURL),
	}

	// Extension from last dot
	if idx := strings.LastIndex(res.Path, "."); idx >= 0 {
		res.Extension = res.Path[idx:]
	}

	// Check known extensions
	for _, list := range [][]string{imageExtensions, videoExtensions} {
		for _, ext := range list {
			if strings.HasSuffix(res.Path, ext) {
				res.HasValidExtension = true

				break
			}
		}
	}

	res.Valid = res.HasValidContentType || res.HasValidExtension

	return res
}

// MimeTypeForExtension returns the canonical MIME type of an extension (with its leading dot).
func MimeTypeForExtension(ext string) string {
	if v, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return v
	}

	return DefaultMimeType
}

func isMediaContentType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))

	return strings.HasPrefix(ct, "image") || strings.HasPrefix(ct, "video")
}

func lowercasedPath(targetURL string) string {
	u, err := url.Parse(targetURL)
	// Keep raw value on unparsable urls
	if err != nil {
		return strings.ToLower(targetURL)
	}

	return strings.ToLower(u.Path)
}
