package model

import (
	"net/url"
	"path"
	"strings"
)

// Category classifies an asset by the role it plays in a page.
type Category string

const (
	// CategoryDocument is an HTML document. The root page is always a document.
	CategoryDocument Category = "document"
	// CategoryStylesheet is a CSS file. Stylesheets are rescanned for nested references.
	CategoryStylesheet Category = "stylesheet"
	// CategoryScript is a JavaScript file.
	CategoryScript Category = "script"
	// CategoryImage is a raster or vector image.
	CategoryImage Category = "image"
	// CategoryFont is a web font.
	CategoryFont Category = "font"
	// CategoryVideo is a video file.
	CategoryVideo Category = "video"
	// CategoryOther is anything that could not be classified.
	CategoryOther Category = "other"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryDocument,
	CategoryStylesheet,
	CategoryScript,
	CategoryImage,
	CategoryFont,
	CategoryVideo,
	CategoryOther,
}

// extensionCategories maps lower-case file extensions to categories.
var extensionCategories = map[string]Category{
	".html":  CategoryDocument,
	".htm":   CategoryDocument,
	".xhtml": CategoryDocument,

	".css": CategoryStylesheet,

	".js":  CategoryScript,
	".mjs": CategoryScript,

	".png":  CategoryImage,
	".jpg":  CategoryImage,
	".jpeg": CategoryImage,
	".gif":  CategoryImage,
	".svg":  CategoryImage,
	".webp": CategoryImage,
	".ico":  CategoryImage,
	".bmp":  CategoryImage,
	".avif": CategoryImage,
	".tif":  CategoryImage,
	".tiff": CategoryImage,

	".woff":  CategoryFont,
	".woff2": CategoryFont,
	".ttf":   CategoryFont,
	".otf":   CategoryFont,
	".eot":   CategoryFont,

	".mp4":  CategoryVideo,
	".webm": CategoryVideo,
	".ogg":  CategoryVideo,
	".ogv":  CategoryVideo,
	".mov":  CategoryVideo,
	".m4v":  CategoryVideo,
}

// ClassifyCategory derives the category of a resource.
// The file extension of the URL path wins; the reported Content-Type is
// only consulted when the extension is missing or unknown.
func ClassifyCategory(rawURL, contentType string) Category {
	if c, ok := extensionCategories[urlExtension(rawURL)]; ok {
		return c
	}
	return categoryFromContentType(contentType)
}

// urlExtension returns the lower-case extension of the URL path, ignoring
// query string and fragment.
func urlExtension(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(path.Ext(p))
}

// categoryFromContentType maps a MIME type (parameters allowed) to a category.
func categoryFromContentType(contentType string) Category {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	mediaType = strings.TrimSpace(mediaType)

	switch {
	case mediaType == "":
		return CategoryOther
	case mediaType == "text/html", mediaType == "application/xhtml+xml":
		return CategoryDocument
	case mediaType == "text/css":
		return CategoryStylesheet
	case strings.Contains(mediaType, "javascript"), strings.Contains(mediaType, "ecmascript"):
		return CategoryScript
	case strings.HasPrefix(mediaType, "image/"):
		return CategoryImage
	case strings.HasPrefix(mediaType, "font/"),
		strings.HasPrefix(mediaType, "application/font-"),
		strings.HasPrefix(mediaType, "application/x-font-"),
		mediaType == "application/vnd.ms-fontobject":
		return CategoryFont
	case strings.HasPrefix(mediaType, "video/"):
		return CategoryVideo
	default:
		return CategoryOther
	}
}
