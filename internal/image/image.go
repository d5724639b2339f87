// internal/image/image.go
package image

import (
	"strings"

	"github.com/tamzrod/ffslot/internal/volume"
)

// Recognizer reports whether a directory entry is a mountable image.
type Recognizer interface {
	Recognized(e volume.Entry) bool
}

// RecognizerFunc adapts a plain function.
type RecognizerFunc func(e volume.Entry) bool

func (f RecognizerFunc) Recognized(e volume.Entry) bool { return f(e) }

// Extensions is the built-in set of image type tokens, lower case.
var Extensions = []string{
	"adf", "adl", "adm", "ads", "d81", "dsd", "dsk", "edsk", "hdm",
	"hfe", "ima", "img", "imd", "jvc", "mbd", "mgt", "od", "opd",
	"pdi", "sdu", "sf7", "ssd", "st", "trd", "v9t9", "vdk", "xdf",
}

// ByExtension recognizes regular files whose type token is in exts.
// A nil exts means Extensions.
func ByExtension(exts []string) Recognizer {
	if exts == nil {
		exts = Extensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = struct{}{}
	}
	return RecognizerFunc(func(e volume.Entry) bool {
		if e.IsDir() {
			return false
		}
		_, ok := set[TypeToken(e.Name)]
		return ok
	})
}

// TypeToken returns the lower-cased extension of name, without the dot.
func TypeToken(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// BaseName strips the extension from name.
func BaseName(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name
	}
	return name[:i]
}
