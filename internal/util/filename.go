// Package util holds helpers shared by the renderers.
package util

import (
	"path/filepath"
	"regexp"
	"strings"
)

// LanguageToExt maps code fence language tags to file extensions.
var LanguageToExt = map[string]string{
	"python":     "py",
	"py":         "py",
	"python3":    "py",
	"ipython":    "py",
	"pycon":      "py",
	"cuda":       "cu",
	"c++":        "cpp",
	"cpp":        "cpp",
	"c":          "c",
	"bash":       "sh",
	"shell":      "sh",
	"sh":         "sh",
	"console":    "sh",
	"json":       "json",
	"yaml":       "yaml",
	"yml":        "yaml",
	"toml":       "toml",
	"ini":        "ini",
	"dockerfile": "dockerfile",
	"markdown":   "md",
	"latex":      "tex",
	"tex":        "tex",
	"javascript": "js",
	"typescript": "ts",
	"go":         "go",
	"rust":       "rs",
	"sql":        "sql",
	"mermaid":    "mmd",
	"text":       "txt",
	"plaintext":  "txt",
}

// 只在注释行中查找文件名，避免把 torch.ones 之类的表达式当成文件名
var (
	commentPrefixRe  = regexp.MustCompile(`^\s*(#|//|--|/\*|<!--|;|%)`)
	filenamePattern  = regexp.MustCompile(`[a-zA-Z0-9_\-./]*[a-zA-Z0-9_\-]\.[a-zA-Z0-9]+`)
	maxFilenameLen   = 32
	fallbackBaseName = "snippet"
)

// Ext returns the file extension for a fence language, "txt" if unknown.
func Ext(language string) string {
	if ext, ok := LanguageToExt[strings.ToLower(strings.TrimSpace(language))]; ok {
		return ext
	}
	return "txt"
}

// ExtractFilename returns the first file name with a known extension named
// in a comment line, or "".
func ExtractFilename(line string) string {
	if !commentPrefixRe.MatchString(line) {
		return ""
	}
	for _, match := range filenamePattern.FindAllString(line, -1) {
		name := filepath.Base(match)
		if isKnownExt(strings.TrimPrefix(filepath.Ext(name), ".")) {
			return name
		}
	}
	return ""
}

func isKnownExt(ext string) bool {
	for _, known := range LanguageToExt {
		if known == ext {
			return true
		}
	}
	return false
}

// CodeFileName names a code block for copy and save actions. A file name
// mentioned in a comment on the first two lines wins; otherwise the name is
// snippet.<ext>.
func CodeFileName(code, language string) string {
	ext := Ext(language)
	lines := strings.SplitN(strings.TrimSpace(code), "\n", 3)
	for i, line := range lines {
		if i == 2 {
			break
		}
		if name := ExtractFilename(line); name != "" && len(name) <= maxFilenameLen {
			return name
		}
	}
	return fallbackBaseName + "." + ext
}
