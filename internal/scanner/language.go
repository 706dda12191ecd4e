package scanner

import (
	"strings"
)

// languageMap maps file extensions to the languages cfglens can parse.
// Extensions of languages without a grammar are absent, so unsupported
// files never reach the analyzer.
var languageMap = map[string]string{
	// Rust
	".rs": "rust",

	// Python
	".py":  "python",
	".pyw": "python",
	".pyi": "python",

	// Go
	".go": "go",

	// JavaScript/TypeScript
	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".ts":  "typescript",
	".mts": "typescript",
	".cts": "typescript",

	// Java
	".java": "java",

	// C
	".c": "c",
	".h": "c",

	// C++
	".cpp": "cpp",
	".cc":  "cpp",
	".cxx": "cpp",
	".hpp": "cpp",
	".hh":  "cpp",
	".hxx": "cpp",
}

// DetectLanguage returns the language tag for a file extension, or ""
// when the extension is not supported.
func DetectLanguage(ext string) string {
	ext = strings.ToLower(ext)

	if lang, ok := languageMap[ext]; ok {
		return lang
	}

	return ""
}

// SupportedLanguages returns the distinct language tags, for help text
// and validation.
func SupportedLanguages() []string {
	seen := map[string]bool{}
	var langs []string
	for _, lang := range languageMap {
		if !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	return langs
}
