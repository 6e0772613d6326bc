// Package localized provides a locale-keyed container with a fallback default.
//
// Manifests describe titles and author names as TOML tables such as
//
//	title.default = "Kusa"
//	title.en-US   = "Grass"
//
// which decode into a Localized[string]. Locales accept both "-" and "_" as
// the language/region separator and normalize to lowercase language plus
// uppercase region, so "zh-cn", "zh_CN" and "ZH-CN" address the same entry.
package localized
