package translate

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLanguageName is preselected in the target selector when present.
const DefaultLanguageName = "English"

// Language is one selectable target language.
type Language struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// Catalog is an ordered list of languages with display names in title case.
type Catalog []Language

// NewCatalog title-cases names and drops entries without a code.
func NewCatalog(langs []Language) Catalog {
	caser := cases.Title(language.English)
	out := make(Catalog, 0, len(langs))
	for _, l := range langs {
		if l.Code == "" {
			continue
		}
		out = append(out, Language{
			Name: caser.String(strings.TrimSpace(l.Name)),
			Code: l.Code,
		})
	}
	return out
}

// DefaultIndex is the index of "English", or 0 when it is absent.
func (c Catalog) DefaultIndex() int {
	for i, l := range c {
		if l.Name == DefaultLanguageName {
			return i
		}
	}
	return 0
}

func (c Catalog) Default() (Language, bool) {
	if len(c) == 0 {
		return Language{}, false
	}
	return c[c.DefaultIndex()], true
}

// Lookup finds a language by code, case-insensitively.
func (c Catalog) Lookup(code string) (Language, bool) {
	for _, l := range c {
		if strings.EqualFold(l.Code, code) {
			return l, true
		}
	}
	return Language{}, false
}

// Resolve returns the language for code, falling back to the default.
func (c Catalog) Resolve(code string) (Language, bool) {
	if l, ok := c.Lookup(code); ok {
		return l, true
	}
	return c.Default()
}

// displayName returns a prompt-friendly name for an engine code.
func displayName(code string) string {
	if l, ok := NewCatalog(googleLanguages).Lookup(code); ok {
		return l.Name
	}
	if tag, err := language.Parse(code); err == nil {
		return tag.String()
	}
	return code
}

// googleLanguages is the Google Translate target table, in display order.
var googleLanguages = []Language{
	{"afrikaans", "af"}, {"albanian", "sq"}, {"amharic", "am"}, {"arabic", "ar"},
	{"armenian", "hy"}, {"assamese", "as"}, {"aymara", "ay"}, {"azerbaijani", "az"},
	{"bambara", "bm"}, {"basque", "eu"}, {"belarusian", "be"}, {"bengali", "bn"},
	{"bhojpuri", "bho"}, {"bosnian", "bs"}, {"bulgarian", "bg"}, {"catalan", "ca"},
	{"cebuano", "ceb"}, {"chichewa", "ny"}, {"chinese (simplified)", "zh-CN"},
	{"chinese (traditional)", "zh-TW"}, {"corsican", "co"}, {"croatian", "hr"},
	{"czech", "cs"}, {"danish", "da"}, {"dhivehi", "dv"}, {"dogri", "doi"},
	{"dutch", "nl"}, {"english", "en"}, {"esperanto", "eo"}, {"estonian", "et"},
	{"ewe", "ee"}, {"filipino", "tl"}, {"finnish", "fi"}, {"french", "fr"},
	{"frisian", "fy"}, {"galician", "gl"}, {"georgian", "ka"}, {"german", "de"},
	{"greek", "el"}, {"guarani", "gn"}, {"gujarati", "gu"}, {"haitian creole", "ht"},
	{"hausa", "ha"}, {"hawaiian", "haw"}, {"hebrew", "iw"}, {"hindi", "hi"},
	{"hmong", "hmn"}, {"hungarian", "hu"}, {"icelandic", "is"}, {"igbo", "ig"},
	{"ilocano", "ilo"}, {"indonesian", "id"}, {"irish", "ga"}, {"italian", "it"},
	{"japanese", "ja"}, {"javanese", "jw"}, {"kannada", "kn"}, {"kazakh", "kk"},
	{"khmer", "km"}, {"kinyarwanda", "rw"}, {"konkani", "gom"}, {"korean", "ko"},
	{"krio", "kri"}, {"kurdish (kurmanji)", "ku"}, {"kurdish (sorani)", "ckb"},
	{"kyrgyz", "ky"}, {"lao", "lo"}, {"latin", "la"}, {"latvian", "lv"},
	{"lingala", "ln"}, {"lithuanian", "lt"}, {"luganda", "lg"}, {"luxembourgish", "lb"},
	{"macedonian", "mk"}, {"maithili", "mai"}, {"malagasy", "mg"}, {"malay", "ms"},
	{"malayalam", "ml"}, {"maltese", "mt"}, {"maori", "mi"}, {"marathi", "mr"},
	{"meiteilon (manipuri)", "mni-Mtei"}, {"mizo", "lus"}, {"mongolian", "mn"},
	{"myanmar", "my"}, {"nepali", "ne"}, {"norwegian", "no"}, {"odia (oriya)", "or"},
	{"oromo", "om"}, {"pashto", "ps"}, {"persian", "fa"}, {"polish", "pl"},
	{"portuguese", "pt"}, {"punjabi", "pa"}, {"quechua", "qu"}, {"romanian", "ro"},
	{"russian", "ru"}, {"samoan", "sm"}, {"sanskrit", "sa"}, {"scots gaelic", "gd"},
	{"sepedi", "nso"}, {"serbian", "sr"}, {"sesotho", "st"}, {"shona", "sn"},
	{"sindhi", "sd"}, {"sinhala", "si"}, {"slovak", "sk"}, {"slovenian", "sl"},
	{"somali", "so"}, {"spanish", "es"}, {"sundanese", "su"}, {"swahili", "sw"},
	{"swedish", "sv"}, {"tajik", "tg"}, {"tamil", "ta"}, {"tatar", "tt"},
	{"telugu", "te"}, {"thai", "th"}, {"tigrinya", "ti"}, {"tsonga", "ts"},
	{"turkish", "tr"}, {"turkmen", "tk"}, {"twi", "ak"}, {"ukrainian", "uk"},
	{"urdu", "ur"}, {"uyghur", "ug"}, {"uzbek", "uz"}, {"vietnamese", "vi"},
	{"welsh", "cy"}, {"xhosa", "xh"}, {"yiddish", "yi"}, {"yoruba", "yo"},
	{"zulu", "zu"},
}

// GoogleLanguages returns a copy of the built-in Google language table.
func GoogleLanguages() []Language {
	out := make([]Language, len(googleLanguages))
	copy(out, googleLanguages)
	return out
}
