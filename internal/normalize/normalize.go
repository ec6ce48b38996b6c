// Package normalize cleans up free-form metadata: language labels,
// accented text, and sort keys.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// iso639_1Codes lists every two-letter ISO 639-1 code, space separated.
const iso639_1Codes = "aa ab ae af ak am an ar as av ay az ba be bg bh bi " +
	"bm bn bo br bs ca ce ch co cr cs cu cv cy da de dv dz ee el en eo es " +
	"et eu fa ff fi fj fo fr fy ga gd gl gn gu gv ha he hi ho hr ht hu hy " +
	"hz ia id ie ig ii ik io is it iu ja jv ka kg ki kj kk kl km kn ko kr " +
	"ks ku kv kw ky la lb lg li ln lo lt lu lv mg mh mi mk ml mn mr ms mt " +
	"my na nb nd ne ng nl nn no nr nv ny oc oj om or os pa pi pl ps pt qu " +
	"rm rn ro ru rw sa sc sd se sg si sk sl sm sn so sq sr ss st su sv sw " +
	"ta te tg th ti tk tl tn to tr ts tt tw ty ug uk ur uz ve vi vo wa wo " +
	"xh yi yo za zh zu"

//nolint:gochecknoglobals // Built once from the constant above
var iso639_1Set = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, code := range strings.Fields(iso639_1Codes) {
		set[code] = struct{}{}
	}
	return set
}()

// languageAliases maps everything that is not already an ISO 639-1 code
// to one: three-letter ISO 639-2 codes (terminological and, where they
// differ, bibliographic) and English language names. One language per
// line keeps the variants together.
//
//nolint:gochecknoglobals // Static lookup table
var languageAliases = map[string]string{
	"eng": "en", "english": "en",
	"spa": "es", "spanish": "es",
	"fra": "fr", "fre": "fr", "french": "fr",
	"deu": "de", "ger": "de", "german": "de",
	"ita": "it", "italian": "it",
	"por": "pt", "portuguese": "pt",
	"nld": "nl", "dut": "nl", "dutch": "nl",
	"rus": "ru", "russian": "ru",
	"jpn": "ja", "japanese": "ja",
	"zho": "zh", "chi": "zh", "chinese": "zh", "mandarin": "zh", "cantonese": "zh",
	"kor": "ko", "korean": "ko",
	"ara": "ar", "arabic": "ar",
	"hin": "hi", "hindi": "hi",
	"pol": "pl", "polish": "pl",
	"swe": "sv", "swedish": "sv",
	"nor": "no", "norwegian": "no",
	"dan": "da", "danish": "da",
	"fin": "fi", "finnish": "fi",
	"tur": "tr", "turkish": "tr",
	"ell": "el", "gre": "el", "greek": "el",
	"heb": "he", "hebrew": "he",
	"ces": "cs", "cze": "cs", "czech": "cs",
	"hun": "hu", "hungarian": "hu",
	"ron": "ro", "rum": "ro", "romanian": "ro",
	"tha": "th", "thai": "th",
	"vie": "vi", "vietnamese": "vi",
	"ind": "id", "indonesian": "id",
	"msa": "ms", "may": "ms", "malay": "ms",
	"ukr": "uk", "ukrainian": "uk",
	"cat": "ca", "catalan": "ca",
	"hrv": "hr", "croatian": "hr",
	"slk": "sk", "slo": "sk", "slovak": "sk",
	"bul": "bg", "bulgarian": "bg",
	"lit": "lt", "lithuanian": "lt",
	"lav": "lv", "latvian": "lv",
	"est": "et", "estonian": "et",
	"slv": "sl", "slovenian": "sl",
	"srp": "sr", "serbian": "sr",
	"fas": "fa", "per": "fa", "persian": "fa", "farsi": "fa",
	"ben": "bn", "bengali": "bn",
	"tam": "ta", "tamil": "ta",
	"tel": "te", "telugu": "te",
	"mar": "mr", "marathi": "mr",
	"guj": "gu", "gujarati": "gu",
	"kan": "kn", "kannada": "kn",
	"mal": "ml", "malayalam": "ml",
	"pan": "pa", "punjabi": "pa",
	"urd": "ur", "urdu": "ur",
	"nep": "ne", "nepali": "ne",
	"sin": "si", "sinhala": "si",
	"mya": "my", "bur": "my", "burmese": "my",
	"khm": "km", "khmer": "km",
	"lao": "lo",
	"amh": "am", "amharic": "am",
	"swa": "sw", "swahili": "sw",
	"afr": "af", "afrikaans": "af",
	"zul": "zu", "zulu": "zu",
	"xho": "xh", "xhosa": "xh",
	"hau": "ha", "hausa": "ha",
	"yor": "yo", "yoruba": "yo",
	"ibo": "ig", "igbo": "ig",
	"cym": "cy", "wel": "cy", "welsh": "cy",
	"gle": "ga", "irish": "ga",
	"gla": "gd", "scottish gaelic": "gd",
	"eus": "eu", "baq": "eu", "basque": "eu",
	"glg": "gl", "galician": "gl",
	"isl": "is", "ice": "is", "icelandic": "is",
	"mkd": "mk", "mac": "mk", "macedonian": "mk",
	"bos": "bs", "bosnian": "bs",
	"sqi": "sq", "alb": "sq", "albanian": "sq",
	"hye": "hy", "arm": "hy", "armenian": "hy",
	"kat": "ka", "geo": "ka", "georgian": "ka",
	"kaz": "kk", "kazakh": "kk",
	"uzb": "uz", "uzbek": "uz",
	"azj": "az", "azerbaijani": "az",
	"mon": "mn", "mongolian": "mn",
	"tgl": "tl", "fil": "tl", "tagalog": "tl", "filipino": "tl",
	"jav": "jv", "javanese": "jv",
	"sun": "su", "sundanese": "su",
	"tib": "bo", "tibetan": "bo",
}

// languageNames gives the English display name for the ISO 639-1 codes
// that LanguageCode can produce.
//
//nolint:gochecknoglobals // Static lookup table
var languageNames = map[string]string{
	"af": "Afrikaans", "am": "Amharic", "ar": "Arabic", "az": "Azerbaijani",
	"bg": "Bulgarian", "bn": "Bengali", "bo": "Tibetan", "bs": "Bosnian",
	"ca": "Catalan", "cs": "Czech", "cy": "Welsh", "da": "Danish",
	"de": "German", "el": "Greek", "en": "English", "es": "Spanish",
	"et": "Estonian", "eu": "Basque", "fa": "Persian", "fi": "Finnish",
	"fr": "French", "ga": "Irish", "gd": "Scottish Gaelic", "gl": "Galician",
	"gu": "Gujarati", "ha": "Hausa", "he": "Hebrew", "hi": "Hindi",
	"hr": "Croatian", "hu": "Hungarian", "hy": "Armenian", "id": "Indonesian",
	"ig": "Igbo", "is": "Icelandic", "it": "Italian", "ja": "Japanese",
	"jv": "Javanese", "ka": "Georgian", "kk": "Kazakh", "km": "Khmer",
	"kn": "Kannada", "ko": "Korean", "lo": "Lao", "lt": "Lithuanian",
	"lv": "Latvian", "mk": "Macedonian", "ml": "Malayalam", "mn": "Mongolian",
	"mr": "Marathi", "ms": "Malay", "my": "Burmese", "ne": "Nepali",
	"nl": "Dutch", "no": "Norwegian", "pa": "Punjabi", "pl": "Polish",
	"ps": "Pashto", "pt": "Portuguese", "ro": "Romanian", "ru": "Russian",
	"si": "Sinhala", "sk": "Slovak", "sl": "Slovenian", "sq": "Albanian",
	"sr": "Serbian", "su": "Sundanese", "sv": "Swedish", "sw": "Swahili",
	"ta": "Tamil", "te": "Telugu", "th": "Thai", "tl": "Tagalog",
	"tr": "Turkish", "uk": "Ukrainian", "ur": "Urdu", "uz": "Uzbek",
	"vi": "Vietnamese", "xh": "Xhosa", "yo": "Yoruba", "zh": "Chinese",
	"zu": "Zulu",
}

// LanguageCode reduces a language label to an ISO 639-1 code. Accepted
// inputs: two-letter codes ("en"), three-letter codes ("eng", "ger"),
// locale tags ("en-US", "en_GB"), and English names in any case
// ("English"). Unrecognized input yields "".
func LanguageCode(raw string) string {
	s := strings.ToLower(strings.TrimSpace(SanitizeString(raw)))
	if s == "" {
		return ""
	}

	// Locale tags keep only the language subtag.
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}

	if _, ok := iso639_1Set[s]; ok {
		return s
	}
	return languageAliases[s]
}

// Language resolves a language label to its English display name, or ""
// when the label is unrecognized.
func Language(raw string) string {
	return languageNames[LanguageCode(raw)]
}

// SanitizeString strips null bytes. External catalog metadata sometimes
// carries null terminators, which break SQLite text columns and JSON.
func SanitizeString(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}

// foldChain decomposes to NFD, drops combining marks, and recomposes.
//
//nolint:gochecknoglobals // Reused chain; transform.String is safe for concurrent use
var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases and strips diacritics: "Crème Brûlée" -> "creme brulee".
// Search and matching work on folded text.
func Fold(s string) string {
	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		// Only malformed UTF-8 fails; use the input as-is.
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// SortTitle derives a sort key from a title by folding it and dropping a
// leading English article: "The Hobbit" sorts as "hobbit".
func SortTitle(title string) string {
	s := Fold(title)
	for _, article := range [...]string{"the ", "a ", "an "} {
		if rest, ok := strings.CutPrefix(s, article); ok {
			return strings.TrimSpace(rest)
		}
	}
	return s
}
