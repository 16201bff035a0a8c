// Package i18n localizes the report messages emitted for outcome codes.
package i18n

import "fmt"

// Translator renders a localized message for an Outcome code. data carries
// optional context to embed, currently "expected" (the predicate that was
// checked).
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"predicate":   "predicate not satisfied",
		"missing":     "required element absent",
		"cardinality": "occurrence constraint violated",
		"store_error": "tree store unavailable",
		"_expected":   " (expected %s)",
	},
	"ja": {
		"predicate":   "述語が一致しません",
		"missing":     "必須要素が見つかりません",
		"cardinality": "出現回数の制約に違反しています",
		"store_error": "ツリーストアを読み取れません",
		"_expected":   "（期待: %s）",
	},
}

// dictTranslator is the built-in dictionary-backed Translator.
type dictTranslator struct{ dict map[string]string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := t.dict[code]
	if !ok {
		return code
	}
	if want := data["expected"]; want != "" {
		msg += fmt.Sprintf(t.dict["_expected"], want)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{dict: dictionaries["en"]}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	dict, ok := dictionaries[lang]
	if !ok {
		dict = dictionaries["en"]
	}
	currentTranslator = dictTranslator{dict: dict}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). Passing nil restores the built-in English one.
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{dict: dictionaries["en"]}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
