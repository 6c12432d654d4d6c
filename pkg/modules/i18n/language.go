package i18n

import "fmt"

// Language is a supported UI language tag.
type Language string

const (
	English           Language = "en"
	ChineseSimplified Language = "zh-CN"
)

// DefaultLanguage is the fallback before any configuration or language
// change request.
const DefaultLanguage = ChineseSimplified

// ParseLanguage maps a configured tag to a Language.
func ParseLanguage(tag string) (Language, error) {
	switch Language(tag) {
	case English, ChineseSimplified:
		return Language(tag), nil
	default:
		return "", fmt.Errorf("unsupported language %q", tag)
	}
}

// DisplayName returns the language's self-describing name.
func (l Language) DisplayName() string {
	switch l {
	case English:
		return "English"
	case ChineseSimplified:
		return "中文"
	default:
		return string(l)
	}
}
