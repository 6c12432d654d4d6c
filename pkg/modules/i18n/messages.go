package i18n

// TranslationRequest asks the i18n module to resolve a key. An empty
// Language means the module's current language.
type TranslationRequest struct {
	Key      string
	Language Language
}

// TranslationResponse carries the resolved translation back on the bus. An
// unknown key echoes as its own translation.
type TranslationResponse struct {
	Key         string
	Translation string
	Language    Language
}

// LanguageChangeRequest switches the module's current language.
type LanguageChangeRequest struct {
	Language Language
}

// LanguageChanged announces that the current language switched, letting UI
// code re-render labels.
type LanguageChanged struct {
	Language Language
}
