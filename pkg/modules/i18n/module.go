package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/synapseio/synapse/pkg/core"
)

// ModuleName is the i18n module's registry name.
const ModuleName = "i18n"

var (
	optsMu          sync.Mutex
	optDefaultLang  = DefaultLanguage
	optTranslations string
)

// Configure sets the startup language and an optional directory of JSON
// translation files. Call before module registration; the constructor reads
// these when the registry builds the module.
func Configure(defaultLanguage Language, translationsDir string) {
	optsMu.Lock()
	defer optsMu.Unlock()
	optDefaultLang = defaultLanguage
	optTranslations = translationsDir
}

// Module resolves translation keys and tracks the current language. It
// answers TranslationRequest with TranslationResponse and applies
// LanguageChangeRequest, announcing the switch with LanguageChanged.
type Module struct {
	bus    *core.MessageBus
	logger core.Logger

	mu      sync.RWMutex
	current Language
	tables  map[Language]map[string]string
}

// New builds the module with the built-in tables and the configured
// startup language.
func New() *Module {
	optsMu.Lock()
	lang, dir := optDefaultLang, optTranslations
	optsMu.Unlock()

	m := &Module{
		logger:  core.NewComponentLogger(ModuleName),
		current: lang,
		tables:  builtinTranslations(),
	}
	if dir != "" {
		if err := m.LoadDir(dir); err != nil {
			m.logger.Warnf("loading translations from %s: %v", dir, err)
		}
	}
	return m
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Initialize(ctx context.Context, bus *core.MessageBus) error {
	m.bus = bus

	reqType := bus.RegisterMessageType(&TranslationRequest{})
	changeType := bus.RegisterMessageType(&LanguageChangeRequest{})
	bus.RegisterMessageType(&TranslationResponse{})
	bus.RegisterMessageType(&LanguageChanged{})

	if err := bus.Subscribe(reqType, ModuleName); err != nil {
		return err
	}
	return bus.Subscribe(changeType, ModuleName)
}

func (m *Module) ProcessMessage(ctx context.Context, env core.Envelope) error {
	if req, ok := core.PayloadAs[*TranslationRequest](env); ok {
		lang := req.Language
		if lang == "" {
			lang = m.CurrentLanguage()
		}
		resp := &TranslationResponse{
			Key:         req.Key,
			Translation: m.Translate(req.Key, lang),
			Language:    lang,
		}
		return m.bus.Publish(resp)
	}

	if req, ok := core.PayloadAs[*LanguageChangeRequest](env); ok {
		if err := m.SetLanguage(req.Language); err != nil {
			return err
		}
		m.logger.Infof("language changed to %s", req.Language)
		return nil
	}

	return nil
}

func (m *Module) Shutdown(ctx context.Context) error { return nil }

// Translate resolves key in lang, falling back to the key itself when no
// table carries it.
func (m *Module) Translate(key string, lang Language) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if table, ok := m.tables[lang]; ok {
		if tr, ok := table[key]; ok {
			return tr
		}
	}
	return key
}

// CurrentLanguage returns the module's active language.
func (m *Module) CurrentLanguage() Language {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SetLanguage switches the active language and announces the change on the
// bus when one is attached.
func (m *Module) SetLanguage(lang Language) error {
	if _, err := ParseLanguage(string(lang)); err != nil {
		return err
	}

	m.mu.Lock()
	changed := m.current != lang
	m.current = lang
	m.mu.Unlock()

	if changed && m.bus != nil {
		return m.bus.Publish(&LanguageChanged{Language: lang})
	}
	return nil
}

// LoadDir layers <lang>.json files from dir over the current tables. Each
// file is a flat string map; file entries win over built-ins.
func (m *Module) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading translations dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		tag := strings.TrimSuffix(entry.Name(), ".json")
		lang, err := ParseLanguage(tag)
		if err != nil {
			m.logger.Warnf("skipping translation file %s: %v", entry.Name(), err)
			continue
		}
		if err := m.loadFile(filepath.Join(dir, entry.Name()), lang); err != nil {
			return err
		}
	}
	return nil
}

func (m *Module) loadFile(path string, lang Language) error {
	// #nosec G304 -- path comes from the configured translations directory.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tables[lang] == nil {
		m.tables[lang] = make(map[string]string, len(table))
	}
	for k, v := range table {
		m.tables[lang][k] = v
	}
	return nil
}

func init() {
	core.RegisterModuleBuilder(core.ModuleBuildInfo{
		Name:      ModuleName,
		Construct: func() core.Module { return New() },
	})
}
