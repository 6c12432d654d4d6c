package core

import "sync"

// ModuleBuildInfo records how to construct a discovered module: a stable
// name and a constructor. Module packages register one in their init, so a
// blank import is all the host needs to pick a module up.
type ModuleBuildInfo struct {
	Name      string
	Construct func() Module
}

var (
	buildMu    sync.Mutex
	buildInfos []ModuleBuildInfo
	buildNames = make(map[string]struct{})
)

// RegisterModuleBuilder adds a build record to the discovery table. It
// panics on an invalid or duplicate name or a nil constructor, as these are
// programmer errors caught at process start.
func RegisterModuleBuilder(info ModuleBuildInfo) {
	if err := ValidateModuleName(info.Name); err != nil {
		panic("synapse: RegisterModuleBuilder: " + err.Error())
	}
	if info.Construct == nil {
		panic("synapse: RegisterModuleBuilder: nil constructor for module " + info.Name)
	}

	buildMu.Lock()
	defer buildMu.Unlock()
	if _, dup := buildNames[info.Name]; dup {
		panic("synapse: RegisterModuleBuilder: duplicate module name " + info.Name)
	}
	buildNames[info.Name] = struct{}{}
	buildInfos = append(buildInfos, info)
}

// ModuleBuilders returns a snapshot of the discovery table in registration
// order.
func ModuleBuilders() []ModuleBuildInfo {
	buildMu.Lock()
	defer buildMu.Unlock()
	out := make([]ModuleBuildInfo, len(buildInfos))
	copy(out, buildInfos)
	return out
}

// resetModuleBuilders clears the discovery table. Test hook.
func resetModuleBuilders() {
	buildMu.Lock()
	defer buildMu.Unlock()
	buildInfos = nil
	buildNames = make(map[string]struct{})
}
