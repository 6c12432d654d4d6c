package core

import "testing"

func TestModuleBuildersPreserveRegistrationOrder(t *testing.T) {
	resetModuleBuilders()
	t.Cleanup(resetModuleBuilders)

	names := []string{"gamma", "alpha", "beta"}
	for _, name := range names {
		name := name
		RegisterModuleBuilder(ModuleBuildInfo{
			Name:      name,
			Construct: func() Module { return &stubModule{name: name} },
		})
	}

	infos := ModuleBuilders()
	if len(infos) != len(names) {
		t.Fatalf("expected %d builders, got %d", len(names), len(infos))
	}
	for i, info := range infos {
		if info.Name != names[i] {
			t.Fatalf("builder %d: expected %q, got %q", i, names[i], info.Name)
		}
	}
}

func TestRegisterModuleBuilderDuplicatePanics(t *testing.T) {
	resetModuleBuilders()
	t.Cleanup(resetModuleBuilders)

	info := ModuleBuildInfo{
		Name:      "echo",
		Construct: func() Module { return &stubModule{name: "echo"} },
	}
	RegisterModuleBuilder(info)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate builder name")
		}
	}()
	RegisterModuleBuilder(info)
}

func TestRegisterModuleBuilderRejectsNilConstructor(t *testing.T) {
	resetModuleBuilders()
	t.Cleanup(resetModuleBuilders)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil constructor")
		}
	}()
	RegisterModuleBuilder(ModuleBuildInfo{Name: "echo"})
}

func TestRegisterModuleBuilderRejectsInvalidName(t *testing.T) {
	resetModuleBuilders()
	t.Cleanup(resetModuleBuilders)

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on empty name")
		}
	}()
	RegisterModuleBuilder(ModuleBuildInfo{
		Name:      "",
		Construct: func() Module { return &stubModule{} },
	})
}
