// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"deckhand-cli/internal/dag"
	"deckhand-cli/pkg/modulefile"
	"deckhand-cli/pkg/registry"
)

// memLoader serves module documents from memory.
type memLoader struct {
	docs map[modulefile.ModuleName]string
}

func (l *memLoader) Load(_ context.Context, name modulefile.ModuleName, version modulefile.Version) ([]byte, error) {
	doc, ok := l.docs[name]
	if !ok {
		return nil, &registry.ContentNotFoundError{Name: name, Version: version, Path: string(name)}
	}
	return []byte(doc), nil
}

// moduleDoc renders a minimal docker-capable module document.
func moduleDoc(name, version string, deps []string, extra string) string {
	doc := fmt.Sprintf("name: %s\nversion: %s\ndeployment:\n  docker: true\ndocker:\n  image: %s:latest\n", name, version, name)
	if len(deps) > 0 {
		doc += "dependencies:\n"
		for _, d := range deps {
			doc += "  - " + d + "\n"
		}
	}
	return doc + extra
}

// registryDoc renders a registry document covering the given module names,
// all docker-capable unless listed in ansibleOnly.
func registryDoc(versions map[string]string, ansibleOnly ...string) string {
	doc := "modules:\n"
	names := make([]string, 0, len(versions))
	for name := range versions {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		target := "docker"
		if slices.Contains(ansibleOnly, name) {
			target = "ansible"
		}
		doc += fmt.Sprintf("  %s:\n    source: https://git.example.com/modules/%s\n    version: %s\n    deployment:\n      %s: true\n",
			name, name, versions[name], target)
	}
	return doc
}

func fixture(t *testing.T, regDoc string, docs map[modulefile.ModuleName]string) (*registry.Registry, registry.Loader) {
	t.Helper()
	reg, err := registry.Parse([]byte(regDoc), "registry.yml")
	if err != nil {
		t.Fatalf("registry.Parse() unexpected error: %v", err)
	}
	return reg, &memLoader{docs: docs}
}

func TestBuild_TransitiveClosure(t *testing.T) {
	t.Parallel()

	versions := map[string]string{"apache": "2.4.62", "php": "8.3.14", "sendmail": "8.18.1"}
	reg, loader := fixture(t, registryDoc(versions), map[modulefile.ModuleName]string{
		"apache":   moduleDoc("apache", "2.4.62", []string{"php"}, ""),
		"php":      moduleDoc("php", "8.3.14", []string{"sendmail"}, ""),
		"sendmail": moduleDoc("sendmail", "8.18.1", nil, ""),
	})

	g, err := Build(context.Background(), []modulefile.ModuleName{"apache"}, reg, loader)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (transitive closure)", g.Len())
	}
	wantNames := []modulefile.ModuleName{"apache", "php", "sendmail"}
	if !slices.Equal(g.Names(), wantNames) {
		t.Errorf("Names() = %v, want %v", g.Names(), wantNames)
	}
	if mod := g.Module("php"); mod == nil || mod.Definition.Name != "php" {
		t.Errorf("Module(php) = %+v, want loaded definition", mod)
	}
}

func TestBuild_SharedDependencyLoadedOnce(t *testing.T) {
	t.Parallel()

	versions := map[string]string{"apache": "2.4.62", "nginx": "1.27.3", "php": "8.3.14"}
	reg, loader := fixture(t, registryDoc(versions), map[modulefile.ModuleName]string{
		"apache": moduleDoc("apache", "2.4.62", []string{"php"}, ""),
		"nginx":  moduleDoc("nginx", "1.27.3", []string{"php"}, ""),
		"php":    moduleDoc("php", "8.3.14", nil, ""),
	})

	g, err := Build(context.Background(), []modulefile.ModuleName{"apache", "nginx"}, reg, loader)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
}

func TestBuild_UnknownRequestedModule(t *testing.T) {
	t.Parallel()

	versions := map[string]string{"apache": "2.4.62"}
	reg, loader := fixture(t, registryDoc(versions), map[modulefile.ModuleName]string{
		"apache": moduleDoc("apache", "2.4.62", nil, ""),
	})

	_, err := Build(context.Background(), []modulefile.ModuleName{"apachi"}, reg, loader)
	if !errors.Is(err, registry.ErrModuleNotFound) {
		t.Fatalf("expected registry.ErrModuleNotFound, got %v", err)
	}
}

func TestBuild_UnresolvedDependency(t *testing.T) {
	t.Parallel()

	versions := map[string]string{"apache": "2.4.62"}
	reg, loader := fixture(t, registryDoc(versions), map[modulefile.ModuleName]string{
		"apache": moduleDoc("apache", "2.4.62", []string{"php"}, ""),
	})

	_, err := Build(context.Background(), []modulefile.ModuleName{"apache"}, reg, loader)
	if err == nil {
		t.Fatal("expected UnresolvedDependencyError, got nil")
	}

	var unresolved *UnresolvedDependencyError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected *UnresolvedDependencyError, got %T: %v", err, err)
	}
	if unresolved.Missing != "php" {
		t.Errorf("Missing = %q, want %q", unresolved.Missing, "php")
	}
	if unresolved.RequiredBy != "apache" {
		t.Errorf("RequiredBy = %q, want %q", unresolved.RequiredBy, "apache")
	}
}

func TestBuild_VersionMismatchWarns(t *testing.T) {
	t.Parallel()

	versions := map[string]string{"apache": "2.4.62"}
	reg, loader := fixture(t, registryDoc(versions), map[modulefile.ModuleName]string{
		"apache": moduleDoc("apache", "2.4.61", nil, ""),
	})

	g, err := Build(context.Background(), []modulefile.ModuleName{"apache"}, reg, loader)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if len(g.Warnings()) != 1 {
		t.Fatalf("Warnings() = %v, want one version mismatch warning", g.Warnings())
	}
	warning := g.Warnings()[0]
	if !strings.Contains(warning, "older than") || !strings.Contains(warning, "registry wins") {
		t.Errorf("warning = %q, want the declared version described as older than the pin", warning)
	}
}

func TestBuild_VersionMismatchNewerDocument(t *testing.T) {
	t.Parallel()

	versions := map[string]string{"apache": "2.4.62"}
	reg, loader := fixture(t, registryDoc(versions), map[modulefile.ModuleName]string{
		"apache": moduleDoc("apache", "2.4.63", nil, ""),
	})

	g, err := Build(context.Background(), []modulefile.ModuleName{"apache"}, reg, loader)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if len(g.Warnings()) != 1 {
		t.Fatalf("Warnings() = %v, want one version mismatch warning", g.Warnings())
	}
	if !strings.Contains(g.Warnings()[0], "newer than") {
		t.Errorf("warning = %q, want the declared version described as newer than the pin", g.Warnings()[0])
	}
}

func TestPlan_DependencyBeforeDependent(t *testing.T) {
	t.Parallel()

	versions := map[string]string{"apache": "2.4.62", "php": "8.3.14"}
	reg, loader := fixture(t, registryDoc(versions), map[modulefile.ModuleName]string{
		"apache": moduleDoc("apache", "2.4.62", []string{"php"}, ""),
		"php":    moduleDoc("php", "8.3.14", nil, ""),
	})

	g, err := Build(context.Background(), []modulefile.ModuleName{"apache"}, reg, loader)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	p, err := g.Plan(modulefile.TargetDocker)
	if err != nil {
		t.Fatalf("Plan() unexpected error: %v", err)
	}

	want := []modulefile.ModuleName{"php", "apache"}
	if !slices.Equal(p.Names(), want) {
		t.Errorf("plan order = %v, want %v", p.Names(), want)
	}
	if !p.Requested("apache") {
		t.Error("Requested(apache) = false, want true")
	}
	if p.Requested("php") {
		t.Error("Requested(php) = true, want false (pulled as dependency)")
	}
}

func TestPlan_RequestOrderIrrelevant(t *testing.T) {
	t.Parallel()

	versions := map[string]string{"apache": "2.4.62", "nginx": "1.27.3", "php": "8.3.14"}
	docs := map[modulefile.ModuleName]string{
		"apache": moduleDoc("apache", "2.4.62", []string{"php"}, ""),
		"nginx":  moduleDoc("nginx", "1.27.3", nil, ""),
		"php":    moduleDoc("php", "8.3.14", nil, ""),
	}

	planFor := func(names []modulefile.ModuleName) []modulefile.ModuleName {
		t.Helper()
		reg, loader := fixture(t, registryDoc(versions), docs)
		g, err := Build(context.Background(), names, reg, loader)
		if err != nil {
			t.Fatalf("Build(%v) unexpected error: %v", names, err)
		}
		p, err := g.Plan(modulefile.TargetDocker)
		if err != nil {
			t.Fatalf("Plan() unexpected error: %v", err)
		}
		return p.Names()
	}

	forward := planFor([]modulefile.ModuleName{"apache", "nginx"})
	reversed := planFor([]modulefile.ModuleName{"nginx", "apache"})
	if !slices.Equal(forward, reversed) {
		t.Errorf("plan depends on request order: %v vs %v", forward, reversed)
	}
	want := []modulefile.ModuleName{"nginx", "php", "apache"}
	if !slices.Equal(forward, want) {
		t.Errorf("plan order = %v, want %v", forward, want)
	}
}

func TestPlan_CycleFailsWithFullPath(t *testing.T) {
	t.Parallel()

	versions := map[string]string{"apache": "2.4.62", "php": "8.3.14", "sendmail": "8.18.1"}
	reg, loader := fixture(t, registryDoc(versions), map[modulefile.ModuleName]string{
		"apache":   moduleDoc("apache", "2.4.62", []string{"php"}, ""),
		"php":      moduleDoc("php", "8.3.14", []string{"sendmail"}, ""),
		"sendmail": moduleDoc("sendmail", "8.18.1", []string{"apache"}, ""),
	})

	g, err := Build(context.Background(), []modulefile.ModuleName{"apache"}, reg, loader)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	_, err = g.Plan(modulefile.TargetDocker)
	var cycleErr *dag.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *dag.CycleError, got %T: %v", err, err)
	}
	want := []string{"apache", "php", "sendmail", "apache"}
	if !slices.Equal(cycleErr.Cycle, want) {
		t.Errorf("Cycle = %v, want %v", cycleErr.Cycle, want)
	}
}

func TestPlan_RequestedModuleWithoutTarget(t *testing.T) {
	t.Parallel()

	regDoc := `modules:
  backup:
    source: https://git.example.com/modules/backup
    version: 1.0.0
    deployment:
      ansible: true
`
	backupDoc := `name: backup
version: 1.0.0
deployment:
  ansible: true
platforms:
  - os_family: debian
    os_versions: ["12"]
    packages: [rsync]
    service: backup
`
	reg, loader := fixture(t, regDoc, map[modulefile.ModuleName]string{"backup": backupDoc})

	g, err := Build(context.Background(), []modulefile.ModuleName{"backup"}, reg, loader)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	_, err = g.Plan(modulefile.TargetDocker)
	var unsupported *TargetUnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *TargetUnsupportedError, got %T: %v", err, err)
	}
	if unsupported.Module != "backup" || unsupported.Target != modulefile.TargetDocker {
		t.Errorf("unexpected error fields: %+v", unsupported)
	}
}

func TestPlan_DependencyWithoutTargetIsSkippedWithWarning(t *testing.T) {
	t.Parallel()

	regDoc := `modules:
  apache:
    source: https://git.example.com/modules/apache
    version: 2.4.62
    deployment:
      docker: true
  backup:
    source: https://git.example.com/modules/backup
    version: 1.0.0
    deployment:
      ansible: true
`
	backupDoc := `name: backup
version: 1.0.0
deployment:
  ansible: true
platforms:
  - os_family: debian
    os_versions: ["12"]
    packages: [rsync]
    service: backup
`
	reg, loader := fixture(t, regDoc, map[modulefile.ModuleName]string{
		"apache": moduleDoc("apache", "2.4.62", []string{"backup"}, ""),
		"backup": backupDoc,
	})

	g, err := Build(context.Background(), []modulefile.ModuleName{"apache"}, reg, loader)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	p, err := g.Plan(modulefile.TargetDocker)
	if err != nil {
		t.Fatalf("Plan() unexpected error: %v", err)
	}

	if len(p.Modules) != 2 {
		t.Errorf("plan holds %d modules, want 2 (skipped module still orders)", len(p.Modules))
	}
	emittable := p.Emittable()
	if len(emittable) != 1 || emittable[0].Name() != "apache" {
		t.Errorf("Emittable() = %v, want just apache", emittable)
	}
	if len(p.Warnings()) == 0 {
		t.Error("expected a warning for the skipped dependency")
	}
}
