// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	RegistryNotFoundId Id = iota + 1
	RegistryParseErrorId
	ModuleNotFoundId
	ModuleParseErrorId
	UnresolvedDependencyId
	DependencyCycleId
	PortConflictId
	VolumeConflictId
	TargetUnsupportedId
	EmissionFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	registryNotFoundIssue = &Issue{
		id: RegistryNotFoundId,
		mdMsg: `
# Registry not found!

We could not read the registry document.

## Search locations (in order of precedence):
1. The --registry flag
2. registry_path in your config file
3. ./registry.yml

## Things you can try:
- Point deckhand at your registry explicitly:
~~~
$ deckhand generate --registry /path/to/registry.yml apache
~~~

- Check that the file exists and is readable`,
	}

	registryParseErrorIssue = &Issue{
		id: RegistryParseErrorId,
		mdMsg: `
# Registry document is invalid!

The registry file was found but failed schema validation.

## Expected structure:
~~~yaml
modules:
  apache:
    source: https://git.example.com/modules/apache
    version: 2.4.62
    deployment:
      docker: true
    status: stable
~~~

## Things you can try:
- Fix the field named in the error message above
- Module names must match [a-z0-9_-]
- Versions must be three-component semver (MAJOR.MINOR.PATCH)`,
	}

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found in the registry!

The requested module name is not listed in the registry document.

## Things you can try:
- Check the spelling (the error message lists close matches)
- List the known modules:
~~~
$ deckhand registry list
~~~

- Add the module to the registry if it is genuinely new`,
	}

	moduleParseErrorIssue = &Issue{
		id: ModuleParseErrorId,
		mdMsg: `
# Module definition is invalid!

A module.yml document failed schema or structural validation. All violations
are reported at once, so fix them in one pass.

## Minimal valid document:
~~~yaml
name: apache
version: 2.4.62
deployment:
  docker: true
docker:
  image: httpd:2.4
~~~

## Common mistakes:
- No deployment target enabled
- ansible target enabled without a platforms list
- docker target enabled without image or build
- A module listing itself in dependencies`,
	}

	unresolvedDependencyIssue = &Issue{
		id: UnresolvedDependencyId,
		mdMsg: `
# Unresolved dependency!

A module in the plan depends on a module that is not in the registry.
Unresolved dependencies are fatal, never silently skipped.

## Things you can try:
- Add the missing module to the registry
- Fix a typo in the dependencies list of the requiring module
- Remove the dependency if it is no longer needed`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

The modules' dependencies form a cycle, so no provisioning order exists.
The error message shows the full cycle path.

## Example of a cycle:
~~~yaml
# apache/module.yml
dependencies: [php]
# php/module.yml
dependencies: [apache]   # cycle: apache -> php -> apache
~~~

## Things you can try:
- Break the cycle by removing one of the edges shown in the path
- Extract the shared part into a third module both depend on`,
	}

	portConflictIssue = &Issue{
		id: PortConflictId,
		mdMsg: `
# Port conflict!

Two modules in the same plan claim the same port and protocol. Both are
named in the error message.

## Things you can try:
- Move one module to a different port in its network section
- Generate the two modules into separate plans
- The same port number with different protocols (tcp vs udp) is fine`,
	}

	volumeConflictIssue = &Issue{
		id: VolumeConflictId,
		mdMsg: `
# Volume target conflict!

Two modules mount different sources at the same container path. Both are
named in the error message.

## Things you can try:
- Change one module's storage.volumes target path
- If both modules genuinely share data, declare the same source in both`,
	}

	targetUnsupportedIssue = &Issue{
		id: TargetUnsupportedId,
		mdMsg: `
# Deployment target not supported!

An explicitly requested module does not support the requested target.

## Things you can try:
- Check the module's deployment section:
~~~
$ deckhand show <module>
~~~

- Generate for a target the module supports (docker or ansible)
- Dependencies that lack the target are skipped with a warning instead`,
	}

	emissionFailedIssue = &Issue{
		id: EmissionFailedId,
		mdMsg: `
# Artifact emission failed!

An internal invariant broke while rendering the output document. This is a
bug in deckhand, not in your module definitions: no partial output has been
written.

## Things you can try:
- Re-run with --verbose and report the full output`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded!

The deckhand config file exists but could not be read or parsed.

## Expected structure:
~~~yaml
registry_path: /srv/deckhand/registry.yml
modules_dir: /srv/deckhand/modules
output_dir: .
default_network: deckhand
~~~

## Things you can try:
- Check YAML syntax in the file named above
- Environment overrides use the DECKHAND_ prefix, e.g. DECKHAND_OUTPUT_DIR`,
	}

	issues = map[Id]*Issue{
		registryNotFoundIssue.Id():     registryNotFoundIssue,
		registryParseErrorIssue.Id():   registryParseErrorIssue,
		moduleNotFoundIssue.Id():       moduleNotFoundIssue,
		moduleParseErrorIssue.Id():     moduleParseErrorIssue,
		unresolvedDependencyIssue.Id(): unresolvedDependencyIssue,
		dependencyCycleIssue.Id():      dependencyCycleIssue,
		portConflictIssue.Id():         portConflictIssue,
		volumeConflictIssue.Id():       volumeConflictIssue,
		targetUnsupportedIssue.Id():    targetUnsupportedIssue,
		emissionFailedIssue.Id():       emissionFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
